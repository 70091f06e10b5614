package scpi

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintDebugInfoFlagsProblems(t *testing.T) {
	p := New(Config{MaxTokens: 1})
	p.RegisterCommand("GOOD", nopHandler)
	p.RegisterCommand("GOOD", nopHandler)  // duplicate hash
	p.RegisterCommand("EXTRA", nopHandler) // token overflow -> invalid

	var out bytes.Buffer
	p.PrintDebugInfo(&out)
	dump := out.String()

	for _, want := range []string{
		"TOKENS : 1 / 1",
		"**ERROR** Max tokens exceeded.",
		"VALID CODES : 3 / 20",
		"!!", // duplicate of an earlier code
		"!%", // invalid registration
		"Hash crashes found",
		"Tried to register invalid commands",
		"Hash magic number: 37",
		"Hash magic offset: 7",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("Debug dump missing %q:\n%s", want, dump)
		}
	}
}

func TestPrintDebugInfoCleanSetup(t *testing.T) {
	p := New(Config{})
	p.RegisterCommand("*IDN?", nopHandler)
	p.RegisterCommand("SYSTem:ERRor?", nopHandler)

	var out bytes.Buffer
	p.PrintDebugInfo(&out)
	dump := out.String()

	for _, unwanted := range []string{"**ERROR**", "!!", "!*", "!%"} {
		if strings.Contains(dump, unwanted) {
			t.Errorf("Clean setup dump contains %q:\n%s", unwanted, dump)
		}
	}
	if !strings.Contains(dump, "TOKENS : 3 / 20") {
		t.Errorf("Dump missing token utilization:\n%s", dump)
	}
}
