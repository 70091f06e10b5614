package instrument

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instrument.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[identity]
manufacturer = "ACME"
serial = "A-042"

[motor]
max_speed = 4500.0
default_gate_frequency = 30000
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Identity.Manufacturer != "ACME" || cfg.Identity.Serial != "A-042" {
		t.Errorf("identity not applied: %+v", cfg.Identity)
	}
	// unset values keep their defaults
	if cfg.Identity.Model != "NEVB-MTR1-xx" {
		t.Errorf("Model = %q, want default %q", cfg.Identity.Model, "NEVB-MTR1-xx")
	}
	if cfg.Motor.MaxSpeed != 4500 {
		t.Errorf("MaxSpeed = %g, want 4500", cfg.Motor.MaxSpeed)
	}
	if cfg.Motor.DefaultGateFrequency != 30000 {
		t.Errorf("DefaultGateFrequency = %d, want 30000", cfg.Motor.DefaultGateFrequency)
	}
	if cfg.Motor.ControlMode != ControlClosedLoop {
		t.Errorf("ControlMode = %q, want default %q", cfg.Motor.ControlMode, ControlClosedLoop)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad control mode", "[motor]\ncontrol_mode = \"sensorless\"\n"},
		{"inverted frequency range", "[motor]\nmin_gate_frequency = 50000\nmax_gate_frequency = 10000\ndefault_gate_frequency = 20000\n"},
		{"default frequency out of range", "[motor]\ndefault_gate_frequency = 1000\n"},
		{"negative max speed", "[motor]\nmax_speed = -1.0\n"},
		{"zero poles", "[motor]\npoles = 0\n"},
		{"malformed toml", "[motor\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}
