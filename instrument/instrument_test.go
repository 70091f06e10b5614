package instrument

import (
	"bytes"
	"strings"
	"testing"

	"goscpi/scpi"
)

func newTestInstrument(t *testing.T, mutate func(*Config)) *Instrument {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	parser := scpi.New(scpi.Config{})
	inst := New(cfg, parser)
	if errs := parser.SetupErrors(); errs != (scpi.SetupErrors{}) {
		t.Fatalf("command registration overflowed: %+v", errs)
	}
	return inst
}

// send executes one command line and returns everything written back.
func send(inst *Instrument, line string) string {
	var out bytes.Buffer
	inst.parser.Execute([]byte(line), &out)
	return out.String()
}

func TestIdentification(t *testing.T) {
	// an empty serial is omitted from the response
	inst := newTestInstrument(t, nil)
	got := send(inst, "*IDN?")
	want := "NEXPERIA,NEVB-MTR1-xx,NEVC-MTR1-t01-1.0.0\n"
	if got != want {
		t.Errorf("*IDN? = %q, want %q", got, want)
	}
}

func TestIdentificationWithSerial(t *testing.T) {
	inst := newTestInstrument(t, func(cfg *Config) {
		cfg.Identity.Serial = "A-042"
	})
	got := send(inst, "*idn?")
	want := "NEXPERIA,NEVB-MTR1-xx,A-042,NEVC-MTR1-t01-1.0.0\n"
	if got != want {
		t.Errorf("*idn? = %q, want %q", got, want)
	}
}

func TestEnableAndMeasureSpeed(t *testing.T) {
	inst := newTestInstrument(t, nil)

	if got := send(inst, "MEAS:MOTO:SPEED?"); got != "0\n" {
		t.Errorf("speed before enable = %q, want %q", got, "0\n")
	}
	send(inst, "CONF:MOTO:SPEED 1500")
	if got := send(inst, "MEAS:MOTO:SPEED?"); got != "0\n" {
		t.Errorf("speed while disabled = %q, want %q", got, "0\n")
	}
	send(inst, "CONF:MOTO:ENAB ON")
	if got := send(inst, "CONF:MOTO:ENAB?"); got != "1\n" {
		t.Errorf("enable query = %q, want %q", got, "1\n")
	}
	if got := send(inst, "MEAS:MOTO:SPEED?"); got != "1500\n" {
		t.Errorf("speed while enabled = %q, want %q", got, "1500\n")
	}
	send(inst, "CONF:MOTO:ENAB OFF")
	if got := send(inst, "MEAS:MOTO:SPEED?"); got != "0\n" {
		t.Errorf("speed after disable = %q, want %q", got, "0\n")
	}
}

func TestSpeedReferenceOutOfRange(t *testing.T) {
	inst := newTestInstrument(t, nil)

	send(inst, "CONF:MOTO:SPEED 10001")
	if inst.parser.LastError != scpi.MissingOrInvalidParameter {
		t.Fatalf("LastError = %v, want MissingOrInvalidParameter", inst.parser.LastError)
	}
	send(inst, "CONF:MOTO:ENAB ON")
	if got := send(inst, "MEAS:MOTO:SPEED?"); got != "0\n" {
		t.Errorf("rejected reference changed the speed: %q", got)
	}
}

func TestGateFrequencyRange(t *testing.T) {
	inst := newTestInstrument(t, nil)

	send(inst, "CONF:MOTO:GATE:FREQ 25000")
	if got := send(inst, "CONF:MOTO:GATE:FREQ?"); got != "25000\n" {
		t.Errorf("gate frequency = %q, want %q", got, "25000\n")
	}

	for _, bad := range []string{"CONF:MOTO:GATE:FREQ 7182", "CONF:MOTO:GATE:FREQ 100001", "CONF:MOTO:GATE:FREQ"} {
		send(inst, bad)
		if inst.parser.LastError != scpi.MissingOrInvalidParameter {
			t.Errorf("%s: LastError = %v, want MissingOrInvalidParameter", bad, inst.parser.LastError)
		}
		inst.parser.LastError = scpi.NoError
	}
	if got := send(inst, "CONF:MOTO:GATE:FREQ?"); got != "25000\n" {
		t.Errorf("gate frequency after rejections = %q, want %q", got, "25000\n")
	}
}

// Retuning the gate drive stops the motor even when the new frequency is
// rejected.
func TestGateFrequencyDisablesMotor(t *testing.T) {
	inst := newTestInstrument(t, nil)

	send(inst, "CONF:MOTO:ENAB 1")
	send(inst, "CONF:MOTO:GATE:FREQ 1")
	if got := send(inst, "CONF:MOTO:ENAB?"); got != "0\n" {
		t.Errorf("enable after gate retune = %q, want %q", got, "0\n")
	}
}

func TestDirection(t *testing.T) {
	inst := newTestInstrument(t, nil)

	if got := send(inst, "CONF:MOTO:DIRE?"); got != "FORWard\n" {
		t.Errorf("default direction = %q, want %q", got, "FORWard\n")
	}
	if got := send(inst, "MEAS:MOTO:DIRE?"); got != "UNKNown\n" {
		t.Errorf("measured direction while stopped = %q, want %q", got, "UNKNown\n")
	}

	send(inst, "CONF:MOTO:DIRE REVErse")
	send(inst, "CONF:MOTO:SPEED 100")
	send(inst, "CONF:MOTO:ENAB ON")
	if got := send(inst, "MEAS:MOTO:DIRE?"); got != "REVErse\n" {
		t.Errorf("measured direction while turning = %q, want %q", got, "REVErse\n")
	}

	send(inst, "CONF:MOTO:DIRE SIDEways")
	if inst.parser.LastError != scpi.MissingOrInvalidParameter {
		t.Errorf("LastError = %v, want MissingOrInvalidParameter", inst.parser.LastError)
	}
	if got := send(inst, "CONF:MOTO:DIRE?"); got != "REVErse\n" {
		t.Errorf("rejected keyword changed the direction: %q", got)
	}
}

func TestSpeedSource(t *testing.T) {
	inst := newTestInstrument(t, nil)

	if got := send(inst, "CONF:MOTO:SPEED:SOUR?"); got != "LOCAl\n" {
		t.Errorf("default source = %q, want %q", got, "LOCAl\n")
	}

	send(inst, "CONF:MOTO:SPEED 2000")
	send(inst, "CONF:MOTO:ENAB ON")
	send(inst, "CONF:MOTO:SPEED:SOUR REMOte")
	if got := send(inst, "CONF:MOTO:SPEED:SOUR?"); got != "REMOte\n" {
		t.Errorf("source = %q, want %q", got, "REMOte\n")
	}
	// switching to the remote source drops the stale reference
	if got := send(inst, "MEAS:MOTO:SPEED?"); got != "0\n" {
		t.Errorf("speed after source switch = %q, want %q", got, "0\n")
	}
}

func TestMeasurements(t *testing.T) {
	inst := newTestInstrument(t, nil)

	send(inst, "CONF:MOTO:SPEED 5000")
	send(inst, "CONF:MOTO:ENAB ON")
	if got := send(inst, "MEAS:MOTO:VOLT?"); got != "24\n" {
		t.Errorf("voltage = %q, want %q", got, "24\n")
	}
	// half speed draws half the full-load current
	if got := send(inst, "MEAS:MOTO:CURR?"); got != "2.5\n" {
		t.Errorf("current = %q, want %q", got, "2.5\n")
	}
	if got := send(inst, "MEAS:MOTO:GATE:DUTY?"); got != "50\n" {
		t.Errorf("duty cycle = %q, want %q", got, "50\n")
	}
}

func TestOpenLoopCommands(t *testing.T) {
	inst := newTestInstrument(t, func(cfg *Config) {
		cfg.Motor.ControlMode = ControlOpenLoop
	})

	send(inst, "CONF:MOTO:GATE:DUTY 50")
	send(inst, "CONF:MOTO:ENAB ON")
	if got := send(inst, "MEAS:MOTO:GATE:DUTY?"); got != "50\n" {
		t.Errorf("duty cycle = %q, want %q", got, "50\n")
	}
	if got := send(inst, "MEAS:MOTO:SPEE?"); got != "5000\n" {
		t.Errorf("open-loop speed = %q, want %q", got, "5000\n")
	}

	send(inst, "CONF:MOTO:GATE:DUTY 101")
	if inst.parser.LastError != scpi.MissingOrInvalidParameter {
		t.Errorf("LastError = %v, want MissingOrInvalidParameter", inst.parser.LastError)
	}
	inst.parser.LastError = scpi.NoError

	// The closed-loop command set is not registered in this mode. Every
	// keyword still matches a stored token (SPEED hits the long form of
	// SPEEd), so the command is dropped silently rather than reported.
	if got := send(inst, "CONF:MOTO:SPEED 100"); got != "" {
		t.Errorf("unregistered command produced output %q", got)
	}
	if inst.parser.LastError != scpi.NoError {
		t.Errorf("LastError = %v, want NoError", inst.parser.LastError)
	}
	if got := send(inst, "MEAS:MOTO:SPEE?"); got != "5000\n" {
		t.Errorf("speed after dropped command = %q, want %q", got, "5000\n")
	}
}

func TestSystemErrorQuery(t *testing.T) {
	inst := newTestInstrument(t, nil)

	if got := send(inst, "SYST:ERR:COUN?"); got != "0\n" {
		t.Errorf("error count = %q, want %q", got, "0\n")
	}
	send(inst, "BOGUS:COMMAND")
	if got := send(inst, "SYST:ERR:COUN?"); got != "1\n" {
		t.Errorf("error count after unknown command = %q, want %q", got, "1\n")
	}
	if got := send(inst, "SYST:ERR?"); got != "Unknown command received\n" {
		t.Errorf("error query = %q, want %q", got, "Unknown command received\n")
	}
	// reading the error clears it
	if got := send(inst, "SYST:ERR?"); got != "No Error\n" {
		t.Errorf("second error query = %q, want %q", got, "No Error\n")
	}
	if got := send(inst, "SYST:ERR:COUN?"); got != "0\n" {
		t.Errorf("error count after read = %q, want %q", got, "0\n")
	}
}

func TestMultiCommandLine(t *testing.T) {
	inst := newTestInstrument(t, nil)

	got := send(inst, "CONF:MOTO:SPEED 1200;CONF:MOTO:ENAB ON;MEAS:MOTO:SPEED?;MEAS:MOTO:DIRE?")
	want := "1200\nFORWard\n"
	if got != want {
		t.Errorf("multi-command output = %q, want %q", got, want)
	}
}

func TestLongFormCommands(t *testing.T) {
	inst := newTestInstrument(t, nil)

	send(inst, "CONFigure:MOTOr:SPEED 800")
	send(inst, "configure:motor:enable on")
	if got := send(inst, "MEASure:MOTOr:SPEEd?"); got != "800\n" {
		t.Errorf("long-form speed query = %q, want %q", got, "800\n")
	}
}

func TestUnknownCommandDoesNotReply(t *testing.T) {
	inst := newTestInstrument(t, nil)

	if got := send(inst, "MEAS:MOTO:TORQue?"); got != "" {
		t.Errorf("unknown query produced output %q", got)
	}
	if !strings.Contains(send(inst, "SYST:ERR?"), "Unknown command") {
		t.Error("unknown command was not recorded")
	}
}
