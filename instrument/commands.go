package instrument

import (
	"fmt"
	"io"

	"goscpi/scpi"
)

// Choice tables for keyword parameters.
var (
	motorDirections = []scpi.Choice{
		{Stem: "FORW", Suffix: "ard", Tag: DirectionForward},
		{Stem: "REVE", Suffix: "rse", Tag: DirectionReverse},
	}
	speedSources = []scpi.Choice{
		{Stem: "LOCA", Suffix: "l", Tag: SourceLocal},
		{Stem: "REMO", Suffix: "te", Tag: SourceRemote},
	}
)

// Instrument binds the simulated motor to a SCPI parser.
type Instrument struct {
	cfg    Config
	parser *scpi.Parser
	motor  *Motor
}

// New creates the instrument and registers its command set on the parser.
func New(cfg Config, parser *scpi.Parser) *Instrument {
	inst := &Instrument{
		cfg:    cfg,
		parser: parser,
		motor:  NewMotor(cfg.Motor),
	}
	inst.registerCommands()
	return inst
}

// Motor exposes the simulated motor, mainly for tests and status display.
func (inst *Instrument) Motor() *Motor {
	return inst.motor
}

func (inst *Instrument) registerCommands() {
	p := inst.parser

	// IEEE mandated and required SCPI commands
	p.RegisterCommand("*IDN?", inst.idnQ)
	p.RegisterCommand("SYSTem:ERRor?", inst.systemErrorNextQ)
	p.RegisterCommand("SYSTem:ERRor:COUNt?", inst.systemErrorCountQ)

	// Motor configuration
	p.SetCommandTreeBase("CONFigure:MOTOr")
	p.RegisterCommand(":ENABle", inst.configureEnable)
	p.RegisterCommand(":ENABle?", inst.getEnable)
	if inst.cfg.Motor.ControlMode == ControlOpenLoop {
		p.RegisterCommand(":GATE:DUTYcycle:SOURce", inst.configureSpeedSource)
		p.RegisterCommand(":GATE:DUTYcycle:SOURce?", inst.getSpeedSource)
		p.RegisterCommand(":GATE:DUTYcycle", inst.configureDutyCycle)
	} else {
		p.RegisterCommand(":SPEED:SOURce", inst.configureSpeedSource)
		p.RegisterCommand(":SPEED:SOURce?", inst.getSpeedSource)
		p.RegisterCommand(":SPEED", inst.configureSpeed)
	}
	p.RegisterCommand(":GATE:FREQuency", inst.configureGateFrequency)
	p.RegisterCommand(":GATE:FREQuency?", inst.getGateFrequency)
	p.RegisterCommand(":DIREction", inst.configureDirection)
	p.RegisterCommand(":DIREction?", inst.getDirection)

	// Measurements
	p.SetCommandTreeBase("MEASure:MOTOr")
	p.RegisterCommand(":SPEEd?", inst.measureSpeed)
	p.RegisterCommand(":VOLTage?", inst.measureVoltage)
	p.RegisterCommand(":CURRent?", inst.measureCurrent)
	p.RegisterCommand(":DIREction?", inst.measureDirection)
	p.RegisterCommand(":GATE:DUTYcycle?", inst.measureDutyCycle)

	p.SetCommandTreeBase("")
}

func (inst *Instrument) idnQ(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	id := inst.cfg.Identity
	if id.Serial != "" {
		fmt.Fprintf(w, "%s,%s,%s,%s\n", id.Manufacturer, id.Model, id.Serial, id.Firmware)
	} else {
		fmt.Fprintf(w, "%s,%s,%s\n", id.Manufacturer, id.Model, id.Firmware)
	}
}

// systemErrorNextQ reports the last error and clears the error slot.
func (inst *Instrument) systemErrorNextQ(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	fmt.Fprintln(w, inst.parser.LastError.String())
	inst.parser.LastError = scpi.NoError
}

func (inst *Instrument) systemErrorCountQ(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	count := 0
	if inst.parser.LastError != scpi.NoError {
		count = 1
	}
	fmt.Fprintln(w, count)
}

func (inst *Instrument) configureEnable(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	enable, ok := params.PopBool()
	if !ok {
		inst.parser.LastError = scpi.MissingOrInvalidParameter
		return
	}
	inst.motor.SetEnabled(enable)
}

func (inst *Instrument) getEnable(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	if inst.motor.Enabled() {
		fmt.Fprintln(w, 1)
	} else {
		fmt.Fprintln(w, 0)
	}
}

func (inst *Instrument) configureSpeedSource(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	source, ok := params.PopChoice(speedSources)
	if !ok {
		inst.parser.LastError = scpi.MissingOrInvalidParameter
		return
	}
	inst.motor.SetSpeedSource(source)
}

func (inst *Instrument) getSpeedSource(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	name, _ := scpi.ChoiceName(speedSources, inst.motor.SpeedSource())
	fmt.Fprintln(w, name)
}

func (inst *Instrument) configureSpeed(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	rpm, ok := params.PopFloat()
	if !ok || !inst.motor.SetSpeedReference(rpm) {
		inst.parser.LastError = scpi.MissingOrInvalidParameter
	}
}

func (inst *Instrument) configureDutyCycle(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	pct, ok := params.PopFloat()
	if !ok || !inst.motor.SetDutyCycleReference(pct) {
		inst.parser.LastError = scpi.MissingOrInvalidParameter
	}
}

// configureGateFrequency stops the motor before retuning the gate drive;
// the new frequency only takes effect from a standstill.
func (inst *Instrument) configureGateFrequency(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	inst.motor.SetEnabled(false)

	hz, ok := params.PopUint32()
	if !ok || hz < inst.cfg.Motor.MinGateFrequency || hz > inst.cfg.Motor.MaxGateFrequency {
		inst.parser.LastError = scpi.MissingOrInvalidParameter
		return
	}
	inst.motor.SetGateFrequency(hz)
}

func (inst *Instrument) getGateFrequency(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	fmt.Fprintln(w, inst.motor.GateFrequency())
}

func (inst *Instrument) configureDirection(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	direction, ok := params.PopChoice(motorDirections)
	if !ok {
		inst.parser.LastError = scpi.MissingOrInvalidParameter
		return
	}
	inst.motor.SetDesiredDirection(direction)
}

func (inst *Instrument) getDirection(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	name, _ := scpi.ChoiceName(motorDirections, inst.motor.DesiredDirection())
	fmt.Fprintln(w, name)
}

func (inst *Instrument) measureSpeed(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	fmt.Fprintln(w, inst.motor.Speed())
}

func (inst *Instrument) measureVoltage(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	fmt.Fprintln(w, inst.motor.Voltage())
}

func (inst *Instrument) measureCurrent(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	fmt.Fprintln(w, inst.motor.Current())
}

func (inst *Instrument) measureDirection(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	direction := inst.motor.ActualDirection()
	if direction == DirectionUnknown {
		fmt.Fprintln(w, "UNKNown")
		return
	}
	name, _ := scpi.ChoiceName(motorDirections, direction)
	fmt.Fprintln(w, name)
}

func (inst *Instrument) measureDutyCycle(c *scpi.Commands, params *scpi.Parameters, w io.Writer) {
	fmt.Fprintln(w, inst.motor.DutyCycle())
}
