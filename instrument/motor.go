package instrument

// Motor directions, also used as choice tags on the wire.
const (
	DirectionForward int8 = 0
	DirectionReverse int8 = 1
	// DirectionUnknown is reported while the rotor is not turning.
	DirectionUnknown int8 = -1
)

// Speed reference sources.
const (
	SourceLocal  int8 = 0
	SourceRemote int8 = 1
)

// Motor is a simulated brushless DC motor. It models just enough state for
// the SCPI command set: an enable flag, a direction, a speed reference with
// its source, and a gate PWM frequency. The "measurements" derive
// deterministically from that state.
type Motor struct {
	cfg MotorConfig

	enabled          bool
	desiredDirection int8
	speedSource      int8
	speedRef         float64
	dutyRef          float64
	gateFrequency    uint32
}

// NewMotor creates a stopped motor with the configured power-up defaults.
func NewMotor(cfg MotorConfig) *Motor {
	return &Motor{
		cfg:              cfg,
		desiredDirection: DirectionForward,
		speedSource:      SourceLocal,
		gateFrequency:    cfg.DefaultGateFrequency,
	}
}

// SetEnabled starts or stops the motor.
func (m *Motor) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Enabled reports whether the motor is running.
func (m *Motor) Enabled() bool {
	return m.enabled
}

// SetDesiredDirection sets the commanded rotation direction.
func (m *Motor) SetDesiredDirection(direction int8) {
	m.desiredDirection = direction
}

// DesiredDirection returns the commanded rotation direction.
func (m *Motor) DesiredDirection() int8 {
	return m.desiredDirection
}

// ActualDirection returns the measured rotation direction, or
// DirectionUnknown while the rotor is not turning.
func (m *Motor) ActualDirection() int8 {
	if m.Speed() == 0 {
		return DirectionUnknown
	}
	return m.desiredDirection
}

// SetSpeedSource selects where the speed reference comes from. Switching
// to the remote source zeroes the reference until a new one is commanded.
func (m *Motor) SetSpeedSource(source int8) {
	m.speedSource = source
	if source == SourceRemote {
		m.speedRef = 0
		m.dutyRef = 0
	}
}

// SpeedSource returns the active speed reference source.
func (m *Motor) SpeedSource() int8 {
	return m.speedSource
}

// SetSpeedReference sets the speed reference in RPM. It reports false for
// references outside [0, MaxSpeed].
func (m *Motor) SetSpeedReference(rpm float64) bool {
	if rpm < 0 || rpm > m.cfg.MaxSpeed {
		return false
	}
	m.speedRef = rpm
	return true
}

// SpeedReference returns the commanded speed in RPM.
func (m *Motor) SpeedReference() float64 {
	return m.speedRef
}

// SetDutyCycleReference sets the commanded gate duty cycle in percent,
// used for open-loop control. It reports false for values outside
// [0, 100].
func (m *Motor) SetDutyCycleReference(pct float64) bool {
	if pct < 0 || pct > 100 {
		return false
	}
	m.dutyRef = pct
	return true
}

// SetGateFrequency sets the gate PWM frequency in Hz. Range checking is
// the caller's responsibility; the handler validates against the config.
func (m *Motor) SetGateFrequency(hz uint32) {
	m.gateFrequency = hz
}

// GateFrequency returns the gate PWM frequency in Hz.
func (m *Motor) GateFrequency() uint32 {
	return m.gateFrequency
}

// Speed returns the simulated rotor speed in RPM: the commanded speed when
// the motor is enabled, zero otherwise. In open-loop mode the speed scales
// with the duty cycle.
func (m *Motor) Speed() float64 {
	if !m.enabled {
		return 0
	}
	if m.cfg.ControlMode == ControlOpenLoop {
		return m.dutyRef / 100 * m.cfg.MaxSpeed
	}
	return m.speedRef
}

// Voltage returns the simulated bus voltage in volts.
func (m *Motor) Voltage() float64 {
	return m.cfg.BusVoltage
}

// Current returns the simulated current draw in amps, proportional to the
// rotor speed.
func (m *Motor) Current() float64 {
	return m.cfg.FullLoadCurrent * m.Speed() / m.cfg.MaxSpeed
}

// DutyCycle returns the simulated gate PWM duty cycle in percent. A
// disabled motor reports zero.
func (m *Motor) DutyCycle() float64 {
	if !m.enabled {
		return 0
	}
	if m.cfg.ControlMode == ControlOpenLoop {
		return m.dutyRef
	}
	return m.speedRef / m.cfg.MaxSpeed * 100
}
