// Package instrument implements a simulated BLDC motor controller exposed
// over SCPI. It consumes the parser engine only through the registration
// API and the handler contract, standing in for the hardware-facing
// firmware the engine is normally embedded in.
package instrument

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the instrument identity and motor limits.
type Config struct {
	Identity IdentityConfig `toml:"identity"`
	Motor    MotorConfig    `toml:"motor"`
}

// IdentityConfig is the *IDN? response, field by field.
type IdentityConfig struct {
	Manufacturer string `toml:"manufacturer"`
	Model        string `toml:"model"`
	Serial       string `toml:"serial"`
	Firmware     string `toml:"firmware"`
}

// Speed control modes. The mode decides which command set the instrument
// exposes: closed loop takes a speed reference in RPM, open loop takes a
// gate duty cycle in percent.
const (
	ControlClosedLoop = "closed-loop"
	ControlOpenLoop   = "open-loop"
)

// MotorConfig holds the simulated motor's electrical limits.
type MotorConfig struct {
	// ControlMode is ControlClosedLoop or ControlOpenLoop.
	ControlMode string `toml:"control_mode"`
	// Poles is the number of motor poles.
	Poles int `toml:"poles"`
	// MinGateFrequency and MaxGateFrequency bound the accepted gate PWM
	// frequency in Hz.
	MinGateFrequency uint32 `toml:"min_gate_frequency"`
	MaxGateFrequency uint32 `toml:"max_gate_frequency"`
	// MaxSpeed is the highest accepted speed reference in RPM.
	MaxSpeed float64 `toml:"max_speed"`
	// BusVoltage is the simulated VBUS voltage in volts.
	BusVoltage float64 `toml:"bus_voltage"`
	// FullLoadCurrent is the simulated current draw at MaxSpeed in amps.
	FullLoadCurrent float64 `toml:"full_load_current"`
	// DefaultGateFrequency is the gate frequency at power-up in Hz.
	DefaultGateFrequency uint32 `toml:"default_gate_frequency"`
}

// DefaultConfig returns the configuration the simulator boots with when no
// file is given.
func DefaultConfig() Config {
	return Config{
		Identity: IdentityConfig{
			Manufacturer: "NEXPERIA",
			Model:        "NEVB-MTR1-xx",
			Serial:       "",
			Firmware:     "NEVC-MTR1-t01-1.0.0",
		},
		Motor: MotorConfig{
			ControlMode:          ControlClosedLoop,
			Poles:                8,
			MinGateFrequency:     7183,
			MaxGateFrequency:     100000,
			MaxSpeed:             10000,
			BusVoltage:           24.0,
			FullLoadCurrent:      5.0,
			DefaultGateFrequency: 20000,
		},
	}
}

// LoadConfig reads a TOML configuration file. Missing values fall back to
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load instrument config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid instrument config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	m := &c.Motor
	if m.ControlMode != ControlClosedLoop && m.ControlMode != ControlOpenLoop {
		return fmt.Errorf("control_mode must be %q or %q, got %q",
			ControlClosedLoop, ControlOpenLoop, m.ControlMode)
	}
	if m.MinGateFrequency >= m.MaxGateFrequency {
		return fmt.Errorf("min_gate_frequency %d must be below max_gate_frequency %d",
			m.MinGateFrequency, m.MaxGateFrequency)
	}
	if m.DefaultGateFrequency < m.MinGateFrequency || m.DefaultGateFrequency > m.MaxGateFrequency {
		return fmt.Errorf("default_gate_frequency %d outside [%d, %d]",
			m.DefaultGateFrequency, m.MinGateFrequency, m.MaxGateFrequency)
	}
	if m.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %g", m.MaxSpeed)
	}
	if m.Poles <= 0 {
		return fmt.Errorf("poles must be positive, got %d", m.Poles)
	}
	return nil
}
