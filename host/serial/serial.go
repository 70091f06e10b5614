// Package serial opens the byte stream between a host program and a
// SCPI instrument. The Port interface keeps the transport swappable:
// a real UART through github.com/tarm/serial, or an in-memory pipe in
// tests.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is a byte stream to an instrument.
type Port interface {
	io.ReadWriteCloser
}

// Config holds the serial line parameters.
type Config struct {
	// Device is the port path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud is the line rate. USB CDC devices ignore it.
	Baud int

	// ReadTimeout bounds a single Read call. Zero blocks forever.
	ReadTimeout time.Duration
}

// DefaultConfig returns the usual settings for an instrument on a
// USB serial adapter.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// NativePort is a Port over a real serial device.
type NativePort struct {
	port *serial.Port
}

// Open opens the configured serial device.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{port: port}, nil
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}
