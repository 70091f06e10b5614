// Package client implements the host side of a SCPI conversation: it
// sends terminated command lines over a serial port and collects reply
// lines until the instrument goes quiet.
package client

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"goscpi/host/serial"
)

// Client is a connection to a SCPI instrument.
type Client struct {
	port       serial.Port
	terminator string

	// ReplyTimeout is how long a query waits for the first reply byte.
	ReplyTimeout time.Duration

	connected bool
}

// New creates a client that is not yet connected. Command lines are
// terminated with a newline.
func New() *Client {
	return &Client{
		terminator:   "\n",
		ReplyTimeout: 500 * time.Millisecond,
	}
}

// Connect opens the instrument's serial device with default settings.
func (c *Client) Connect(device string) error {
	return c.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens the instrument with a custom serial config.
// The config's ReadTimeout must be non-zero; reply collection relies on
// Read returning when the line goes idle.
func (c *Client) ConnectWithConfig(cfg *serial.Config) error {
	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("serial read timeout must be positive")
	}
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	c.port = port
	c.connected = true
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.connected = false
	if c.port != nil {
		return c.port.Close()
	}
	return nil
}

// Send writes one command line, adding the terminator. It does not wait
// for a reply; use Query for commands that answer.
func (c *Client) Send(line string) error {
	if !c.connected {
		return fmt.Errorf("not connected")
	}
	if _, err := c.port.Write([]byte(line + c.terminator)); err != nil {
		return fmt.Errorf("failed to send %q: %w", line, err)
	}
	return nil
}

// Query sends one command line and returns the instrument's reply with
// trailing line endings removed. An empty reply means the instrument
// stayed silent, which is what unknown commands and plain set commands
// do.
func (c *Client) Query(line string) (string, error) {
	if err := c.Send(line); err != nil {
		return "", err
	}

	var reply bytes.Buffer
	buf := make([]byte, 256)
	deadline := time.Now().Add(c.ReplyTimeout)

	for {
		n, err := c.port.Read(buf)
		if n > 0 {
			reply.Write(buf[:n])
			// keep draining while bytes are flowing
			deadline = time.Now().Add(c.ReplyTimeout)
			if bytes.HasSuffix(reply.Bytes(), []byte(c.terminator)) {
				break
			}
			continue
		}
		if err != nil && reply.Len() > 0 {
			break
		}
		if time.Now().After(deadline) {
			break
		}
	}

	return strings.TrimRight(reply.String(), "\r\n"), nil
}

// Identify runs *IDN? and returns the identification string.
func (c *Client) Identify() (string, error) {
	return c.Query("*IDN?")
}

// NextError runs SYSTem:ERRor?, popping one error from the instrument.
func (c *Client) NextError() (string, error) {
	return c.Query("SYSTem:ERRor?")
}
