// Command motorsim runs a simulated BLDC motor controller that speaks
// SCPI over a serial port or over stdin/stdout. It answers the same
// command set as the NEVB-MTR1 evaluation firmware, so host tooling can
// be exercised without hardware.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"goscpi/host/serial"
	"goscpi/instrument"
	"goscpi/scpi"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	configPath = flag.String("config", "", "Instrument TOML config file")
	stdio      = flag.Bool("stdio", false, "Serve on stdin/stdout instead of a serial port")
	debug      = flag.Bool("debug", false, "Print the parser's command tables at startup")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := instrument.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = instrument.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	parser := scpi.New(scpi.Config{})
	instrument.New(cfg, parser)
	if errs := parser.SetupErrors(); errs != (scpi.SetupErrors{}) {
		logger.Error("command registration overflowed", "errors", fmt.Sprintf("%+v", errs))
		os.Exit(1)
	}
	if *debug {
		parser.PrintDebugInfo(os.Stderr)
	}

	var conn io.ReadWriter
	stopOnEOF := false
	if *stdio {
		conn = struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}
		stopOnEOF = true
		logger.Info("serving on stdio",
			"model", cfg.Identity.Model, "control_mode", cfg.Motor.ControlMode)
	} else {
		serialCfg := serial.DefaultConfig(*device)
		serialCfg.Baud = *baud
		port, err := serial.Open(serialCfg)
		if err != nil {
			logger.Error("failed to open serial port", "error", err)
			os.Exit(1)
		}
		defer port.Close()
		conn = port
		logger.Info("serving",
			"device", *device, "model", cfg.Identity.Model,
			"control_mode", cfg.Motor.ControlMode)
	}

	serve(parser, conn, stopOnEOF, logger)
}

// serve pumps bytes from the connection into the parser. Replies flow
// back through the stream's writer. Serial reads return io.EOF on their
// read timeout, which is what lets the parser's own message timeout run;
// on stdio an EOF means the peer is gone.
func serve(parser *scpi.Parser, conn io.ReadWriter, stopOnEOF bool, logger *slog.Logger) {
	stream := scpi.NewFifoStream(256, conn)
	buf := make([]byte, 256)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			stream.Push(buf[:n])
		}
		parser.ProcessInput(stream)

		if err == io.EOF {
			if stopOnEOF && n == 0 {
				logger.Info("input closed, shutting down")
				return
			}
			continue
		}
		if err != nil {
			logger.Error("read failed", "error", err)
			return
		}
	}
}
