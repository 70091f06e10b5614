// Command scpi-host is an interactive console for talking to a SCPI
// instrument over a serial port. Anything that is not a console command
// is sent to the instrument verbatim.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"goscpi/host/client"
	"goscpi/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	timeout = flag.Duration("timeout", 500*time.Millisecond, "Reply timeout per query")
)

func main() {
	flag.Parse()

	c := client.New()
	c.ReplyTimeout = *timeout

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to instrument on %s...\n", *device)
	if err := c.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	idn, err := c.Identify()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: identification failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected: %s\n", idn)

	fmt.Println("Enter SCPI commands, or 'help' for console commands.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		switch parts[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "send":
			if len(parts) < 2 {
				fmt.Println("Usage: send <command line>")
				continue
			}
			query(c, strings.Join(parts[1:], " "))

		case "idn":
			query(c, "*IDN?")

		case "err":
			query(c, "SYSTem:ERRor?")

		case "script":
			if len(parts) != 2 {
				fmt.Println("Usage: script <file>")
				continue
			}
			if err := runScript(c, parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			query(c, line)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nConsole commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  send <line>    - Send a command line (quote to keep spaces)")
	fmt.Println("  idn            - Query the instrument identification (*IDN?)")
	fmt.Println("  err            - Pop one error from the instrument (SYSTem:ERRor?)")
	fmt.Println("  script <file>  - Send each line of a file to the instrument")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println("\nAnything else is sent to the instrument as a SCPI command line.")
	fmt.Println()
}

// query sends one command and prints the reply, if any. Set commands
// answer with silence, which is normal.
func query(c *client.Client, line string) {
	reply, err := c.Query(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if reply != "" {
		fmt.Println(reply)
	}
}

// runScript sends a file of SCPI commands, one per line. Blank lines and
// lines starting with '#' are skipped.
func runScript(c *client.Client, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Printf(">> %s\n", line)
		query(c, line)
	}
	return scanner.Err()
}
