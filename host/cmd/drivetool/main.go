package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"godrive/host/serial"
	"godrive/host/telemetry"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	raw     = flag.Bool("raw", false, "Print console lines verbatim instead of decoding telemetry")
	monitor = flag.Bool("monitor", false, "Only print telemetry, do not read commands from stdin")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	// Blocking reads: a timeout would make the console scanner see EOF
	// whenever the firmware is quiet.
	cfg.ReadTimeout = 0

	fmt.Printf("Connecting to drive on %s...\n", cfg.Device)
	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	go printLoop(port)

	if *monitor {
		select {}
	}

	fmt.Println("Connected. Enter commands (type 'help' for the firmware command set, 'quit' to exit):")
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

		switch line {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		default:
			// Everything else is the firmware's command set; forward it
			// and let the device answer (including its own help text).
			if _, err := port.Write([]byte(line + "\n")); err != nil {
				fmt.Fprintf(os.Stderr, "Error: write failed: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

// printLoop prints every line the firmware sends. Status reports are
// decoded into a human-readable form unless -raw is set.
func printLoop(port serial.Port) {
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if *raw {
			fmt.Println(line)
			continue
		}

		st, ok := telemetry.Parse(line)
		if !ok {
			fmt.Println(line)
			continue
		}
		health := "ok"
		if !st.Healthy() {
			health = "FAULT:" + st.Fault
		}
		fmt.Printf("position %12d counts  velocity %10d counts/s  %s  uv=%d\n",
			st.Position, st.Velocity, health, st.Undervoltage)
	}
	// EOF or read error: the device went away.
	fmt.Fprintln(os.Stderr, "device disconnected")
	os.Exit(1)
}
