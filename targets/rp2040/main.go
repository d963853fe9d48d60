//go:build rp2040

package main

import (
	"machine"
	"time"

	"godrive/control"
)

const (
	// Phase outputs on GPIO2..GPIO5 (PWM slices 1 and 2).
	phasePinFirst = machine.GPIO2
	// Encoder A/B on GPIO10/GPIO11.
	encoderPinA = machine.GPIO10
	encoderCPR  = 4096

	pwmCarrierHz = 25000

	statusInterval = 100 * time.Millisecond
)

// request carries a console command into the control loop so all drive
// state changes happen between ticks.
type request struct {
	op  byte // 'e' enable, 's' setpoint, 'm' motor, 'p' pattern, 'c' clear fault
	arg int64
}

var requests = make(chan request, 8)

func main() {
	// Disable watchdog on boot to clear any previous state
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	// machine.Serial is USB CDC on RP2040
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return
	}
	control.SetDebugWriter(serialLine)
	control.SetDebugEnabled(true)

	cfg := control.DefaultBLDCConfig()

	drive, err := control.New(*cfg)
	if err != nil {
		fatal("drive: " + err.Error())
	}

	pwm, err := NewPhasePWM(phasePinFirst, uint32(cfg.MaxDuty), pwmCarrierHz)
	if err != nil {
		fatal("pwm: " + err.Error())
	}

	sampler, err := NewBoardSampler()
	if err != nil {
		fatal("adc: " + err.Error())
	}

	quad, err := NewQuadrature(0, 0, encoderPinA, encoderCPR)
	if err != nil {
		fatal("encoder: " + err.Error())
	}

	usPerTick := uint32(1000000 / cfg.TickHz)

	go captureLoop(drive.Capture(), sampler, quad, usPerTick)
	go consoleLoop()

	serialLine("godrive ready, type 'help'")
	runTicks(drive, pwm, usPerTick)
}

// captureLoop feeds the drive's sample buffer. It runs twice as fast as
// the control loop so every tick sees a fresh snapshot.
func captureLoop(buf *control.SampleBuffer, s *BoardSampler, q *Quadrature, usPerTick uint32) {
	period := time.Duration(usPerTick/2) * time.Microsecond
	for {
		now := GetHardwareTime()
		buf.Publish(s.Sample(q.Angle(), now/usPerTick))
		time.Sleep(period)
	}
}

// runTicks is the control loop. Deadlines come from the hardware timer so
// the tick rate does not drift with scheduler latency.
func runTicks(d *control.Drive, pwm *PhasePWM, usPerTick uint32) {
	var setpoint int64
	next := GetHardwareTime() + usPerTick
	lastStatus := time.Now()
	lastFault := control.FaultNone

	for {
	drainRequests:
		for {
			select {
			case r := <-requests:
				setpoint = applyRequest(d, r, setpoint)
			default:
				break drainRequests
			}
		}

		frame, err := d.Tick(setpoint)
		pwm.WriteFrame(frame)
		if err != nil && d.LastFault() != lastFault {
			serialLine("fault: " + err.Error())
		}
		lastFault = d.LastFault()

		if d.Enabled() && time.Since(lastStatus) >= statusInterval {
			printStatus(d)
			lastStatus = time.Now()
		}

		for int32(next-GetHardwareTime()) > 0 {
			// Yield to USB and the capture goroutine
			time.Sleep(10 * time.Microsecond)
		}
		next += usPerTick
	}
}

func applyRequest(d *control.Drive, r request, setpoint int64) int64 {
	switch r.op {
	case 'e':
		d.SetEnabled(r.arg != 0)
	case 's':
		setpoint = r.arg
	case 'm':
		if err := d.SetMotor(control.MotorType(r.arg)); err != nil {
			serialLine("err: " + err.Error())
		}
	case 'p':
		if err := d.SetPhasePattern(control.PhasePattern(r.arg)); err != nil {
			serialLine("err: " + err.Error())
		}
	case 'c':
		d.ClearFault()
	}
	return setpoint
}

func printStatus(d *control.Drive) {
	// up is appended last: the host parser keys off the pos= prefix and
	// ignores keys it does not know.
	serialLine("pos=" + itoa64(d.Position()) +
		" vel=" + itoa(int(d.Speed())) +
		" fault=" + d.LastFault().String() +
		" uv=" + itoa(int(d.UndervoltageEvents())) +
		" up=" + itoa64(int64(GetHardwareUptime()/1000000)))
}

// consoleLoop reads line-based commands from USB CDC.
func consoleLoop() {
	var line [64]byte
	n := 0
	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		b, err := machine.Serial.ReadByte()
		if err != nil {
			time.Sleep(1 * time.Millisecond)
			continue
		}
		if b == '\r' {
			continue
		}
		if b != '\n' {
			if n < len(line) {
				line[n] = b
				n++
			}
			continue
		}
		execLine(string(line[:n]))
		n = 0
	}
}

func execLine(s string) {
	cmd, arg := splitWord(s)
	switch cmd {
	case "":
	case "help":
		serialLine("commands: en 0|1, sp <n>, mot dc|stepper|bldc, pat abcd|acdb|adbc|dcab, clear")
	case "en":
		if arg == "1" {
			requests <- request{op: 'e', arg: 1}
		} else {
			requests <- request{op: 'e'}
		}
	case "sp":
		v, ok := atoi64(arg)
		if !ok {
			serialLine("err: bad setpoint")
			return
		}
		requests <- request{op: 's', arg: v}
	case "mot":
		switch arg {
		case "dc":
			requests <- request{op: 'm', arg: int64(control.MotorDC)}
		case "stepper":
			requests <- request{op: 'm', arg: int64(control.MotorStepper)}
		case "bldc":
			requests <- request{op: 'm', arg: int64(control.MotorBLDC)}
		default:
			serialLine("err: unknown motor type")
		}
	case "pat":
		switch arg {
		case "abcd":
			requests <- request{op: 'p', arg: int64(control.PatternABCD)}
		case "acdb":
			requests <- request{op: 'p', arg: int64(control.PatternACDB)}
		case "adbc":
			requests <- request{op: 'p', arg: int64(control.PatternADBC)}
		case "dcab":
			requests <- request{op: 'p', arg: int64(control.PatternDCAB)}
		default:
			serialLine("err: unknown phase pattern")
		}
	case "clear":
		requests <- request{op: 'c'}
	default:
		serialLine("err: unknown command (try 'help')")
	}
}

func splitWord(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func serialLine(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}

func fatal(s string) {
	for {
		serialLine("fatal: " + s)
		time.Sleep(time.Second)
	}
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	return itoa64(int64(i))
}

func itoa64(i int64) string {
	if i == 0 {
		return "0"
	}

	// Handle negative numbers
	negative := i < 0
	if negative {
		i = -i
	}

	// Convert to string
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

func atoi64(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	negative := false
	if s[0] == '-' {
		negative = true
		s = s[1:]
		if s == "" {
			return 0, false
		}
	}
	var v int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + int64(s[i]-'0')
	}
	if negative {
		v = -v
	}
	return v, true
}
