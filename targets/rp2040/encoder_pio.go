//go:build rp2040

package main

// Quadrature encoder capture using the tinygo-org/pio package. The state
// machine watches the A/B inputs and pushes a word into the RX FIFO on
// every level change; the CPU side replays the transitions through a
// lookup table to accumulate a signed count.

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program: push the two encoder inputs whenever they differ from the
// last value pushed.
//
//	.wrap_target
//	idle:
//	    mov x, pins      ; X = current A/B levels
//	    jmp x != y, push ; changed since last report?
//	    jmp idle
//	push:
//	    mov y, x         ; remember what we report
//	    in  y, 2
//	    push noblock     ; drop on overflow rather than stall
//	.wrap
//
// AssemblerV0 covers the out/set/jmp subset, so the mov/in/push opcodes
// are hand-encoded. Jump targets are absolute instruction addresses,
// hence the program is loaded at origin 0.
var quadWatchProgram = []uint16{
	0xa020, // 0: mov x, pins
	0x00a3, // 1: jmp x != y, 3
	0x0000, // 2: jmp 0
	0xa041, // 3: mov y, x
	0x4042, // 4: in y, 2
	0x8000, // 5: push noblock
}

const quadWatchOrigin = 0

// quadStep maps (previous<<2 | current) A/B levels to a count delta.
// Invalid transitions (both lines changed at once) contribute zero.
var quadStep = [16]int8{
	0, 1, -1, 0,
	-1, 0, 0, 1,
	1, 0, 0, -1,
	0, -1, 1, 0,
}

// Quadrature decodes an incremental encoder on two consecutive pins.
type Quadrature struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pinA   machine.Pin
	counts int32
	prev   uint8
	cpr    int32
}

// NewQuadrature claims a state machine on the given PIO block and starts
// watching pinA and pinA+1. cpr is the encoder's counts per mechanical
// revolution (four times its line count).
func NewQuadrature(pioNum, smNum uint8, pinA machine.Pin, cpr int32) (*Quadrature, error) {
	if cpr <= 0 {
		return nil, errors.New("counts per revolution must be positive")
	}

	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	q := &Quadrature{
		pio:  pioHW,
		sm:   pioHW.StateMachine(smNum),
		pinA: pinA,
		cpr:  cpr,
	}

	q.sm.TryClaim()

	offset, err := q.pio.AddProgram(quadWatchProgram, quadWatchOrigin)
	if err != nil {
		return nil, err
	}

	pinB := pinA + 1
	pinA.Configure(machine.PinConfig{Mode: q.pio.PinMode()})
	pinB.Configure(machine.PinConfig{Mode: q.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()

	// Both mov x, pins and in y, 2 read from the IN pin base.
	cfg.SetInPins(pinA)

	// Shift left so the two sampled bits land in the low bits of the
	// pushed word.
	cfg.SetInShift(false, false, 32)

	cfg.SetWrap(offset+uint8(len(quadWatchProgram))-1, offset)

	// Poll the inputs at sysclk/16. Far above any mechanical edge rate,
	// slow enough that contact bounce shorter than the divider period
	// collapses into a single transition.
	cfg.SetClkDivIntFrac(16, 0)

	q.sm.Init(offset, cfg)

	// Encoder lines are inputs.
	q.sm.SetPindirsConsecutive(pinA, 2, false)

	// Seed the CPU-side state from the live pin levels so the first
	// reported transition is interpreted against reality.
	q.prev = q.levels()

	q.sm.SetEnabled(true)
	return q, nil
}

func (q *Quadrature) levels() uint8 {
	var v uint8
	if q.pinA.Get() {
		v |= 1
	}
	if (q.pinA + 1).Get() {
		v |= 2
	}
	return v
}

// drain replays every transition the state machine captured since the
// last call.
func (q *Quadrature) drain() {
	for !q.sm.IsRxFIFOEmpty() {
		cur := uint8(q.sm.RxGet() & 0x3)
		q.counts += int32(quadStep[q.prev<<2|cur])
		q.prev = cur
	}
}

// Counts returns the accumulated signed count.
func (q *Quadrature) Counts() int32 {
	q.drain()
	return q.counts
}

// Angle returns the shaft angle scaled to 65536 counts per revolution.
func (q *Quadrature) Angle() uint16 {
	q.drain()
	return uint16((int64(q.counts) << 16) / int64(q.cpr))
}

// Stop halts the state machine and clears any pending transitions.
func (q *Quadrature) Stop() {
	q.sm.SetEnabled(false)
	q.sm.ClearFIFOs()
	q.sm.Restart()
}
