package control

// Commutation: maps a drive command plus electrical angle into
// per-channel duty cycles for the selected motor topology.
//
// The four output channels drive two H-bridges (A+/A-/B+/B-) for DC
// and stepper motors, or three half-bridges plus an unused channel for
// BLDC. The commutation law is resolved once at configuration time so
// the per-tick path contains no dispatch on the motor type.

// MotorType selects the commutation law.
type MotorType uint8

const (
	MotorDC MotorType = iota
	MotorStepper
	MotorBLDC
)

func (m MotorType) String() string {
	switch m {
	case MotorDC:
		return "dc"
	case MotorStepper:
		return "stepper"
	case MotorBLDC:
		return "bldc"
	}
	return "unknown"
}

// PhasePattern permutes the four output channels so board routing can
// be fixed in configuration instead of firmware rebuilds.
type PhasePattern uint8

const (
	PatternABCD PhasePattern = iota
	PatternACDB
	PatternADBC
	PatternDCAB
)

var phasePatterns = [...][4]uint8{
	PatternABCD: {0, 1, 2, 3},
	PatternACDB: {0, 2, 3, 1},
	PatternADBC: {0, 3, 1, 2},
	PatternDCAB: {3, 2, 0, 1},
}

// Command is the per-tick drive request handed to the commutator.
type Command struct {
	Amplitude int16  // signed magnitude in Q15; sign selects direction
	ElAngle   uint16 // electrical angle
}

// Frame is one tick's per-channel duty output, each in [0, MaxDuty].
type Frame [4]uint16

// commuteFunc produces signed per-phase drive levels in Q15. For DC
// and stepper motors the entries are bridge voltages (sign = bridge
// polarity); for BLDC they are zero-centered half-bridge duties.
type commuteFunc func(cmd Command) [4]int16

// Selector binds the active commutation law, channel pattern, and duty
// scale. It is immutable during a tick; reconfiguration happens only
// between ticks.
type Selector struct {
	law     commuteFunc
	motor   MotorType
	pattern PhasePattern
	perm    [4]uint8
	maxDuty uint16
}

// NewSelector resolves the commutation law for the motor type. Unknown
// types and patterns are configuration errors.
func NewSelector(motor MotorType, pattern PhasePattern, maxDuty uint16) (*Selector, error) {
	s := &Selector{motor: motor, maxDuty: maxDuty}
	switch motor {
	case MotorDC:
		s.law = commuteDC
	case MotorStepper:
		s.law = commuteStepper
	case MotorBLDC:
		s.law = commuteBLDC
	default:
		return nil, errUnknownMotor
	}
	if int(pattern) >= len(phasePatterns) {
		return nil, errUnknownPattern
	}
	s.pattern = pattern
	s.perm = phasePatterns[pattern]
	return s, nil
}

// Motor returns the active motor type.
func (s *Selector) Motor() MotorType {
	return s.motor
}

// Pattern returns the active channel permutation.
func (s *Selector) Pattern() PhasePattern {
	return s.pattern
}

// Commute computes the duty frame for one tick. All outputs are
// bounded to [0, maxDuty] by construction.
func (s *Selector) Commute(cmd Command) Frame {
	v := s.law(cmd)
	var f Frame
	switch s.motor {
	case MotorDC:
		f[0], f[1] = s.bridge(v[0])
	case MotorStepper:
		f[0], f[1] = s.bridge(v[0])
		f[2], f[3] = s.bridge(v[1])
	case MotorBLDC:
		for i := 0; i < 3; i++ {
			f[i] = s.centered(v[i])
		}
	}
	return Frame{f[s.perm[0]], f[s.perm[1]], f[s.perm[2]], f[s.perm[3]]}
}

// bridge converts a signed Q15 bridge voltage into the sign-magnitude
// duty pair (high side, low side) of one H-bridge.
func (s *Selector) bridge(v int16) (uint16, uint16) {
	if v >= 0 {
		return uint16((int32(v)*int32(s.maxDuty) + Q15/2) >> 15), 0
	}
	return 0, uint16((int32(-v)*int32(s.maxDuty) + Q15/2) >> 15)
}

// centered converts a zero-centered Q15 half-bridge duty into an
// unsigned duty around the half-scale midpoint.
func (s *Selector) centered(v int16) uint16 {
	return uint16((int64(int32(v)+Q15)*int64(s.maxDuty) + FullTurn/2) >> 16)
}

// commuteDC drives one bridge directly from the command; duty is a
// monotonic function of command magnitude.
func commuteDC(cmd Command) [4]int16 {
	return [4]int16{cmd.Amplitude, 0, 0, 0}
}

// commuteStepper produces the sine/cosine microstep pattern indexed by
// electrical angle: bridge A carries cos, bridge B carries sin, so one
// full electrical cycle walks the classic four-step sequence with
// microsteps in between. Table-driven via the trig LUT, deterministic
// per step.
func commuteStepper(cmd Command) [4]int16 {
	amp := int32(cmd.Amplitude)
	sin, cos := SinCos(cmd.ElAngle)
	return [4]int16{
		int16(amp * int32(cos) >> 15),
		int16(amp * int32(sin) >> 15),
		0, 0,
	}
}

// StepIndex returns the full-step quadrant of an electrical angle,
// advancing by exactly one (cyclically) per quarter-turn increment.
func StepIndex(elAngle uint16) uint8 {
	return uint8(elAngle >> 14)
}

// commuteBLDC decomposes the commanded voltage vector into three
// half-bridge duties using midpoint injection (min/max form of SVPWM):
// subtracting the mean of the instantaneous extremes centers the
// waveform and extends the linear range by 2/sqrt(3) without ever
// clipping a single phase, so the vector direction is preserved
// exactly.
func commuteBLDC(cmd Command) [4]int16 {
	amp := int32(cmd.Amplitude)
	a := amp * int32(Cos(cmd.ElAngle)) >> 15
	b := amp * int32(Cos(cmd.ElAngle-ThirdTurn)) >> 15
	c := amp * int32(Cos(cmd.ElAngle+ThirdTurn)) >> 15

	hi, lo := a, a
	if b > hi {
		hi = b
	}
	if c > hi {
		hi = c
	}
	if b < lo {
		lo = b
	}
	if c < lo {
		lo = c
	}
	mid := (hi + lo) / 2

	return [4]int16{int16(a - mid), int16(b - mid), int16(c - mid), 0}
}

// AmplitudeForVoltage converts a requested motor voltage into the Q15
// duty amplitude that realizes it at the present supply level:
// amplitude = request / supply. When the supply is insufficient the
// amplitude saturates at full scale, which scales the whole voltage
// vector uniformly (direction preserved) instead of clipping phases
// independently; limited reports that event for telemetry.
func AmplitudeForVoltage(requestMV, supplyMV int32) (amp int16, limited bool) {
	neg := requestMV < 0
	if neg {
		requestMV = -requestMV
	}
	duty := (int64(requestMV) << 15) / int64(supplyMV+1)
	if duty > Q15-1 {
		duty = Q15 - 1
		limited = true
	}
	amp = int16(duty)
	if neg {
		amp = -amp
	}
	return amp, limited
}

// QAxisCurrent projects three phase currents (signed Q15, summing to
// zero) onto the rotor q axis via the Clarke and Park transforms. The
// result is the torque-producing current used as feedback by the
// torque control law.
func QAxisCurrent(ia, ib, ic int32, elAngle uint16) int32 {
	const invSqrt3 = 18919 // 1/sqrt(3) in Q15
	_ = ic                 // ia+ib+ic == 0; two measurements determine the third
	sin, cos := SinCos(elAngle)
	ibeta := (ia + 2*ib) * invSqrt3 >> 15
	iq := (int64(ibeta)*int64(cos) - int64(ia)*int64(sin)) >> 15
	return int32(iq)
}
