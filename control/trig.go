package control

// Fast fixed-point trigonometry for commutation.
// Angles follow the firmware-wide convention of one full turn = 65536
// counts in a uint16, so wrap-around is free in 16-bit arithmetic.

import "math"

// Angle unit constants (encoder counts, 65536 per mechanical turn).
const (
	FullTurn    = 1 << 16
	HalfTurn    = 1 << 15
	QuarterTurn = 1 << 14
	ThirdTurn   = FullTurn / 3 // 120 electrical degrees, for 3-phase laws
)

// Q15 represents 1.0 in the signed fixed-point format used for
// amplitudes and trig results (32767 ~= +1.0, -32767 ~= -1.0).
const Q15 = 1 << 15

const (
	sineBits     = 10
	sineSize     = 1 << sineBits // table entries per turn
	sineShift    = 16 - sineBits // angle bits below table resolution
	sineFracMask = 1<<sineShift - 1
)

// sineLUT holds one full turn of Q15 sine values plus a duplicated
// first entry so interpolation never needs an index wrap.
var sineLUT [sineSize + 1]int16

func init() {
	for i := 0; i <= sineSize; i++ {
		phase := 2 * math.Pi * float64(i) / float64(sineSize)
		sineLUT[i] = int16(math.Round((Q15 - 1) * math.Sin(phase)))
	}
}

// Sin returns sin(angle) in Q15 using table lookup with linear
// interpolation between entries. Valid for the entire uint16 range.
func Sin(angle uint16) int16 {
	idx := angle >> sineShift
	frac := int32(angle & sineFracMask)
	s0 := int32(sineLUT[idx])
	s1 := int32(sineLUT[idx+1])
	return int16(s0 + ((s1-s0)*frac)>>sineShift)
}

// Cos returns cos(angle) in Q15.
func Cos(angle uint16) int16 {
	return Sin(angle + QuarterTurn)
}

// SinCos returns both components of the unit vector at angle.
func SinCos(angle uint16) (sin, cos int16) {
	return Sin(angle), Sin(angle + QuarterTurn)
}
