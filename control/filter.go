package control

// First-order low-pass filtering in Q15 fixed point.
//
// The wrap-aware variant tracks angles: the difference between input
// and state is taken as the signed shortest path across the 65536-count
// wrap so filtering near the boundary never produces a spurious jump.

// turnMaskQ15 reduces the accumulator modulo one turn (counts << 15).
const turnMaskQ15 = int64(FullTurn)<<15 - 1

// LowPass implements y' = y + alpha*(x - y) with alpha in Q15.
// The accumulator keeps 15 fractional bits so small differences are
// not lost to truncation. The zero value is unusable; construct with
// NewLowPass.
type LowPass struct {
	acc    int64 // filtered output, 15 fractional bits
	alpha  int32 // smoothing factor in Q15, (0, 32768]
	wrap   bool  // input is a wrapping angle in counts
	primed bool
}

// NewLowPass returns a filter with the given Q15 smoothing factor.
// wrapAware selects shortest-path differencing for angular inputs.
func NewLowPass(alpha int32, wrapAware bool) LowPass {
	return LowPass{alpha: alpha, wrap: wrapAware}
}

// Step advances the filter by one sample and returns the new output.
// The first sample primes the state so startup has no transient.
func (f *LowPass) Step(x int32) int32 {
	if !f.primed {
		f.acc = int64(x) << 15
		f.primed = true
		return x
	}
	y := int32(f.acc >> 15)
	diff := x - y
	if f.wrap {
		diff = int32(int16(uint16(x) - uint16(y)))
	}
	f.acc += int64(f.alpha) * int64(diff)
	if f.wrap {
		f.acc &= turnMaskQ15
	}
	return int32(f.acc >> 15)
}

// Output returns the current filtered value without advancing.
func (f *LowPass) Output() int32 {
	return int32(f.acc >> 15)
}

// Reset discards the filter state; the next Step primes it again.
func (f *LowPass) Reset() {
	f.acc = 0
	f.primed = false
}

// WrapDiff returns the signed shortest-path difference a-b between two
// wrapped angles. Shared by the filter and the angular control error.
func WrapDiff(a, b uint16) int32 {
	return int32(int16(a - b))
}
