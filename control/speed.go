package control

// Speed estimation over a fixed-depth ring of recent position samples.
// Velocity is the net displacement across the window divided by its
// time span, which rejects quantization noise at the cost of latency
// proportional to the ring depth.

type posStamp struct {
	pos  int64  // unwrapped position, counts
	tick uint32 // capture time, timer ticks
}

// Estimator derives angular velocity in counts per second from
// unwrapped positions stamped with a tick counter running at tickHz.
type Estimator struct {
	ring   []posStamp
	head   int // next write slot
	count  int
	tickHz uint32
}

// NewEstimator returns an estimator over the last depth samples.
func NewEstimator(depth int, tickHz uint32) *Estimator {
	if depth < 2 {
		depth = 2
	}
	return &Estimator{ring: make([]posStamp, depth), tickHz: tickHz}
}

// Push records one position sample.
func (e *Estimator) Push(pos int64, tick uint32) {
	e.ring[e.head] = posStamp{pos: pos, tick: tick}
	e.head++
	if e.head == len(e.ring) {
		e.head = 0
	}
	if e.count < len(e.ring) {
		e.count++
	}
}

// Estimate returns the velocity over the buffered window in counts per
// second. A constant position yields exactly zero. Revolutions are
// inherently accounted for because positions are unwrapped.
func (e *Estimator) Estimate() int32 {
	if e.count < 2 {
		return 0
	}
	newest := e.ring[e.index(1)]
	oldest := e.ring[e.index(e.count)]
	dpos := newest.pos - oldest.pos
	if dpos == 0 {
		return 0
	}
	dticks := newest.tick - oldest.tick // wrap-safe in uint32
	if dticks == 0 {
		return 0
	}
	return int32(dpos * int64(e.tickHz) / int64(dticks))
}

// index returns the ring slot of the n-th most recent sample (1-based).
func (e *Estimator) index(n int) int {
	i := e.head - n
	if i < 0 {
		i += len(e.ring)
	}
	return i
}

// Reset empties the window.
func (e *Estimator) Reset() {
	e.head = 0
	e.count = 0
}
