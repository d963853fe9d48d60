package control

// Encoder tracking: converts raw 16-bit shaft counts into a wrapped
// angle plus a signed revolution counter that is invariant across wrap
// events.

// AngleSample is the per-tick output of the tracker.
type AngleSample struct {
	Raw         uint16 // raw counter value as captured
	Angle       uint16 // wrapped angle, always == Raw after a good update
	Revolutions int32  // signed full-turn counter
}

// Tracker accumulates raw encoder counts into an unwrapped 64-bit
// position. The wrapped angle and revolution counter are views of the
// same position, so the round-trip law (position mod 65536 == raw)
// holds by construction.
type Tracker struct {
	position int64
	prev     uint16
	maxDelta int32
	primed   bool
}

// NewTracker returns a tracker that rejects per-tick deltas with a
// magnitude above maxDelta counts. maxDelta must be below half the
// counter range; beyond that a delta is ambiguous anyway.
func NewTracker(maxDelta int32) *Tracker {
	if maxDelta <= 0 || maxDelta >= HalfTurn {
		maxDelta = HalfTurn - 1
	}
	return &Tracker{maxDelta: maxDelta}
}

// Update consumes one raw count. The delta from the previous count is
// taken as the signed shortest path, so a counter wrap moves the
// revolution counter by exactly one. A delta above the plausibility
// bound returns ErrEncoderFault and holds the last good state; the
// caller decides between holding output and forcing a safe stop.
func (t *Tracker) Update(raw uint16) (AngleSample, error) {
	if !t.primed {
		t.position = int64(raw)
		t.prev = raw
		t.primed = true
		return t.sample(raw), nil
	}
	delta := int32(int16(raw - t.prev))
	if delta > t.maxDelta || delta < -t.maxDelta {
		return t.sample(t.prev), ErrEncoderFault
	}
	t.prev = raw
	t.position += int64(delta)
	return t.sample(raw), nil
}

func (t *Tracker) sample(raw uint16) AngleSample {
	return AngleSample{
		Raw:         raw,
		Angle:       uint16(t.position),
		Revolutions: int32(t.position >> 16),
	}
}

// Position returns the unwrapped position in counts.
func (t *Tracker) Position() int64 {
	return t.position
}

// Reset discards the tracked position; the next Update primes it.
func (t *Tracker) Reset() {
	t.position = 0
	t.prev = 0
	t.primed = false
}
