package control

import "sync/atomic"

// Sample capture handoff between the acquisition path (DMA or
// interrupt context) and the control tick.
//
// The producer writes into the inactive buffer and then flips the
// index; the tick always reads the buffer the index points at. The
// flip is the only synchronization, so the handoff is wait-free and
// the tick can never block on a writer. Single producer, single
// consumer.

// Sample is one self-consistent snapshot of all sensor channels,
// captured at (approximately) the same instant.
type Sample struct {
	Encoder uint16    // raw shaft counter
	Current [3]uint16 // raw phase-current channels
	Supply  uint16    // raw supply-voltage channel
	VRef    uint16    // raw reference-voltage channel
	Ticks   uint32    // capture time, timer ticks
}

// SampleBuffer is the double-buffered handoff structure.
type SampleBuffer struct {
	buf [2]Sample
	idx atomic.Uint32
}

// Publish installs a fresh sample. Called from the capture path only.
func (b *SampleBuffer) Publish(s Sample) {
	i := b.idx.Load() ^ 1
	b.buf[i] = s
	b.idx.Store(i)
}

// Snapshot returns the most recently published sample. Called from the
// tick only; never observes a buffer mid-write.
func (b *SampleBuffer) Snapshot() Sample {
	return b.buf[b.idx.Load()]
}
