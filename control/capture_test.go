package control

import "testing"

func TestSampleBufferSnapshotSeesLatestPublish(t *testing.T) {
	var b SampleBuffer
	for i := uint32(1); i <= 100; i++ {
		b.Publish(Sample{Encoder: uint16(i), Supply: uint16(i), VRef: uint16(i), Ticks: i})
		s := b.Snapshot()
		if s.Ticks != i {
			t.Fatalf("snapshot ticks = %d, want %d", s.Ticks, i)
		}
		if s.Encoder != uint16(i) || s.Supply != uint16(i) || s.VRef != uint16(i) {
			t.Fatalf("snapshot fields torn at publish %d: %+v", i, s)
		}
	}
}

func TestSampleBufferZeroValueIsSafe(t *testing.T) {
	var b SampleBuffer
	s := b.Snapshot()
	if s != (Sample{}) {
		t.Errorf("unpublished snapshot = %+v, want zero sample", s)
	}
}

func TestSampleBufferAlternatesSlots(t *testing.T) {
	// A publish must never write the buffer the consumer is reading:
	// consecutive publishes land in alternating slots.
	var b SampleBuffer
	b.Publish(Sample{Ticks: 1})
	first := b.idx.Load()
	b.Publish(Sample{Ticks: 2})
	second := b.idx.Load()
	if first == second {
		t.Fatalf("consecutive publishes used the same slot %d", first)
	}
	if b.buf[first].Ticks != 1 || b.buf[second].Ticks != 2 {
		t.Errorf("slots hold wrong samples: %+v", b.buf)
	}
}
