package control

import "testing"

func TestLowPassConvergesToConstantInput(t *testing.T) {
	f := NewLowPass(Q15/4, false)
	f.Step(0) // prime at zero

	const target = 1000
	prev := int32(0)
	for i := 0; i < 100; i++ {
		out := f.Step(target)
		if out < prev {
			t.Fatalf("output decreased at step %d: %d < %d", i, out, prev)
		}
		if out > target {
			t.Fatalf("output overshot at step %d: %d", i, out)
		}
		prev = out
	}
	if prev != target {
		t.Errorf("filter did not converge: got %d, want %d", prev, target)
	}
}

func TestLowPassPrimesOnFirstSample(t *testing.T) {
	f := NewLowPass(Q15/8, false)
	if out := f.Step(4242); out != 4242 {
		t.Errorf("first sample = %d, want 4242", out)
	}
	if f.Output() != 4242 {
		t.Errorf("Output() = %d after priming", f.Output())
	}
}

func TestLowPassReset(t *testing.T) {
	f := NewLowPass(Q15/8, false)
	f.Step(100)
	f.Step(200)
	f.Reset()
	if out := f.Step(-300); out != -300 {
		t.Errorf("step after reset = %d, want -300 (fresh prime)", out)
	}
}

func TestWrapAwareFilterCrossesBoundarySmoothly(t *testing.T) {
	// Rotate at a constant 100 counts per tick through the wrap point.
	// The filtered output must advance by about the same rate with no
	// discontinuity where the input wraps.
	const rate = 100
	f := NewLowPass(Q15/2, true)
	angle := uint16(FullTurn - 60*rate) // wrap happens mid-sequence
	prev := int32(f.Step(int32(angle)))

	for i := 0; i < 200; i++ {
		angle += rate
		out := f.Step(int32(angle))
		if out < 0 || out >= FullTurn {
			t.Fatalf("output %d outside one turn at step %d", out, i)
		}
		step := WrapDiff(uint16(out), uint16(prev))
		if i > 50 && (step < rate-2 || step > rate+2) {
			t.Fatalf("discontinuity at step %d: output advanced by %d, want ~%d", i, step, rate)
		}
		prev = out
	}
}

func TestPlainFilterDistortsAtWrapButWrapAwareDoesNot(t *testing.T) {
	// Same boundary-crossing input: the plain filter sees a huge
	// spurious difference, the wrap-aware one does not. This pins down
	// why the variant exists.
	plain := NewLowPass(Q15/2, false)
	aware := NewLowPass(Q15/2, true)
	plain.Step(FullTurn - 10)
	aware.Step(FullTurn - 10)

	pOut := plain.Step(10) // naive diff: -65516
	aOut := aware.Step(10) // shortest path diff: +20
	if pOut < FullTurn/4 || pOut > 3*FullTurn/4 {
		t.Errorf("plain filter did not show the naive half-range jump: %d", pOut)
	}
	if d := WrapDiff(uint16(aOut), FullTurn-10); d < 0 || d > 20 {
		t.Errorf("wrap-aware filter jumped by %d across the boundary", d)
	}
}

func TestWrapDiff(t *testing.T) {
	cases := []struct {
		a, b uint16
		want int32
	}{
		{10, 65530, 16},
		{65530, 10, -16},
		{0, HalfTurn, -HalfTurn},
		{100, 100, 0},
	}
	for _, c := range cases {
		if got := WrapDiff(c.a, c.b); got != c.want {
			t.Errorf("WrapDiff(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
