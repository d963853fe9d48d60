package control

import (
	"math"
	"testing"
)

func TestSinCardinalPoints(t *testing.T) {
	cases := []struct {
		angle uint16
		want  int16
	}{
		{0, 0},
		{QuarterTurn, Q15 - 1},
		{HalfTurn, 0},
		{3 * QuarterTurn, -(Q15 - 1)},
	}
	for _, c := range cases {
		if got := Sin(c.angle); got != c.want {
			t.Errorf("Sin(%d) = %d, want %d", c.angle, got, c.want)
		}
	}
}

func TestSinAgainstMathSin(t *testing.T) {
	const tol = 4
	for a := 0; a < FullTurn; a += 17 {
		want := math.Round((Q15 - 1) * math.Sin(2*math.Pi*float64(a)/FullTurn))
		got := float64(Sin(uint16(a)))
		if math.Abs(got-want) > tol {
			t.Fatalf("Sin(%d) = %v, want %v (+-%d)", a, got, want, tol)
		}
	}
}

func TestSinInterpolatesBetweenEntries(t *testing.T) {
	// Halfway between the first two table entries the result must be
	// the midpoint of those entries.
	half := uint16(1 << (sineShift - 1))
	want := (int32(sineLUT[0]) + int32(sineLUT[1])) / 2
	if got := int32(Sin(half)); got != want {
		t.Errorf("Sin(%d) = %d, want midpoint %d", half, got, want)
	}
}

func TestCosIsShiftedSin(t *testing.T) {
	for a := 0; a < FullTurn; a += 997 {
		angle := uint16(a)
		if Cos(angle) != Sin(angle+QuarterTurn) {
			t.Fatalf("Cos(%d) != Sin(%d+quarter)", a, a)
		}
		s, c := SinCos(angle)
		if s != Sin(angle) || c != Cos(angle) {
			t.Fatalf("SinCos(%d) disagrees with Sin/Cos", a)
		}
	}
}

func TestSinUnitMagnitude(t *testing.T) {
	// sin^2 + cos^2 must stay close to one over the whole range.
	for a := 0; a < FullTurn; a += 131 {
		s, c := SinCos(uint16(a))
		mag := int64(s)*int64(s) + int64(c)*int64(c)
		want := int64(Q15-1) * int64(Q15-1)
		if mag > want+want/256 || mag < want-want/256 {
			t.Fatalf("magnitude at %d = %d, want ~%d", a, mag, want)
		}
	}
}
