package fastmath

import (
	"math"
	"testing"
)

func TestAgainstStdlib(t *testing.T) {
	const tol = 1e-3
	for _, x := range []float64{-5, -1, -0.01, 0, 0.5, 2} {
		if got, want := Exp(x), math.Exp(x); math.Abs(got-want) > tol*math.Max(1, want) {
			t.Fatalf("Exp(%v) = %v, want %v", x, got, want)
		}
		if got, want := Pow2(x), math.Exp2(x); math.Abs(got-want) > tol*math.Max(1, want) {
			t.Fatalf("Pow2(%v) = %v, want %v", x, got, want)
		}
	}
	for _, x := range []float64{0.01, 0.25, 1, 9} {
		if got, want := Sqrt(x), math.Sqrt(x); math.Abs(got-want) > tol*math.Max(1, want) {
			t.Fatalf("Sqrt(%v) = %v, want %v", x, got, want)
		}
	}
}
