package smooth

import (
	"fmt"
	"math"
	"testing"
)

func TestRampReachesTarget(t *testing.T) {
	s := New(1000, 0)
	s.Reset(1000, 0.01) // 10 samples
	s.SetTarget(1)

	for i := 1; i <= 10; i++ {
		got := s.Next()
		want := float64(i) / 10
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}
	}
	if s.IsSmoothing() {
		t.Fatal("still smoothing after ramp length")
	}
	if got := s.Next(); got != 1 {
		t.Fatalf("after ramp = %v, want 1", got)
	}
}

func TestSkipMatchesNext(t *testing.T) {
	a := New(48000, 0.2)
	b := New(48000, 0.2)
	a.SetTarget(0.9)
	b.SetTarget(0.9)

	for block := 0; block < 40; block++ {
		var want float64
		for i := 0; i < 32; i++ {
			want = a.Next()
		}
		if got := b.Skip(32); math.Abs(got-want) > 1e-12 {
			t.Fatalf("block %d: Skip = %v, Next = %v", block, got, want)
		}
	}
	if b.Current() != 0.9 {
		t.Fatalf("Current = %v, want 0.9", b.Current())
	}
}

func TestRetargetMidRamp(t *testing.T) {
	s := New(1000, 0)
	s.Reset(1000, 0.004)
	s.SetTarget(1)
	s.Next()
	s.Next() // 0.5
	s.SetTarget(0)
	for i := 0; i < 4; i++ {
		s.Next()
	}
	if s.Current() != 0 {
		t.Fatalf("Current = %v, want 0", s.Current())
	}
}

func TestNonFiniteIgnored(t *testing.T) {
	s := New(48000, 0.5)
	s.SetTarget(math.NaN())
	s.SetTarget(math.Inf(1))
	s.SetCurrentAndTarget(math.Inf(-1))
	if s.Target() != 0.5 || s.Next() != 0.5 {
		t.Fatalf("target = %v, want 0.5", s.Target())
	}
}

func TestZeroRampJumps(t *testing.T) {
	var s Linear
	s.Reset(48000, 0)
	s.SetTarget(3)
	if s.IsSmoothing() || s.Next() != 3 {
		t.Fatalf("zero-length ramp did not jump: %v", s.Current())
	}
}

func ExampleLinear_Skip() {
	s := New(100, 0)
	s.SetTarget(1) // 2 samples at 100 Hz
	fmt.Println(s.Skip(1), s.Skip(5))
	// Output: 0.5 1
}
