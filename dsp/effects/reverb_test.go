package effects

import (
	"math"
	"testing"
)

func TestReverbProcessInPlaceMatchesSample(t *testing.T) {
	r1, err := NewReverb(44100)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := NewReverb(44100)
	r1.SetMix(0.3)
	r2.SetMix(0.3)

	input := make([]float64, 128)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * float64(i) / 23)
	}

	want := make([]float64, len(input))
	for i := range want {
		want[i] = r1.ProcessSample(input[i])
	}

	got := append([]float64(nil), input...)
	r2.ProcessInPlace(got)

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > 1e-12 {
			t.Fatalf("sample %d mismatch: got=%g want=%g diff=%g", i, got[i], want[i], diff)
		}
	}
}

func TestReverbTailDecays(t *testing.T) {
	r, err := NewReverb(48000)
	if err != nil {
		t.Fatal(err)
	}
	r.SetMix(1)

	buf := make([]float64, 48000*8)
	buf[0] = 1
	r.ProcessInPlace(buf)

	var early, late float64
	for _, v := range buf[:48000] {
		early = math.Max(early, math.Abs(v))
	}
	for _, v := range buf[len(buf)-4800:] {
		late = math.Max(late, math.Abs(v))
	}
	if early == 0 {
		t.Fatal("reverb produced no tail")
	}
	if late > early*1e-3 {
		t.Fatalf("tail did not decay: early=%g late=%g", early, late)
	}
}

func TestReverbScalesWithSampleRate(t *testing.T) {
	r, err := NewReverb(88200)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(r.combs[0].buffer), 2*reverbCombTuning[0]; got != want {
		t.Fatalf("comb length = %d, want %d", got, want)
	}
}

func TestReverbResetIdempotent(t *testing.T) {
	r, _ := NewReverb(48000)
	r.SetMix(0.5)
	for i := 0; i < 1000; i++ {
		r.ProcessSample(1)
	}
	r.Reset()
	r.Reset()
	for i := range r.combs {
		if r.combs[i].index != 0 || r.combs[i].filterStore != 0 {
			t.Fatalf("comb %d not reset", i)
		}
		for _, v := range r.combs[i].buffer {
			if v != 0 {
				t.Fatalf("comb %d buffer not cleared", i)
			}
		}
	}
}
