package lfo

import (
	"fmt"
	"math"
	"testing"
)

const sampleRate = 48000.0

func TestFastSinAccuracy(t *testing.T) {
	const tol = 0.002
	for i := 0; i < 1000; i++ {
		p := float64(i) / 1000
		want := math.Sin(2 * math.Pi * p)
		if got := FastSin(p); math.Abs(got-want) > tol {
			t.Fatalf("FastSin(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestWaveformShapes(t *testing.T) {
	tests := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{Triangle, 0, -1},
		{Triangle, 0.5, 1},
		{Triangle, 0.25, 0},
		{SawUp, 0, -1},
		{SawUp, 0.75, 0.5},
		{SawDown, 0, 1},
		{SawDown, 0.75, -0.5},
		{Square, 0.1, 1},
		{Square, 0.6, -1},
		{Sine, 0.25, 1},
		{Sine, 0.75, -1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v@%v", tt.w, tt.phase), func(t *testing.T) {
			l := New(sampleRate)
			l.SetWaveform(tt.w)
			l.phase = tt.phase
			if got := l.ProcessSample(); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTempoSyncRate(t *testing.T) {
	tests := []struct {
		div  Division
		want float64
	}{
		{Whole, 0.5},
		{Quarter, 2},
		{Eighth, 4},
		{ThirtySecond, 16},
		{QuarterTriplet, 3},
		{SixteenthTriplet, 12},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		s.Sync = true
		s.Tempo = 120
		s.Division = tt.div
		if got := s.EffectiveRate(); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("%v at 120 BPM = %v Hz, want %v", tt.div, got, tt.want)
		}
	}
}

func TestParseDivision(t *testing.T) {
	d, ok := ParseDivision("1/8T")
	if !ok || d != EighthTriplet {
		t.Fatalf("ParseDivision(1/8T) = %v, %v", d, ok)
	}
	if _, ok := ParseDivision("3/7"); ok {
		t.Fatal("ParseDivision accepted an unknown value")
	}
}

func TestBlockMatchesSamples(t *testing.T) {
	for _, w := range []Waveform{Sine, Triangle, SawUp, SawDown, Square, SampleHold} {
		t.Run(w.String(), func(t *testing.T) {
			a := New(sampleRate)
			b := New(sampleRate)
			a.SetSettings(Settings{RateHz: 37, Waveform: w, Depth: 1, Tempo: 120})
			b.SetSettings(a.Settings())

			const block = 64
			for k := 0; k < 100; k++ {
				first := a.ProcessSample()
				for i := 1; i < block; i++ {
					a.ProcessSample()
				}
				got := b.ProcessBlock(block)
				if math.Abs(got-first) > 1e-9 {
					t.Fatalf("block %d: ProcessBlock = %v, per-sample = %v", k, got, first)
				}
			}
		})
	}
}

func TestSampleHoldDeterministic(t *testing.T) {
	render := func() []float64 {
		l := New(sampleRate)
		l.SetSeed(99)
		l.SetSettings(Settings{RateHz: 10, Waveform: SampleHold, Depth: 1, Tempo: 120})
		out := make([]float64, 24000)
		for i := range out {
			out[i] = l.ProcessSample()
		}
		return out
	}
	a, b := render(), render()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("sample %d out of range: %v", i, a[i])
		}
	}
}

func TestSampleHoldInterpolates(t *testing.T) {
	l := New(sampleRate)
	l.SetSettings(Settings{RateHz: 1, Waveform: SampleHold, Depth: 1, Tempo: 120})
	prev := l.ProcessSample()
	for i := 1; i < 40000; i++ {
		v := l.ProcessSample()
		if math.Abs(v-prev) > 4.0/sampleRate {
			t.Fatalf("jump at %d: %v -> %v", i, prev, v)
		}
		prev = v
	}
}

func TestDepthScales(t *testing.T) {
	l := New(sampleRate)
	l.SetSettings(Settings{RateHz: 5, Waveform: Square, Depth: 0.25, Tempo: 120})
	if got := l.ProcessSample(); got != 0.25 {
		t.Fatalf("got = %v, want 0.25", got)
	}
}

func TestSanitized(t *testing.T) {
	s := Settings{RateHz: math.Inf(1), Waveform: Waveform(9), Division: Division(-1), Tempo: 1e6, Depth: math.NaN()}.Sanitized()
	if s.RateHz != defaultRateHz || s.Waveform != Sine || s.Division != Quarter || s.Tempo != maxTempo || s.Depth != 1 {
		t.Fatalf("Sanitized = %+v", s)
	}
}

func TestResetIdempotent(t *testing.T) {
	l := New(sampleRate)
	l.SetWaveform(SampleHold)
	for i := 0; i < 10000; i++ {
		l.ProcessSample()
	}
	l.Reset()
	phase, value, from, target, rng := l.phase, l.value, l.holdFrom, l.holdTarget, l.rng
	l.Reset()
	if l.phase != phase || l.value != value || l.holdFrom != from || l.holdTarget != target || l.rng != rng {
		t.Fatal("second Reset changed state")
	}
}

func TestPairSeedsDiffer(t *testing.T) {
	p := NewPair(sampleRate, 7)
	s := Settings{RateHz: 20, Waveform: SampleHold, Depth: 1, Tempo: 120}
	p.SetSettings(s, s)
	var v [2]float64
	for i := 0; i < 100; i++ {
		v = p.ProcessBlock(512)
	}
	if v[0] == v[1] {
		t.Fatalf("pair LFOs produced identical S&H values %v", v)
	}
	if p.Values() != v {
		t.Fatalf("Values() = %v, want %v", p.Values(), v)
	}
}

func ExampleSettings_EffectiveRate() {
	s := DefaultSettings()
	s.Sync = true
	s.Tempo = 90
	s.Division = EighthTriplet
	fmt.Printf("%.2f Hz\n", s.EffectiveRate())
	// Output: 4.50 Hz
}
