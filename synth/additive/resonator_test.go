package additive

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-morph/synth/analysis"
	"github.com/cwbudde/algo-morph/synth/model"
)

const sampleRate = 48000.0

func render(r *Resonator, n int) []float64 {
	out := make([]float64, n)
	r.ProcessBlock(out)
	return out
}

func TestPureFundamentalIsCleanSine(t *testing.T) {
	r := New(sampleRate)
	var fundamental model.SpectralModel
	fundamental.Amplitudes[0] = 1
	for slot := 0; slot < NumSlots; slot++ {
		if err := r.LoadModel(slot, &model.SpectralModel{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.LoadModel(0, &fundamental); err != nil {
		t.Fatal(err)
	}
	r.SetBaseFrequency(440)
	r.UpdateHarmonics(0, 0)

	s, err := analysis.Analyze(render(r, 16384), sampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if f := s.PeakFrequency(); math.Abs(f-440) > s.BinHz {
		t.Fatalf("peak = %v Hz, want 440", f)
	}
	if ratio := s.PeakEnergyRatio(3); ratio < 0.99 {
		t.Fatalf("energy near peak = %v, want a single dominant bin", ratio)
	}
}

func TestNormalizationBoundsOutput(t *testing.T) {
	saw := model.Sawtooth()
	square := model.Square()
	bell := model.Bell()
	sine := model.Sine()

	r := New(sampleRate)
	for slot, m := range []*model.SpectralModel{&saw, &square, &bell, &sine} {
		if err := r.LoadModel(slot, m); err != nil {
			t.Fatal(err)
		}
	}
	r.SetBaseFrequency(110)

	for _, mx := range []float64{0, 0.3, 1} {
		for _, my := range []float64{0, 0.7, 1} {
			r.UpdateHarmonics(mx, my)

			var amps [NumPartials]float64
			r.Amplitudes(&amps)
			var sum float64
			for _, a := range amps {
				sum += a
			}
			if sum > 1+1e-12 {
				t.Fatalf("morph (%v,%v): normalized sum = %v > 1", mx, my, sum)
			}

			for i, v := range render(r, 2048) {
				if math.Abs(v) > 1+1e-9 {
					t.Fatalf("morph (%v,%v) sample %d = %v", mx, my, i, v)
				}
			}
		}
	}
}

func TestUnisonIncludedInNormalization(t *testing.T) {
	r := New(sampleRate)
	r.SetBaseFrequency(220)
	r.SetUnison(0.01, 0)
	r.UpdateHarmonics(0, 0)

	want := 1 / (1 + UnisonGain)
	if got := r.Normalization(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Normalization = %v, want %v", got, want)
	}
	for i, v := range render(r, 4096) {
		if math.Abs(v) > 1+1e-9 {
			t.Fatalf("sample %d = %v", i, v)
		}
	}
}

func TestAntiAliasMute(t *testing.T) {
	r := New(sampleRate)
	saw := model.Sawtooth()
	for slot := 0; slot < NumSlots; slot++ {
		if err := r.LoadModel(slot, &saw); err != nil {
			t.Fatal(err)
		}
	}
	r.SetBaseFrequency(1000)
	r.UpdateHarmonics(0, 0)

	limit := maxPartialRatio * sampleRate
	for i := 0; i < NumPartials; i++ {
		f := r.PartialFrequency(i)
		want := float64(i+1) * 1000
		if want > limit {
			if f != 0 {
				t.Fatalf("partial %d at %v Hz not muted", i+1, f)
			}
			continue
		}
		if math.Abs(f-want) > 1e-9 {
			t.Fatalf("partial %d = %v Hz, want %v", i+1, f, want)
		}
	}
}

func TestMorphBilinear(t *testing.T) {
	r := New(sampleRate)
	models := [NumSlots]model.SpectralModel{}
	for slot := range models {
		models[slot].Amplitudes[slot] = 1
		models[slot].FrequencyOffsets[0] = float64(10 * slot)
		if err := r.LoadModel(slot, &models[slot]); err != nil {
			t.Fatal(err)
		}
	}
	r.SetBaseFrequency(100)
	r.UpdateHarmonics(0.5, 0.5)

	var amps [NumPartials]float64
	r.Amplitudes(&amps)
	for i := 0; i < NumSlots; i++ {
		if math.Abs(amps[i]-0.25) > 1e-12 {
			t.Fatalf("amp[%d] = %v, want 0.25", i, amps[i])
		}
	}
	// offsets 0, 10, 20, 30 bilinearly at the center = 15
	if f := r.PartialFrequency(0); math.Abs(f-115) > 1e-9 {
		t.Fatalf("fundamental = %v, want 115", f)
	}
}

func TestStretchAndShift(t *testing.T) {
	r := New(sampleRate)
	saw := model.Sawtooth()
	if err := r.LoadModel(0, &saw); err != nil {
		t.Fatal(err)
	}
	r.SetBaseFrequency(100)
	r.SetStretching(1)
	r.SetShape(0, 5, 0)
	r.UpdateHarmonics(0, 0)

	want := 100*math.Pow(4, 1.5) + 5
	if f := r.PartialFrequency(3); math.Abs(f-want) > 1e-9 {
		t.Fatalf("partial 4 = %v, want %v", f, want)
	}
}

func TestParityAndRollOff(t *testing.T) {
	tests := []struct {
		name           string
		parity, roll   float64
		wantEvenOdd    float64 // amp[partial 2] / amp[partial 1]
		wantThirdFirst float64 // amp[partial 3] / amp[partial 1]
	}{
		{"flat", 0, 0, 1, 1},
		{"odd only", 1, 0, 0, 1},
		{"even only", -1, 0, math.Inf(1), 0},
		{"roll-off", 0, 0.5, 0.5, 1.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(sampleRate)
			var flat model.SpectralModel
			for i := range flat.Amplitudes {
				flat.Amplitudes[i] = 1
			}
			for slot := 0; slot < NumSlots; slot++ {
				if err := r.LoadModel(slot, &flat); err != nil {
					t.Fatal(err)
				}
			}
			r.SetBaseFrequency(100)
			r.SetShape(tt.parity, 0, tt.roll)
			r.UpdateHarmonics(0, 0)

			var amps [NumPartials]float64
			r.Amplitudes(&amps)
			check := func(got, want float64) {
				t.Helper()
				if math.IsInf(want, 1) {
					if amps[0] != 0 || got == 0 {
						t.Fatalf("odd partials not muted: %v", amps[:4])
					}
					return
				}
				if math.Abs(got-want) > 1e-12 {
					t.Fatalf("ratio = %v, want %v (amps %v)", got, want, amps[:4])
				}
			}
			check(amps[1]/amps[0], tt.wantEvenOdd)
			if !math.IsInf(tt.wantEvenOdd, 1) {
				check(amps[2]/amps[0], tt.wantThirdFirst)
			}
		})
	}
}

func TestEntropyDeterministic(t *testing.T) {
	mk := func() []float64 {
		r := New(sampleRate)
		saw := model.Sawtooth()
		_ = r.LoadModel(0, &saw)
		r.SetSeed(1234)
		r.SetEntropy(1)
		r.SetUnison(0.02, 1)
		r.Reset()
		r.SetBaseFrequency(330)
		return render(r, 4096)
	}
	a, b := mk(), mk()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	plain := New(sampleRate)
	saw := model.Sawtooth()
	_ = plain.LoadModel(0, &saw)
	plain.SetBaseFrequency(330)
	plain.SetUnison(0.02, 1)
	p := render(plain, 4096)
	same := true
	for i := range p {
		if p[i] != a[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("entropy had no effect")
	}
}

func TestSilentModelsProduceSilence(t *testing.T) {
	r := New(sampleRate)
	for slot := 0; slot < NumSlots; slot++ {
		if err := r.LoadModel(slot, nil); err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range render(r, 256) {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
	if r.Normalization() != 0 {
		t.Fatalf("Normalization = %v, want 0", r.Normalization())
	}
}

func TestInvalidSlot(t *testing.T) {
	r := New(sampleRate)
	for _, slot := range []int{-1, NumSlots} {
		if err := r.LoadModel(slot, nil); !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("LoadModel(%d) err = %v, want ErrInvalidSlot", slot, err)
		}
	}
}

func TestResetIdempotent(t *testing.T) {
	r := New(sampleRate)
	r.SetUnison(0.01, 0.8)
	render(r, 1000)

	r.Reset()
	var once [numOscillators]float64
	for i := range r.oscs {
		once[i] = r.oscs[i].Phase()
	}
	rng := r.rng
	r.Reset()
	for i := range r.oscs {
		if r.oscs[i].Phase() != once[i] {
			t.Fatalf("osc %d phase %v after second reset, want %v", i, r.oscs[i].Phase(), once[i])
		}
	}
	if r.rng != rng {
		t.Fatal("random state differs after second reset")
	}
	for i := 0; i < NumPartials; i++ {
		if once[i] != 0 {
			t.Fatalf("primary osc %d phase = %v, want 0", i, once[i])
		}
	}
}

func TestDirtyCheckSkipsRecompute(t *testing.T) {
	r := New(sampleRate)
	r.UpdateHarmonics(0.2, 0.4)
	if r.dirty {
		t.Fatal("dirty after update")
	}
	r.UpdateHarmonics(0.2, 0.4)
	if r.dirty {
		t.Fatal("unchanged morph marked dirty")
	}
	r.SetEntropy(0.5)
	if r.dirty {
		t.Fatal("entropy change marked dirty")
	}
	r.SetBaseFrequency(200)
	if !r.dirty {
		t.Fatal("base frequency change did not mark dirty")
	}
}
