package voice

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-morph/internal/testutil"
	"github.com/cwbudde/algo-morph/synth/analysis"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
	"github.com/cwbudde/algo-morph/synth/params"
)

const (
	sampleRate = 48000.0
	blockSize  = 256
)

func variants() map[string]func() Voice {
	return map[string]func() Voice{
		"additive":  func() Voice { return NewAdditive(sampleRate) },
		"resonator": func() Voice { return NewResonator(sampleRate) },
	}
}

func TestLifecycle(t *testing.T) {
	for name, mk := range variants() {
		t.Run(name, func(t *testing.T) {
			v := mk()
			v.Prepare(sampleRate, blockSize)
			p := params.DefaultVoiceParams()
			p.AmpRelease = 50
			v.ApplyParams(&p)

			if v.IsActive() || v.Note() != -1 {
				t.Fatalf("fresh voice active=%v note=%d", v.IsActive(), v.Note())
			}
			idle := make([]float64, blockSize)
			idle[0] = 1
			v.Render(idle)
			testutil.RequireSilent(t, idle, 0)

			v.NoteOn(60, 3, 1)
			if !v.IsActive() || v.Note() != 60 || v.Channel() != 3 {
				t.Fatalf("after NoteOn active=%v note=%d ch=%d", v.IsActive(), v.Note(), v.Channel())
			}
			on := testutil.RenderBlocks(int(sampleRate/4), blockSize, v.Render)
			testutil.RequireFinite(t, on)
			if testutil.Peak(on) == 0 {
				t.Fatal("note rendered silence")
			}

			v.NoteOff()
			testutil.RenderBlocks(int(sampleRate), blockSize, v.Render)
			if v.IsActive() || v.EnvelopeLevel() != 0 {
				t.Fatalf("after release active=%v level=%v", v.IsActive(), v.EnvelopeLevel())
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	for name, mk := range variants() {
		t.Run(name, func(t *testing.T) {
			render := func() []float64 {
				v := mk()
				v.SetSeed(1234)
				p := params.DefaultVoiceParams()
				p.Roughness = 0.8
				p.NoiseLevel = 1
				p.MorphX = 0.3
				v.ApplyParams(&p)
				v.NoteOn(57, 0, 0.9)
				return testutil.RenderBlocks(8192, 100, v.Render)
			}
			testutil.RequireIdentical(t, render(), render())
		})
	}
}

func TestRepeatedNoteRendersIdentically(t *testing.T) {
	for name, mk := range variants() {
		t.Run(name, func(t *testing.T) {
			v := mk()
			v.SetSeed(99)
			p := params.DefaultVoiceParams()
			p.NoiseLevel = 1
			p.Roughness = 0.5
			p.AmpRelease = 20
			p.FilterRelease = 20
			v.ApplyParams(&p)

			play := func() []float64 {
				v.NoteOn(62, 0, 0.8)
				out := testutil.RenderBlocks(4096, blockSize, v.Render)
				v.NoteOff()
				testutil.RenderBlocks(int(sampleRate/2), blockSize, v.Render)
				if v.IsActive() {
					t.Fatal("voice still active after release")
				}
				return out
			}
			testutil.RequireIdentical(t, play(), play())
		})
	}
}

func TestNonFiniteOutputResetsVoice(t *testing.T) {
	tests := []struct {
		name   string
		poison func(Voice)
	}{
		{"additive", func(v Voice) { v.(*Additive).velocity = math.NaN() }},
		{"resonator", func(v Voice) { v.(*Resonator).noiseState = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := variants()[tt.name]()
			v.NoteOn(69, 0, 1)
			tt.poison(v)

			out := make([]float64, blockSize)
			v.Render(out)
			testutil.RequireFinite(t, out)
			if v.IsActive() {
				t.Fatal("voice still active after producing non-finite output")
			}

			v.NoteOn(69, 0, 1)
			v.Render(out)
			testutil.RequireFinite(t, out)
			if !v.IsActive() {
				t.Fatal("voice did not recover on the next note")
			}
		})
	}
}

func TestNonFiniteParametersAreContained(t *testing.T) {
	for name, mk := range variants() {
		t.Run(name, func(t *testing.T) {
			v := mk()
			v.NoteOn(60, 0, 1)
			p := params.DefaultVoiceParams()
			p.MorphX = math.NaN()
			p.FilterCutoff = math.Inf(1)
			p.FilterResonance = math.NaN()
			v.Mod()[modmatrix.DestMorphY] = math.Inf(-1)
			v.ApplyParams(&p)
			v.SetPitchBend(math.NaN())

			out := testutil.RenderBlocks(4096, blockSize, v.Render)
			testutil.RequireFinite(t, out)
		})
	}
}

func TestAdditivePitch(t *testing.T) {
	tests := []struct {
		name string
		bend float64
		mod  float64 // fraction of the ±12 semitone pitch range
		want float64
	}{
		{"a4", 0, 0, 440},
		{"bend up an octave", 12, 0, 880},
		{"pitch mod down an octave", 0, -1, 220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewAdditive(sampleRate)
			p := params.DefaultVoiceParams()
			p.FilterCutoff = 20000
			v.Mod()[modmatrix.DestPitch] = tt.mod
			v.ApplyParams(&p)
			v.NoteOn(69, 0, 1)
			v.SetPitchBend(tt.bend)

			out := testutil.RenderBlocks(16384, blockSize, v.Render)
			got, err := analysis.DominantFrequency(out[4096:], sampleRate)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want)/tt.want > 0.01 {
				t.Fatalf("dominant = %.2f Hz, want %.2f", got, tt.want)
			}
		})
	}
}

func TestVelocityCurve(t *testing.T) {
	tests := []struct {
		curve params.VelocityCurve
		want  float64
	}{
		{params.VelocityLinear, 0.5},
		{params.VelocitySoft, 0.25},
		{params.VelocityHard, math.Sqrt(0.5)},
	}
	for _, tt := range tests {
		v := NewAdditive(sampleRate)
		p := params.DefaultVoiceParams()
		p.VelocityCurve = tt.curve
		v.ApplyParams(&p)
		v.NoteOn(60, 0, 0.5)
		if v.velocity != tt.want {
			t.Fatalf("%v velocity = %v, want %v", tt.curve, v.velocity, tt.want)
		}
	}
}

func TestModulationIsLatchedWithParams(t *testing.T) {
	v := NewResonator(sampleRate)
	p := params.DefaultVoiceParams()
	p.MorphX = 0.2
	v.Mod()[modmatrix.DestMorphX] = 0.5
	v.Mod()[modmatrix.DestNoiseLevel] = -1
	v.ApplyParams(&p)

	if v.params.MorphX != 0.7 {
		t.Fatalf("morph x = %v, want 0.7", v.params.MorphX)
	}
	if v.params.NoiseLevel != 0 {
		t.Fatalf("noise level = %v, want 0", v.params.NoiseLevel)
	}
	if p.MorphX != 0.2 {
		t.Fatal("ApplyParams modified the caller's snapshot")
	}
}

func TestResonatorQFollowsResonance(t *testing.T) {
	v := NewResonator(sampleRate)
	p := params.DefaultVoiceParams()
	p.FilterResonance = 1
	v.ApplyParams(&p)
	v.NoteOn(48, 0, 1)
	if got := v.Q(); got != 200 {
		t.Fatalf("Q = %v, want 200", got)
	}
	want := p.NoiseLevel * math.Sqrt(200)
	if math.Abs(v.noiseGain-want) > 1e-3*want {
		t.Fatalf("noise gain = %v, want %v", v.noiseGain, want)
	}
}

func TestFilterEnvelopeRaisesCutoff(t *testing.T) {
	v := NewAdditive(sampleRate)
	p := params.DefaultVoiceParams()
	p.FilterCutoff = 200
	p.FilterEnvAmount = 0.5
	p.FilterAttack = 0
	p.FilterDecay = 10000
	p.FilterSustain = 1
	v.ApplyParams(&p)
	v.NoteOn(48, 0, 1)
	testutil.RenderBlocks(blockSize, blockSize, v.Render)

	// Full envelope at half amount opens three octaves.
	got := v.filter.Settings().CutoffHz
	if math.Abs(got-1600) > 16 {
		t.Fatalf("cutoff = %v, want 1600", got)
	}
}

func TestResetIdempotent(t *testing.T) {
	for name, mk := range variants() {
		t.Run(name, func(t *testing.T) {
			a, b := mk(), mk()
			for _, v := range []Voice{a, b} {
				v.NoteOn(64, 0, 1)
				testutil.RenderBlocks(1000, blockSize, v.Render)
			}
			a.Reset()
			b.Reset()
			b.Reset()
			a.NoteOn(64, 0, 1)
			b.NoteOn(64, 0, 1)
			testutil.RequireIdentical(t,
				testutil.RenderBlocks(2048, blockSize, a.Render),
				testutil.RenderBlocks(2048, blockSize, b.Render))
		})
	}
}

func TestPartialAmplitudes(t *testing.T) {
	for name, mk := range variants() {
		t.Run(name, func(t *testing.T) {
			v := mk()
			v.NoteOn(45, 0, 1)
			var amps [64]float64
			v.PartialAmplitudes(&amps)
			if amps[0] <= 0 {
				t.Fatalf("fundamental amplitude = %v, want > 0", amps[0])
			}
			for i := 1; i < len(amps); i++ {
				if amps[i] != 0 {
					t.Fatalf("partial %d = %v, want 0 for the sine model", i+1, amps[i])
				}
			}
		})
	}
}
