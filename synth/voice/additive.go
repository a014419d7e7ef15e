package voice

import (
	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/envelope"
	"github.com/cwbudde/algo-morph/dsp/filter"
	"github.com/cwbudde/algo-morph/dsp/smooth"
	"github.com/cwbudde/algo-morph/internal/fastmath"
	"github.com/cwbudde/algo-morph/synth/additive"
	"github.com/cwbudde/algo-morph/synth/model"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
	"github.com/cwbudde/algo-morph/synth/params"
)

// filterEnvOctaves is the cutoff excursion at full envelope amount.
const filterEnvOctaves = 6.0

// AdditiveDestinations lists the modulation destinations an additive voice
// responds to.
var AdditiveDestinations = []modmatrix.Destination{
	modmatrix.DestLevel,
	modmatrix.DestAmpAttack, modmatrix.DestAmpDecay, modmatrix.DestAmpSustain, modmatrix.DestAmpRelease,
	modmatrix.DestFilterAttack, modmatrix.DestFilterDecay, modmatrix.DestFilterSustain, modmatrix.DestFilterRelease,
	modmatrix.DestFilterCutoff, modmatrix.DestFilterResonance, modmatrix.DestFilterEnvAmount,
	modmatrix.DestMorphX, modmatrix.DestMorphY,
	modmatrix.DestInharmonicity, modmatrix.DestRoughness,
	modmatrix.DestParity, modmatrix.DestShift, modmatrix.DestRollOff,
	modmatrix.DestUnisonDetune, modmatrix.DestUnisonSpread,
	modmatrix.DestPitch,
}

// Additive renders a note with the additive partial bank followed by a
// multi-mode filter with its own envelope.
type Additive struct {
	shared

	res       *additive.Resonator
	filter    *filter.FilterBank
	filterEnv *envelope.Envelope

	cutoff        smooth.Linear
	inharmonicity smooth.Linear
}

var _ Voice = (*Additive)(nil)

// NewAdditive returns an idle additive voice with a sine in every morph
// slot.
func NewAdditive(sampleRate float64) *Additive {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		sampleRate = defaultSampleRate
	}
	v := &Additive{
		shared:    newShared(sampleRate),
		res:       additive.New(sampleRate),
		filter:    filter.New(sampleRate),
		filterEnv: envelope.New(sampleRate),
	}
	v.resetOwnSmoothers()
	v.applyStatic()
	return v
}

// Prepare implements [Voice].
func (v *Additive) Prepare(sampleRate float64, _ int) {
	v.prepare(sampleRate)
	v.res.SetSampleRate(v.sampleRate)
	v.filter.SetSampleRate(v.sampleRate)
	v.filterEnv.SetSampleRate(v.sampleRate)
	v.resetOwnSmoothers()
}

func (v *Additive) resetOwnSmoothers() {
	v.cutoff.Reset(v.sampleRate, smooth.DefaultRampSeconds)
	v.inharmonicity.Reset(v.sampleRate, smooth.DefaultRampSeconds)
	v.cutoff.SetCurrentAndTarget(v.params.FilterCutoff)
	v.inharmonicity.SetCurrentAndTarget(v.params.Inharmonicity)
}

// LoadModel implements [Voice].
func (v *Additive) LoadModel(slot int, m *model.SpectralModel) error {
	return v.res.LoadModel(slot, m)
}

// SetSeed implements [Voice].
func (v *Additive) SetSeed(seed uint32) { v.res.SetSeed(seed) }

// ApplyParams implements [Voice].
func (v *Additive) ApplyParams(p *params.VoiceParams) {
	v.latch(p)
	v.cutoff.SetTarget(v.params.FilterCutoff)
	v.inharmonicity.SetTarget(v.params.Inharmonicity)
	v.filterEnv.SetSettings(v.params.FilterEnvelope())
	v.applyStatic()
}

// applyStatic pushes the block-latched controls.
func (v *Additive) applyStatic() {
	q := &v.params
	v.res.SetEntropy(q.Roughness)
	v.res.SetShape(q.Parity, q.Shift, q.RollOff)
	v.filter.SetMode(q.FilterMode)
}

// NoteOn implements [Voice].
func (v *Additive) NoteOn(note, channel int, velocity float64) {
	wasActive := v.IsActive()
	v.noteOn(note, channel, velocity)
	v.cutoff.SetCurrentAndTarget(v.params.FilterCutoff)
	v.inharmonicity.SetCurrentAndTarget(v.params.Inharmonicity)
	v.res.SetUnison(v.params.UnisonDetune, v.params.UnisonSpread)
	if !wasActive {
		v.res.Reset()
		v.filter.Reset()
	}
	v.updateControls()
	v.filterEnv.NoteOn()
}

// NoteOff implements [Voice].
func (v *Additive) NoteOff() {
	v.shared.NoteOff()
	v.filterEnv.NoteOff()
}

// Reset implements [Voice].
func (v *Additive) Reset() {
	v.reset()
	v.filterEnv.Reset()
	v.res.Reset()
	v.filter.Reset()
	v.resetOwnSmoothers()
}

// PartialAmplitudes implements [Voice].
func (v *Additive) PartialAmplitudes(dst *[model.NumPartials]float64) {
	v.res.Amplitudes(dst)
}

// updateControls advances the control-rate smoothers by one interval and
// pushes them into the resonator and filter.
func (v *Additive) updateControls() {
	n := ControlInterval
	v.res.SetBaseFrequency(v.baseFrequency(v.pitch.Skip(n)))
	v.res.SetStretching(v.inharmonicity.Skip(n))
	v.res.SetUnison(v.detune.Skip(n), v.params.UnisonSpread)
	v.res.UpdateHarmonics(v.morphX.Skip(n), v.morphY.Skip(n))

	cutoff := v.cutoff.Skip(n)
	if amt := v.params.FilterEnvAmount; amt != 0 {
		cutoff *= fastmath.Pow2(amt * v.filterEnv.Level() * filterEnvOctaves)
	}
	v.filter.SetCutoff(cutoff)
	v.filter.SetResonance(v.resonance.Skip(n))
}

// Render implements [Voice].
func (v *Additive) Render(out []float64) {
	if !v.IsActive() {
		core.Zero(out)
		return
	}
	for i := range out {
		if v.controlTick() {
			v.updateControls()
		}
		level := v.level.Next()
		env := v.amp.ProcessSample()
		v.filterEnv.ProcessSample()
		x := v.filter.ProcessSample(v.res.ProcessSample())
		out[i] = x * env * v.velocity * level
	}
	if sanitize(out) {
		v.Reset()
	}
}
