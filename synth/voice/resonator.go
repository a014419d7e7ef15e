package voice

import (
	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/internal/fastmath"
	"github.com/cwbudde/algo-morph/synth/model"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
	"github.com/cwbudde/algo-morph/synth/params"
	"github.com/cwbudde/algo-morph/synth/resonator"
)

const (
	// minNoiseCoef keeps the darkest excitation audible.
	minNoiseCoef = 0.02
	impulseGain  = 1.0
)

// ResonatorDestinations lists the modulation destinations a resonator
// voice responds to.
var ResonatorDestinations = []modmatrix.Destination{
	modmatrix.DestLevel,
	modmatrix.DestAmpAttack, modmatrix.DestAmpDecay, modmatrix.DestAmpSustain, modmatrix.DestAmpRelease,
	modmatrix.DestFilterResonance,
	modmatrix.DestMorphX, modmatrix.DestMorphY,
	modmatrix.DestNoiseLevel, modmatrix.DestNoiseColor, modmatrix.DestImpulseMix,
	modmatrix.DestParity, modmatrix.DestShift, modmatrix.DestRollOff,
	modmatrix.DestUnisonDetune,
	modmatrix.DestPitch,
}

// Resonator renders a note by exciting the band-pass resonator bank with
// colored noise and a note-on impulse.
type Resonator struct {
	shared

	bank *resonator.Bank
	rng  core.Xorshift32
	seed uint32

	noiseState float64
	noiseCoef  float64
	noiseGain  float64
	impulse    float64 // pending note-on impulse
}

var _ Voice = (*Resonator)(nil)

// NewResonator returns an idle resonator voice with a sine in every morph
// slot.
func NewResonator(sampleRate float64) *Resonator {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		sampleRate = defaultSampleRate
	}
	v := &Resonator{
		shared: newShared(sampleRate),
		bank:   resonator.New(sampleRate),
		rng:    core.NewXorshift32(1),
		seed:   1,
	}
	v.applyStatic()
	return v
}

// Prepare implements [Voice].
func (v *Resonator) Prepare(sampleRate float64, _ int) {
	v.prepare(sampleRate)
	v.bank.SetSampleRate(v.sampleRate)
}

// LoadModel implements [Voice].
func (v *Resonator) LoadModel(slot int, m *model.SpectralModel) error {
	return v.bank.LoadModel(slot, m)
}

// SetSeed implements [Voice].
func (v *Resonator) SetSeed(seed uint32) {
	v.seed = seed
	v.rng.Seed(seed)
}

// ApplyParams implements [Voice].
func (v *Resonator) ApplyParams(p *params.VoiceParams) {
	v.latch(p)
	v.applyStatic()
}

func (v *Resonator) applyStatic() {
	q := &v.params
	v.bank.SetShape(q.Parity, q.Shift, q.RollOff)
	c := q.NoiseColor
	v.noiseCoef = minNoiseCoef + (1-minNoiseCoef)*c*c
}

// NoteOn implements [Voice].
func (v *Resonator) NoteOn(note, channel int, velocity float64) {
	wasActive := v.IsActive()
	v.noteOn(note, channel, velocity)
	if !wasActive {
		v.bank.Reset()
		v.rng.Seed(v.seed)
		v.noiseState = 0
	}
	v.impulse = v.params.ImpulseMix * impulseGain
	v.updateControls()
}

// Reset implements [Voice].
func (v *Resonator) Reset() {
	v.reset()
	v.bank.Reset()
	v.rng.Seed(v.seed)
	v.noiseState = 0
	v.impulse = 0
}

// PartialAmplitudes implements [Voice].
func (v *Resonator) PartialAmplitudes(dst *[model.NumPartials]float64) {
	v.bank.Amplitudes(dst)
}

// Q returns the current resonator Q.
func (v *Resonator) Q() float64 { return v.bank.Q() }

func (v *Resonator) updateControls() {
	n := ControlInterval
	v.bank.SetBaseFrequency(v.baseFrequency(v.pitch.Skip(n)))
	v.bank.UpdateParameters(v.morphX.Skip(n), v.morphY.Skip(n), v.resonance.Skip(n), v.detune.Skip(n))
	v.noiseGain = v.params.NoiseLevel * fastmath.Sqrt(v.bank.Q())
}

// excitation returns the next colored-noise sample plus any pending
// impulse.
func (v *Resonator) excitation() float64 {
	v.noiseState += v.noiseCoef * (v.rng.Bipolar() - v.noiseState)
	x := v.noiseState * v.noiseGain
	if v.impulse != 0 {
		x += v.impulse * fastmath.Sqrt(v.bank.Q())
		v.impulse = 0
	}
	return x
}

// Render implements [Voice].
func (v *Resonator) Render(out []float64) {
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
		out[i] = v.bank.ProcessSample(v.excitation()) * env * v.velocity * level
	}
	if sanitize(out) {
		v.Reset()
	}
}
