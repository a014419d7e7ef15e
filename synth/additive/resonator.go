// Package additive implements the additive resonator: 64 sinusoidal
// partials plus an optional detuned unison layer, whose amplitudes and
// frequency offsets morph bilinearly across four spectral models.
package additive

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/osc"
	"github.com/cwbudde/algo-morph/synth/model"
)

const (
	// NumPartials is the number of primary partials.
	NumPartials = model.NumPartials
	// NumSlots is the number of morph corners (A, B, C, D).
	NumSlots = 4

	numOscillators = 2 * NumPartials

	// UnisonGain scales the unison layer relative to the primary partials.
	UnisonGain = 0.707
	// maxPartialRatio mutes partials above this fraction of the sample rate.
	maxPartialRatio = 0.45
	// entropyScale is the peak relative jitter at entropy 1.
	entropyScale = 0.5
)

// ErrInvalidSlot is returned for morph slots outside [0, NumSlots).
var ErrInvalidSlot = errors.New("additive: model slot must be in [0, 3]")

// Resonator is an additive oscillator bank. Control setters only record
// their input; derived partial frequencies and gains are recomputed lazily
// by the next UpdateHarmonics or ProcessSample.
type Resonator struct {
	sampleRate float64
	baseFreq   float64

	models [NumSlots]model.SpectralModel

	oscs  [numOscillators]osc.Partial
	amps  [numOscillators]float64
	norm  float64
	count int

	morphX, morphY float64
	stretch        float64
	entropy        float64
	parity         float64
	shift          float64
	rollOff        float64
	detune         float64
	spread         float64

	// Per-harmonic factors that depend only on stretch and roll-off.
	harmonicRatio [NumPartials]float64
	rollWeight    [NumPartials]float64
	ratioStretch  float64
	weightRollOff float64

	dirty bool
	seed  uint32
	rng   core.Xorshift32
}

// New returns a resonator with a sine model in every slot.
func New(sampleRate float64) *Resonator {
	r := &Resonator{
		sampleRate:    48000,
		baseFreq:      440,
		ratioStretch:  math.NaN(),
		weightRollOff: math.NaN(),
		dirty:         true,
	}
	sine := model.Sine()
	for i := range r.models {
		r.models[i] = sine
	}
	r.SetSeed(1)
	r.SetSampleRate(sampleRate)
	return r
}

// SetSampleRate updates every oscillator. Invalid rates are ignored.
func (r *Resonator) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}
	r.sampleRate = sampleRate
	for i := range r.oscs {
		r.oscs[i].SetSampleRate(sampleRate)
	}
	r.dirty = true
}

// SetSeed sets the seed of the entropy jitter and unison phase spread.
func (r *Resonator) SetSeed(seed uint32) {
	r.seed = seed
	r.rng.Seed(seed)
}

// SetBaseFrequency sets the fundamental in Hz.
func (r *Resonator) SetBaseFrequency(hz float64) {
	hz = core.Limit(hz, 0, r.sampleRate/2, 440)
	if hz != r.baseFreq {
		r.baseFreq = hz
		r.dirty = true
	}
}

// BaseFrequency returns the fundamental in Hz.
func (r *Resonator) BaseFrequency() float64 { return r.baseFreq }

// LoadModel copies m into a morph slot. A nil model clears the slot.
func (r *Resonator) LoadModel(slot int, m *model.SpectralModel) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if m == nil {
		r.models[slot] = model.SpectralModel{}
	} else {
		r.models[slot] = *m
	}
	r.dirty = true
	return nil
}

// SetStretching sets inharmonic stretch in [0, 1]. Partial n sits at
// base·n^(1+stretch/2).
func (r *Resonator) SetStretching(stretch float64) {
	stretch = core.Sanitize(stretch, 0, 1, 0)
	if stretch != r.stretch {
		r.stretch = stretch
		r.dirty = true
	}
}

// SetEntropy sets per-sample amplitude jitter in [0, 1]. It takes effect
// immediately and needs no recomputation.
func (r *Resonator) SetEntropy(entropy float64) {
	r.entropy = core.Sanitize(entropy, 0, 1, 0)
}

// SetShape sets the spectral shape controls. Parity in [-1, 1] attenuates
// even (p > 0) or odd (p < 0) partials, shift in Hz moves every partial,
// roll-off in [0, 1] tilts amplitudes by n^(-2·rollOff).
func (r *Resonator) SetShape(parity, shift, rollOff float64) {
	parity = core.Sanitize(parity, -1, 1, 0)
	shift = core.Sanitize(shift, -1000, 1000, 0)
	rollOff = core.Sanitize(rollOff, 0, 1, 0)
	if parity != r.parity || shift != r.shift || rollOff != r.rollOff {
		r.parity, r.shift, r.rollOff = parity, shift, rollOff
		r.dirty = true
	}
}

// SetUnison sets the unison layer detune ratio in [0, 0.1] and phase spread
// in [0, 1]. Detune 0 disables the layer. Spread applies at the next Reset.
func (r *Resonator) SetUnison(detune, spread float64) {
	detune = core.Sanitize(detune, 0, 0.1, 0)
	r.spread = core.Sanitize(spread, 0, 1, 0)
	if detune != r.detune {
		r.detune = detune
		r.dirty = true
	}
}

// UpdateHarmonics morphs the four models at (morphX, morphY) and refreshes
// every partial frequency and gain. It returns immediately when nothing
// has changed since the previous update.
func (r *Resonator) UpdateHarmonics(morphX, morphY float64) {
	morphX = core.Sanitize(morphX, 0, 1, 0)
	morphY = core.Sanitize(morphY, 0, 1, 0)
	if morphX != r.morphX || morphY != r.morphY {
		r.morphX, r.morphY = morphX, morphY
		r.dirty = true
	}
	if r.dirty {
		r.recompute()
	}
}

// Normalization returns the gain applied to the summed partials.
func (r *Resonator) Normalization() float64 {
	if r.dirty {
		r.recompute()
	}
	return r.norm
}

// Amplitudes writes the normalized amplitude of each primary partial.
func (r *Resonator) Amplitudes(dst *[NumPartials]float64) {
	if r.dirty {
		r.recompute()
	}
	for i := range dst {
		dst[i] = r.amps[i] * r.norm
	}
}

// PartialFrequency returns the frequency of primary partial i (0-based);
// muted partials report 0.
func (r *Resonator) PartialFrequency(i int) float64 {
	if r.dirty {
		r.recompute()
	}
	if i < 0 || i >= NumPartials {
		return 0
	}
	return r.oscs[i].Frequency()
}

// Reset rewinds every oscillator and the random sequence. The unison layer
// starts at phases drawn from the spread setting.
func (r *Resonator) Reset() {
	r.rng.Seed(r.seed)
	for i := range r.oscs[:NumPartials] {
		r.oscs[i].Reset()
	}
	for i := NumPartials; i < numOscillators; i++ {
		r.oscs[i].SetPhase(r.spread * r.rng.Float64())
	}
}

// ProcessSample returns the next output sample.
func (r *Resonator) ProcessSample() float64 {
	return r.ProcessSamplePM(0)
}

// ProcessSamplePM returns the next output sample with every partial's phase
// offset by pm cycles.
func (r *Resonator) ProcessSamplePM(pm float64) float64 {
	if r.dirty {
		r.recompute()
	}
	if r.norm == 0 {
		return 0
	}

	var sum float64
	oscs := r.oscs[:r.count]
	amps := r.amps[:r.count]
	if r.entropy == 0 {
		for i := range oscs {
			sum += amps[i] * oscs[i].ProcessPM(pm)
		}
	} else {
		jitter := r.entropy * entropyScale
		for i := range oscs {
			a := amps[i] * (1 + jitter*r.rng.Bipolar())
			sum += a * oscs[i].ProcessPM(pm)
		}
	}
	return sum * r.norm
}

// ProcessBlock writes len(dst) samples.
func (r *Resonator) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = r.ProcessSamplePM(0)
	}
}

func (r *Resonator) recompute() {
	if r.stretch != r.ratioStretch {
		exp := 1 + r.stretch*0.5
		for i := range r.harmonicRatio {
			r.harmonicRatio[i] = math.Pow(float64(i+1), exp)
		}
		r.ratioStretch = r.stretch
	}
	if r.rollOff != r.weightRollOff {
		for i := range r.rollWeight {
			r.rollWeight[i] = math.Pow(float64(i+1), -2*r.rollOff)
		}
		r.weightRollOff = r.rollOff
	}

	limit := maxPartialRatio * r.sampleRate
	a, b, c, d := &r.models[0], &r.models[1], &r.models[2], &r.models[3]
	unison := r.detune != 0

	var sum float64
	for i := 0; i < NumPartials; i++ {
		amp := core.Bilerp(a.Amplitudes[i], b.Amplitudes[i], c.Amplitudes[i], d.Amplitudes[i], r.morphX, r.morphY)
		offset := core.Bilerp(a.FrequencyOffsets[i], b.FrequencyOffsets[i], c.FrequencyOffsets[i], d.FrequencyOffsets[i], r.morphX, r.morphY)

		freq := r.baseFreq*r.harmonicRatio[i] + offset + r.shift
		weight := max(amp, 0) * r.rollWeight[i] * r.parityWeight(i+1)

		if freq <= 0 || freq > limit || weight == 0 {
			r.oscs[i].SetFrequency(0)
			r.amps[i] = 0
		} else {
			r.oscs[i].SetFrequency(freq)
			r.amps[i] = weight
			sum += weight
		}

		u := i + NumPartials
		uf := freq * (1 + r.detune)
		if !unison || r.amps[i] == 0 || uf > limit {
			r.oscs[u].SetFrequency(0)
			r.amps[u] = 0
			continue
		}
		r.oscs[u].SetFrequency(uf)
		r.amps[u] = weight * UnisonGain
		sum += r.amps[u]
	}

	r.count = NumPartials
	if unison {
		r.count = numOscillators
	}
	r.norm = 0
	if sum > 0 {
		r.norm = 1 / sum
	}
	r.dirty = false
}

// parityWeight returns the odd/even balance factor for harmonic n (1-based).
func (r *Resonator) parityWeight(n int) float64 {
	switch {
	case r.parity > 0 && n%2 == 0:
		return 1 - r.parity
	case r.parity < 0 && n%2 == 1:
		return 1 + r.parity
	default:
		return 1
	}
}
