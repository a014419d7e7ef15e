// Package resonator implements the resonator filter bank: 128 band-pass
// filters tuned to the partials of a morphed spectral model and driven by
// a shared excitation signal.
package resonator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/filter/biquad"
	"github.com/cwbudde/algo-morph/synth/model"
	"github.com/cwbudde/algo-morph/synth/resonator/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

const (
	// NumPartials is the number of primary filters.
	NumPartials = model.NumPartials
	// NumFilters is the total number of filters including the unison layer.
	NumFilters = registry.NumLanes
	// NumSlots is the number of morph corners.
	NumSlots = 4

	// UnisonGain scales the unison layer relative to the primary filters.
	UnisonGain = 0.707

	minFilterHz    = 10.0
	maxFilterRatio = 0.48

	minQ = 1.0
	maxQ = 200.0
)

// ErrInvalidSlot is returned for morph slots outside [0, NumSlots).
var ErrInvalidSlot = errors.New("resonator: model slot must be in [0, 3]")

var (
	processSampleImpl     registry.ProcessSampleFn
	processSampleInitOnce sync.Once
)

func initProcessSampleKernel() {
	entry := registry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil || entry.ProcessSample == nil {
		panic("resonator: no kernel registered (missing generic fallback?)")
	}
	processSampleImpl = entry.ProcessSample
}

// ResonanceToQ maps resonance in [0, 1] to Q = 1 + r²·199.
func ResonanceToQ(resonance float64) float64 {
	r := core.Clamp(resonance, 0, 1)
	return minQ + r*r*(maxQ-minQ)
}

type driveState struct {
	morphX, morphY float64
	resonance      float64
	detune         float64
}

// Bank is a bank of band-pass resonators. Coefficients are recomputed only
// when a driving value changes.
type Bank struct {
	sampleRate float64
	baseFreq   float64

	models [NumSlots]model.SpectralModel

	parity, shift, rollOff float64

	rollWeight    [NumPartials]float64
	weightRollOff float64

	last  driveState
	q     float64
	dirty bool

	lanes  registry.Lanes
	active int
	norm   float64

	process registry.ProcessSampleFn
}

// New returns a bank with a sine model in every slot.
func New(sampleRate float64) *Bank {
	processSampleInitOnce.Do(initProcessSampleKernel)

	b := &Bank{
		sampleRate: 48000,
		baseFreq:   440,
		q:          minQ,
		dirty:      true,

		weightRollOff: math.NaN(),
		active:        NumPartials,
		process:       processSampleImpl,
	}
	sine := model.Sine()
	for i := range b.models {
		b.models[i] = sine
	}
	b.SetSampleRate(sampleRate)
	return b
}

// SetSampleRate updates the sample rate. Invalid rates are ignored.
func (b *Bank) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}
	b.sampleRate = sampleRate
	b.dirty = true
}

// SetBaseFrequency sets the fundamental in Hz.
func (b *Bank) SetBaseFrequency(hz float64) {
	hz = core.Limit(hz, 0, b.sampleRate/2, 440)
	if hz != b.baseFreq {
		b.baseFreq = hz
		b.dirty = true
	}
}

// BaseFrequency returns the fundamental in Hz.
func (b *Bank) BaseFrequency() float64 { return b.baseFreq }

// LoadModel copies m into a morph slot. A nil model clears the slot.
func (b *Bank) LoadModel(slot int, m *model.SpectralModel) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if m == nil {
		b.models[slot] = model.SpectralModel{}
	} else {
		b.models[slot] = *m
	}
	b.dirty = true
	return nil
}

// SetShape sets the spectral shape controls; see the additive resonator
// for their meaning.
func (b *Bank) SetShape(parity, shift, rollOff float64) {
	parity = core.Sanitize(parity, -1, 1, 0)
	shift = core.Sanitize(shift, -1000, 1000, 0)
	rollOff = core.Sanitize(rollOff, 0, 1, 0)
	if parity != b.parity || shift != b.shift || rollOff != b.rollOff {
		b.parity, b.shift, b.rollOff = parity, shift, rollOff
		b.dirty = true
	}
}

// UpdateParameters retunes the bank. Nothing is recomputed when every
// argument equals the previous call and no other setting changed.
func (b *Bank) UpdateParameters(morphX, morphY, resonance, detune float64) {
	next := driveState{
		morphX:    core.Sanitize(morphX, 0, 1, 0),
		morphY:    core.Sanitize(morphY, 0, 1, 0),
		resonance: core.Sanitize(resonance, 0, 1, 0.5),
		detune:    core.Sanitize(detune, 0, 0.1, 0),
	}
	if next == b.last && !b.dirty {
		return
	}
	b.last = next
	b.recompute()
}

// Q returns the quality factor of every filter.
func (b *Bank) Q() float64 { return b.q }

// Normalization returns 1/Σ filter gains before normalization.
func (b *Bank) Normalization() float64 {
	if b.dirty {
		b.recompute()
	}
	return b.norm
}

// ActiveFilters returns how many filters are processed per sample.
func (b *Bank) ActiveFilters() int { return b.active }

// Amplitudes writes the normalized gain of each primary filter.
func (b *Bank) Amplitudes(dst *[NumPartials]float64) {
	if b.dirty {
		b.recompute()
	}
	copy(dst[:], b.lanes.Gain[:NumPartials])
}

// FilterFrequency returns the center frequency of primary filter i, or 0
// when it is muted.
func (b *Bank) FilterFrequency(i int) float64 {
	if b.dirty {
		b.recompute()
	}
	if i < 0 || i >= NumPartials || b.lanes.B0[i] == 0 {
		return 0
	}
	return b.centerFrequency(i)
}

// Reset clears every filter's state.
func (b *Bank) Reset() {
	b.lanes.Z1 = [NumFilters]float64{}
	b.lanes.Z2 = [NumFilters]float64{}
}

// ProcessSample drives all active filters with excitation and returns the
// gain-weighted sum of their outputs.
func (b *Bank) ProcessSample(excitation float64) float64 {
	if b.dirty {
		b.recompute()
	}
	return b.process(&b.lanes, excitation, b.active)
}

// ProcessBlock replaces each excitation sample in buf with the bank output.
func (b *Bank) ProcessBlock(buf []float64) {
	if b.dirty {
		b.recompute()
	}
	for i, x := range buf {
		buf[i] = b.process(&b.lanes, x, b.active)
	}
}

func (b *Bank) centerFrequency(i int) float64 {
	mx, my := b.last.morphX, b.last.morphY
	m := &b.models
	offset := core.Bilerp(m[0].FrequencyOffsets[i], m[1].FrequencyOffsets[i], m[2].FrequencyOffsets[i], m[3].FrequencyOffsets[i], mx, my)
	return b.baseFreq*float64(i+1) + offset + b.shift
}

func (b *Bank) recompute() {
	b.q = ResonanceToQ(b.last.resonance)
	mx, my := b.last.morphX, b.last.morphY
	detune := b.last.detune
	lo, hi := minFilterHz, maxFilterRatio*b.sampleRate
	m := &b.models

	if b.rollOff != b.weightRollOff {
		for i := range b.rollWeight {
			b.rollWeight[i] = math.Pow(float64(i+1), -2*b.rollOff)
		}
		b.weightRollOff = b.rollOff
	}

	var sum float64
	for i := 0; i < NumPartials; i++ {
		amp := core.Bilerp(m[0].Amplitudes[i], m[1].Amplitudes[i], m[2].Amplitudes[i], m[3].Amplitudes[i], mx, my)
		weight := max(amp, 0) * b.rollWeight[i] * b.parityWeight(i+1)
		freq := b.centerFrequency(i)

		sum += b.tune(i, freq, weight, lo, hi)

		u := i + NumPartials
		if detune == 0 {
			b.mute(u)
			continue
		}
		sum += b.tune(u, freq*(1+detune), weight*UnisonGain, lo, hi)
	}

	b.active = NumPartials
	if detune != 0 {
		b.active = NumFilters
	}

	b.norm = 0
	if sum > 0 {
		b.norm = 1 / sum
	}
	for i := range b.lanes.Gain {
		b.lanes.Gain[i] *= b.norm
	}
	b.dirty = false
}

// tune sets lane i to a band-pass at freq with the given gain and returns
// the gain actually used, 0 when the lane had to be muted.
func (b *Bank) tune(i int, freq, gain, lo, hi float64) float64 {
	if gain == 0 || freq < lo || freq > hi {
		b.mute(i)
		return 0
	}
	c := biquad.Bandpass(freq, b.q, b.sampleRate)
	b.lanes.B0[i] = c.B0
	b.lanes.B2[i] = c.B2
	b.lanes.A1[i] = c.A1
	b.lanes.A2[i] = c.A2
	b.lanes.Gain[i] = gain
	return gain
}

func (b *Bank) mute(i int) {
	b.lanes.B0[i] = 0
	b.lanes.B2[i] = 0
	b.lanes.A1[i] = 0
	b.lanes.A2[i] = 0
	b.lanes.Z1[i] = 0
	b.lanes.Z2[i] = 0
	b.lanes.Gain[i] = 0
}

func (b *Bank) parityWeight(n int) float64 {
	switch {
	case b.parity > 0 && n%2 == 0:
		return 1 - b.parity
	case b.parity < 0 && n%2 == 1:
		return 1 + b.parity
	default:
		return 1
	}
}
