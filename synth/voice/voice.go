// Package voice implements the per-note DSP chains. Both variants satisfy
// [Voice], so the engine never needs to know which synthesis strategy a
// slot uses.
package voice

import (
	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/envelope"
	"github.com/cwbudde/algo-morph/dsp/smooth"
	"github.com/cwbudde/algo-morph/synth/model"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
	"github.com/cwbudde/algo-morph/synth/params"
)

const (
	// ControlInterval is the number of samples between coefficient updates
	// of the resonator and filter.
	ControlInterval = 32

	defaultSampleRate = 48000.0
)

// Mod holds the per-destination modulation sums the engine writes each
// block, in fractions of the destination range.
type Mod = modmatrix.Accumulators

// Voice is the capability set shared by every voice variant.
type Voice interface {
	// Prepare sets the sample rate. blockSize is the largest slice Render
	// will be given; voices render in place and need no scratch of their own.
	Prepare(sampleRate float64, blockSize int)
	NoteOn(note, channel int, velocity float64)
	NoteOff()
	// Render overwrites out with the next len(out) samples.
	Render(out []float64)
	Reset()
	IsActive() bool
	Note() int
	Channel() int
	SetPitchBend(semitones float64)
	SetPressure(pressure float64)
	SetTimbre(timbre float64)
	Pressure() float64
	Timbre() float64
	Mod() *Mod
	// ApplyParams latches p plus the current Mod sums.
	ApplyParams(p *params.VoiceParams)
	LoadModel(slot int, m *model.SpectralModel) error
	EnvelopeLevel() float64
	PartialAmplitudes(dst *[model.NumPartials]float64)
	SetSeed(seed uint32)
}

// shared carries the state both variants have in common: note identity,
// MPE state, the amplitude envelope and the smoothed continuous controls.
type shared struct {
	sampleRate float64

	note     int
	channel  int
	velocity float64 // after the velocity curve
	bend     float64 // semitones
	pressure float64
	timbre   float64

	mod    Mod
	params params.VoiceParams // latched, with modulation applied

	amp *envelope.Envelope

	level     smooth.Linear
	morphX    smooth.Linear
	morphY    smooth.Linear
	resonance smooth.Linear
	detune    smooth.Linear
	pitch     smooth.Linear // modulation offset in semitones

	countdown int
}

func newShared(sampleRate float64) shared {
	s := shared{
		sampleRate: sampleRate,
		note:       -1,
		params:     params.DefaultVoiceParams(),
		amp:        envelope.New(sampleRate),
	}
	s.resetSmoothers()
	return s
}

func (s *shared) prepare(sampleRate float64) {
	if sampleRate > 0 && core.IsFinite(sampleRate) {
		s.sampleRate = sampleRate
	}
	s.amp.SetSampleRate(s.sampleRate)
	s.resetSmoothers()
}

func (s *shared) smoothers() []*smooth.Linear {
	return []*smooth.Linear{&s.level, &s.morphX, &s.morphY, &s.resonance, &s.detune, &s.pitch}
}

// resetSmoothers re-arms every smoother and jumps it to the latched value.
func (s *shared) resetSmoothers() {
	for _, sm := range s.smoothers() {
		sm.Reset(s.sampleRate, smooth.DefaultRampSeconds)
	}
	s.snapSmoothers()
	s.countdown = 0
}

func (s *shared) snapSmoothers() {
	p := &s.params
	s.level.SetCurrentAndTarget(p.Level)
	s.morphX.SetCurrentAndTarget(p.MorphX)
	s.morphY.SetCurrentAndTarget(p.MorphY)
	s.resonance.SetCurrentAndTarget(p.FilterResonance)
	s.detune.SetCurrentAndTarget(p.UnisonDetune)
	s.pitch.SetCurrentAndTarget(params.Modulated(modmatrix.DestPitch, 0, s.mod[modmatrix.DestPitch]))
}

// latch copies p, adds the modulation sums and retargets the smoothers.
func (s *shared) latch(p *params.VoiceParams) {
	s.params = *p
	for i := range modmatrix.NumDestinations {
		d := modmatrix.Destination(i)
		if f := s.params.Field(d); f != nil {
			*f = params.Modulated(d, *f, s.mod[d])
		}
	}
	q := &s.params
	s.level.SetTarget(q.Level)
	s.morphX.SetTarget(q.MorphX)
	s.morphY.SetTarget(q.MorphY)
	s.resonance.SetTarget(q.FilterResonance)
	s.detune.SetTarget(q.UnisonDetune)
	s.pitch.SetTarget(params.Modulated(modmatrix.DestPitch, 0, s.mod[modmatrix.DestPitch]))
	s.amp.SetSettings(q.AmpEnvelope())
}

func (s *shared) noteOn(note, channel int, velocity float64) {
	s.note = note
	s.channel = channel
	s.velocity = s.params.VelocityCurve.Apply(velocity)
	s.snapSmoothers()
	s.countdown = 0
	s.amp.NoteOn()
}

// baseFrequency returns the note frequency with pitch bend and pitch
// modulation applied.
func (s *shared) baseFrequency(pitchMod float64) float64 {
	return core.MIDINoteToHz(float64(s.note)) * core.SemitonesToRatio(s.bend+pitchMod)
}

// controlTick reports whether a control-rate update is due for the next
// sample and advances the countdown.
func (s *shared) controlTick() bool {
	due := s.countdown == 0
	if due {
		s.countdown = ControlInterval
	}
	s.countdown--
	return due
}

func (s *shared) reset() {
	s.amp.Reset()
	s.resetSmoothers()
}

// Note returns the current note number, or -1 before the first note.
func (s *shared) Note() int { return s.note }

// Channel returns the 0-based MIDI channel of the current note.
func (s *shared) Channel() int { return s.channel }

// SetPitchBend sets the per-voice bend in semitones.
func (s *shared) SetPitchBend(semitones float64) {
	s.bend = core.Sanitize(semitones, -params.PitchBendRange.Max, params.PitchBendRange.Max, 0)
}

// SetPressure records MPE pressure in [0, 1]. It feeds the aftertouch
// modulation source only.
func (s *shared) SetPressure(p float64) { s.pressure = core.Sanitize(p, 0, 1, 0) }

// SetTimbre records MPE timbre (CC74) in [0, 1]. It is tracked but not
// routed to any synthesis parameter.
func (s *shared) SetTimbre(t float64) { s.timbre = core.Sanitize(t, 0, 1, 0) }

func (s *shared) Pressure() float64 { return s.pressure }
func (s *shared) Timbre() float64   { return s.timbre }
func (s *shared) Mod() *Mod         { return &s.mod }

// IsActive reports whether the amplitude envelope is running.
func (s *shared) IsActive() bool { return s.amp.IsActive() }

// EnvelopeLevel returns the amplitude envelope level.
func (s *shared) EnvelopeLevel() float64 { return s.amp.Level() }

// NoteOff releases the amplitude envelope.
func (s *shared) NoteOff() { s.amp.NoteOff() }

// sanitize zeroes non-finite samples in out and reports whether any were
// found.
func sanitize(out []float64) bool {
	return core.ScrubNonFinite(out) > 0
}
