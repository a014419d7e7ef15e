// Package envelope implements the exponential multi-stage ADSR generator
// used for voice amplitude and filter contours.
package envelope

import (
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/internal/fastmath"
)

const (
	// attackTarget overshoots unity so the exponential attack reaches 1.0
	// in finite time with a natural curve.
	attackTarget = 1.1
	// releaseThreshold is the level below which Release snaps to Idle.
	releaseThreshold = 0.0001
	// decayThreshold is the distance to sustain at which Decay settles.
	decayThreshold = 0.0001

	minTimeMs = 0.0
	maxTimeMs = 10000.0

	defaultAttackMs  = 10.0
	defaultDecayMs   = 100.0
	defaultSustain   = 0.7
	defaultReleaseMs = 300.0
)

// Stage identifies the active envelope segment.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Settings is the complete parameter snapshot of an Envelope.
// Times are in milliseconds, Sustain is a level in [0, 1].
type Settings struct {
	AttackMs  float64
	DecayMs   float64
	Sustain   float64
	ReleaseMs float64
}

// DefaultSettings returns a general-purpose ADSR contour.
func DefaultSettings() Settings {
	return Settings{
		AttackMs:  defaultAttackMs,
		DecayMs:   defaultDecayMs,
		Sustain:   defaultSustain,
		ReleaseMs: defaultReleaseMs,
	}
}

// Sanitized clamps every field into its valid range, substituting defaults
// for non-finite values.
func (s Settings) Sanitized() Settings {
	return Settings{
		AttackMs:  core.Sanitize(s.AttackMs, minTimeMs, maxTimeMs, defaultAttackMs),
		DecayMs:   core.Sanitize(s.DecayMs, minTimeMs, maxTimeMs, defaultDecayMs),
		Sustain:   core.Sanitize(s.Sustain, 0, 1, defaultSustain),
		ReleaseMs: core.Sanitize(s.ReleaseMs, minTimeMs, maxTimeMs, defaultReleaseMs),
	}
}

// Envelope is an exponential ADSR generator.
//
// Settings can be published from any goroutine with Publish; the audio
// goroutine latches them at the next ProcessSample. The Set* methods are for
// the audio goroutine itself. Both paths only mark the coefficients dirty;
// the exp() multipliers are recomputed once, lazily, on the next sample.
type Envelope struct {
	sampleRate float64

	published core.Snapshot[Settings]
	reader    *core.Reader[Settings]

	settings Settings
	dirty    bool

	attackMul  float64
	decayMul   float64
	releaseMul float64

	stage Stage
	level float64
}

// New returns an idle envelope with default settings.
func New(sampleRate float64) *Envelope {
	e := &Envelope{
		sampleRate: 48000,
		settings:   DefaultSettings(),
		dirty:      true,
	}
	e.published.Store(e.settings)
	e.reader = core.NewReader(&e.published)
	e.SetSampleRate(sampleRate)
	return e
}

// SetSampleRate updates the sample rate. Invalid rates are ignored.
func (e *Envelope) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}
	e.sampleRate = sampleRate
	e.dirty = true
}

// Publish hands a full settings snapshot to the audio goroutine. Safe to
// call from any goroutine.
func (e *Envelope) Publish(s Settings) {
	e.published.Store(s.Sanitized())
}

// Settings returns the settings currently used by the audio goroutine.
func (e *Envelope) Settings() Settings { return e.settings }

// SetSettings replaces all settings from the audio goroutine.
func (e *Envelope) SetSettings(s Settings) {
	s = s.Sanitized()
	if s != e.settings {
		e.settings = s
		e.dirty = true
	}
}

// SetAttack sets the attack time in milliseconds.
func (e *Envelope) SetAttack(ms float64) {
	s := e.settings
	s.AttackMs = ms
	e.SetSettings(s)
}

// SetDecay sets the decay time in milliseconds.
func (e *Envelope) SetDecay(ms float64) {
	s := e.settings
	s.DecayMs = ms
	e.SetSettings(s)
}

// SetSustain sets the sustain level in [0, 1].
func (e *Envelope) SetSustain(level float64) {
	s := e.settings
	s.Sustain = level
	e.SetSettings(s)
}

// SetRelease sets the release time in milliseconds.
func (e *Envelope) SetRelease(ms float64) {
	s := e.settings
	s.ReleaseMs = ms
	e.SetSettings(s)
}

// NoteOn starts the attack segment from the current level.
func (e *Envelope) NoteOn() {
	e.stage = StageAttack
}

// NoteOff enters the release segment from any active stage.
func (e *Envelope) NoteOff() {
	if e.stage != StageIdle {
		e.stage = StageRelease
	}
}

// Reset returns the envelope to Idle at level 0.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
}

// Stage returns the current segment.
func (e *Envelope) Stage() Stage { return e.stage }

// Level returns the most recent output level.
func (e *Envelope) Level() float64 { return e.level }

// IsActive reports whether the envelope is outside the Idle stage.
func (e *Envelope) IsActive() bool { return e.stage != StageIdle }

// ProcessSample advances the envelope by one sample and returns its level.
func (e *Envelope) ProcessSample() float64 {
	if e.reader.Latch() {
		e.SetSettings(e.reader.Value)
	}
	if e.dirty {
		e.recompute()
	}

	switch e.stage {
	case StageIdle:
		return 0

	case StageAttack:
		e.level = attackTarget + e.attackMul*(e.level-attackTarget)
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}

	case StageDecay:
		sustain := e.settings.Sustain
		e.level = sustain + e.decayMul*(e.level-sustain)
		if math.Abs(e.level-sustain) <= decayThreshold {
			e.level = sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.level = e.settings.Sustain

	case StageRelease:
		e.level *= e.releaseMul
		if e.level < releaseThreshold {
			e.level = 0
			e.stage = StageIdle
		}
	}

	return e.level
}

// ProcessBlock writes one envelope level per element of dst.
func (e *Envelope) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = e.ProcessSample()
	}
}

func (e *Envelope) recompute() {
	e.attackMul = e.multiplier(e.settings.AttackMs)
	e.decayMul = e.multiplier(e.settings.DecayMs)
	e.releaseMul = e.multiplier(e.settings.ReleaseMs)
	e.dirty = false
}

// multiplier returns exp(-1/samples) for a segment of ms milliseconds.
// Zero-length segments jump straight to their target.
func (e *Envelope) multiplier(ms float64) float64 {
	samples := ms * 0.001 * e.sampleRate
	if samples <= 0 {
		return 0
	}
	return fastmath.Exp(-1 / samples)
}
