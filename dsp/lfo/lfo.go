// Package lfo implements a free-running or tempo-synced low-frequency
// oscillator and the LFO pair shared by an engine.
package lfo

import (
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
)

const (
	minRateHz     = 0.01
	maxRateHz     = 50.0
	defaultRateHz = 1.0

	minTempo     = 20.0
	maxTempo     = 300.0
	defaultTempo = 120.0

	tripletFactor = 1.5
)

// Waveform selects the LFO shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	SawUp
	SawDown
	Square
	SampleHold
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case SawUp:
		return "saw-up"
	case SawDown:
		return "saw-down"
	case Square:
		return "square"
	case SampleHold:
		return "sample-hold"
	default:
		return "unknown"
	}
}

// Valid reports whether w names a supported shape.
func (w Waveform) Valid() bool {
	return w >= Sine && w <= SampleHold
}

// Division is a rhythmic note value for tempo sync.
type Division int

const (
	Whole Division = iota
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	HalfTriplet
	QuarterTriplet
	EighthTriplet
	SixteenthTriplet
)

var divisionNames = [...]string{
	Whole:            "1/1",
	Half:             "1/2",
	Quarter:          "1/4",
	Eighth:           "1/8",
	Sixteenth:        "1/16",
	ThirtySecond:     "1/32",
	HalfTriplet:      "1/2T",
	QuarterTriplet:   "1/4T",
	EighthTriplet:    "1/8T",
	SixteenthTriplet: "1/16T",
}

// String returns the note value, e.g. "1/8T".
func (d Division) String() string {
	if !d.Valid() {
		return "unknown"
	}
	return divisionNames[d]
}

// Valid reports whether d names a supported note value.
func (d Division) Valid() bool {
	return d >= Whole && d <= SixteenthTriplet
}

// CyclesPerBeat returns how many LFO cycles fit in one quarter-note beat.
func (d Division) CyclesPerBeat() float64 {
	switch d {
	case Whole:
		return 0.25
	case Half:
		return 0.5
	case Quarter:
		return 1
	case Eighth:
		return 2
	case Sixteenth:
		return 4
	case ThirtySecond:
		return 8
	case HalfTriplet:
		return 0.5 * tripletFactor
	case QuarterTriplet:
		return 1 * tripletFactor
	case EighthTriplet:
		return 2 * tripletFactor
	case SixteenthTriplet:
		return 4 * tripletFactor
	default:
		return 1
	}
}

// ParseDivision returns the Division named s ("1/4", "1/8T", ...).
func ParseDivision(s string) (Division, bool) {
	for d, name := range divisionNames {
		if name == s {
			return Division(d), true
		}
	}
	return Quarter, false
}

// Settings is the complete parameter snapshot of an LFO.
type Settings struct {
	RateHz   float64
	Waveform Waveform
	Sync     bool
	Division Division
	Tempo    float64 // BPM, used when Sync is set
	Depth    float64 // output scale in [0, 1]
}

// DefaultSettings returns a 1 Hz full-depth sine.
func DefaultSettings() Settings {
	return Settings{
		RateHz:   defaultRateHz,
		Waveform: Sine,
		Division: Quarter,
		Tempo:    defaultTempo,
		Depth:    1,
	}
}

// Sanitized clamps every field into its valid range.
func (s Settings) Sanitized() Settings {
	s.RateHz = core.Sanitize(s.RateHz, minRateHz, maxRateHz, defaultRateHz)
	s.Tempo = core.Sanitize(s.Tempo, minTempo, maxTempo, defaultTempo)
	s.Depth = core.Sanitize(s.Depth, 0, 1, 1)
	if !s.Waveform.Valid() {
		s.Waveform = Sine
	}
	if !s.Division.Valid() {
		s.Division = Quarter
	}
	return s
}

// EffectiveRate returns the oscillation rate in Hz, resolving tempo sync.
func (s Settings) EffectiveRate() float64 {
	if s.Sync {
		return s.Tempo / 60 * s.Division.CyclesPerBeat()
	}
	return s.RateHz
}

// LFO is a bipolar low-frequency oscillator with output in [-Depth, Depth].
type LFO struct {
	sampleRate float64

	published core.Snapshot[Settings]
	reader    *core.Reader[Settings]

	settings Settings
	inc      float64
	dirty    bool

	phase float64
	value float64

	seed       uint32
	rng        core.Xorshift32
	holdFrom   float64
	holdTarget float64
}

// New returns an LFO with default settings and seed 1.
func New(sampleRate float64) *LFO {
	l := &LFO{
		sampleRate: 48000,
		settings:   DefaultSettings(),
		dirty:      true,
	}
	l.published.Store(l.settings)
	l.reader = core.NewReader(&l.published)
	l.SetSeed(1)
	l.SetSampleRate(sampleRate)
	return l
}

// SetSampleRate updates the sample rate. Invalid rates are ignored.
func (l *LFO) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}
	l.sampleRate = sampleRate
	l.dirty = true
}

// SetSeed sets the sample-and-hold random seed and restarts the sequence.
func (l *LFO) SetSeed(seed uint32) {
	l.seed = seed
	l.rng.Seed(seed)
	l.holdFrom = 0
	l.holdTarget = l.rng.Bipolar()
}

// Publish hands a settings snapshot to the audio goroutine. Safe to call
// from any goroutine.
func (l *LFO) Publish(s Settings) {
	l.published.Store(s.Sanitized())
}

// Settings returns the settings in use by the audio goroutine.
func (l *LFO) Settings() Settings { return l.settings }

// SetSettings replaces all settings from the audio goroutine.
func (l *LFO) SetSettings(s Settings) {
	s = s.Sanitized()
	if s != l.settings {
		l.settings = s
		l.dirty = true
	}
}

// SetRate sets the free-running rate in Hz.
func (l *LFO) SetRate(hz float64) {
	s := l.settings
	s.RateHz = hz
	l.SetSettings(s)
}

// SetWaveform selects the output shape.
func (l *LFO) SetWaveform(w Waveform) {
	s := l.settings
	s.Waveform = w
	l.SetSettings(s)
}

// SetTempo sets the host tempo in BPM.
func (l *LFO) SetTempo(bpm float64) {
	s := l.settings
	s.Tempo = bpm
	l.SetSettings(s)
}

// Phase returns the normalized phase in [0, 1).
func (l *LFO) Phase() float64 { return l.phase }

// Value returns the most recent output.
func (l *LFO) Value() float64 { return l.value }

// Reset restarts the phase and the sample-and-hold sequence.
func (l *LFO) Reset() {
	l.phase = 0
	l.value = 0
	l.SetSeed(l.seed)
}

// ProcessSample returns the current output and advances one sample.
func (l *LFO) ProcessSample() float64 {
	l.latch()
	l.value = l.shape() * l.settings.Depth
	l.advance()
	return l.value
}

// ProcessBlock returns the output at the first sample of an n-sample block
// and advances the phase past the whole block. Only sample-and-hold visits
// every sample, since each wrap draws a new random target.
func (l *LFO) ProcessBlock(n int) float64 {
	l.latch()
	l.value = l.shape() * l.settings.Depth
	if n <= 0 {
		return l.value
	}

	if l.settings.Waveform == SampleHold {
		for i := 0; i < n; i++ {
			l.advance()
		}
		return l.value
	}

	l.phase += float64(n) * l.inc
	l.phase -= math.Floor(l.phase)
	return l.value
}

func (l *LFO) latch() {
	if l.reader.Latch() {
		l.SetSettings(l.reader.Value)
	}
	if l.dirty {
		l.inc = l.settings.EffectiveRate() / l.sampleRate
		l.dirty = false
	}
}

func (l *LFO) advance() {
	l.phase += l.inc
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
		l.holdFrom = l.holdTarget
		l.holdTarget = l.rng.Bipolar()
	}
}

func (l *LFO) shape() float64 {
	p := l.phase
	switch l.settings.Waveform {
	case Triangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	case SawUp:
		return 2*p - 1
	case SawDown:
		return 1 - 2*p
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case SampleHold:
		return l.holdFrom + (l.holdTarget-l.holdFrom)*p
	default:
		return FastSin(p)
	}
}

// FastSin approximates sin(2π·phase) for phase in [0, 1) with Bhaskara's
// rational formula applied to each half cycle. Maximum error is about 0.0016.
func FastSin(phase float64) float64 {
	if phase < 0.5 {
		return bhaskara(2 * phase)
	}
	return -bhaskara(2*phase - 1)
}

// bhaskara approximates sin(π·t) for t in [0, 1].
func bhaskara(t float64) float64 {
	x := t * (1 - t)
	return 16 * x / (5 - 4*x)
}
