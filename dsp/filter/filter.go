// Package filter implements the multi-mode voice filter: one RBJ biquad
// switchable between low-pass, high-pass, band-pass and notch responses.
package filter

import (
	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/filter/biquad"
)

const (
	minCutoffHz      = 20.0
	maxCutoffRatio   = 0.49
	defaultCutoffHz  = 8000.0
	defaultResonance = 0.2

	minQ = 0.5
	maxQ = 15.0
)

// Mode selects the filter response.
type Mode int

const (
	ModeLowPass Mode = iota
	ModeHighPass
	ModeBandPass
	ModeNotch
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeLowPass:
		return "lowpass"
	case ModeHighPass:
		return "highpass"
	case ModeBandPass:
		return "bandpass"
	case ModeNotch:
		return "notch"
	default:
		return "unknown"
	}
}

// Valid reports whether m names a supported response.
func (m Mode) Valid() bool {
	return m >= ModeLowPass && m <= ModeNotch
}

// Settings is the complete parameter snapshot of a FilterBank.
type Settings struct {
	CutoffHz  float64
	Resonance float64 // 0..1, mapped quadratically to Q
	Mode      Mode
}

// DefaultSettings returns an open low-pass filter.
func DefaultSettings() Settings {
	return Settings{
		CutoffHz:  defaultCutoffHz,
		Resonance: defaultResonance,
		Mode:      ModeLowPass,
	}
}

// ResonanceToQ maps resonance in [0, 1] to Q in [0.5, 15] quadratically.
func ResonanceToQ(resonance float64) float64 {
	r := core.Clamp(resonance, 0, 1)
	return minQ + r*r*(maxQ-minQ)
}

// FilterBank is a single multi-mode biquad whose coefficients are
// recomputed lazily when cutoff, resonance or mode change.
type FilterBank struct {
	sampleRate float64

	published core.Snapshot[Settings]
	reader    *core.Reader[Settings]

	settings Settings
	dirty    bool

	section biquad.Section
}

// New returns a FilterBank with default settings.
func New(sampleRate float64) *FilterBank {
	f := &FilterBank{
		sampleRate: 48000,
		settings:   DefaultSettings(),
		dirty:      true,
	}
	f.published.Store(f.settings)
	f.reader = core.NewReader(&f.published)
	f.SetSampleRate(sampleRate)
	return f
}

// SetSampleRate updates the sample rate. Invalid rates are ignored.
func (f *FilterBank) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}
	f.sampleRate = sampleRate
	f.settings = f.sanitize(f.settings)
	f.dirty = true
}

// Publish hands a settings snapshot to the audio goroutine. Safe to call
// from any goroutine.
func (f *FilterBank) Publish(s Settings) {
	f.published.Store(s)
}

// Settings returns the settings in use by the audio goroutine.
func (f *FilterBank) Settings() Settings { return f.settings }

// SetSettings replaces all settings from the audio goroutine.
func (f *FilterBank) SetSettings(s Settings) {
	s = f.sanitize(s)
	if s != f.settings {
		f.settings = s
		f.dirty = true
	}
}

// SetCutoff sets the cutoff (or center) frequency in Hz.
func (f *FilterBank) SetCutoff(hz float64) {
	s := f.settings
	s.CutoffHz = hz
	f.SetSettings(s)
}

// SetResonance sets resonance in [0, 1].
func (f *FilterBank) SetResonance(r float64) {
	s := f.settings
	s.Resonance = r
	f.SetSettings(s)
}

// SetMode selects the filter response.
func (f *FilterBank) SetMode(m Mode) {
	s := f.settings
	s.Mode = m
	f.SetSettings(s)
}

// Coefficients returns the current biquad coefficients, recomputing them
// first if they are stale.
func (f *FilterBank) Coefficients() biquad.Coefficients {
	f.latch()
	return f.section.Coefficients
}

// ProcessSample filters one sample.
func (f *FilterBank) ProcessSample(x float64) float64 {
	f.latch()
	return f.section.ProcessSample(x)
}

// ProcessBlock filters buf in place.
func (f *FilterBank) ProcessBlock(buf []float64) {
	f.latch()
	f.section.ProcessBlock(buf)
}

// Reset clears the filter state; coefficients are kept.
func (f *FilterBank) Reset() {
	f.section.Reset()
}

func (f *FilterBank) latch() {
	if f.reader.Latch() {
		f.SetSettings(f.reader.Value)
	}
	if f.dirty {
		f.recompute()
	}
}

func (f *FilterBank) recompute() {
	q := ResonanceToQ(f.settings.Resonance)
	fc := f.settings.CutoffHz

	var c biquad.Coefficients
	switch f.settings.Mode {
	case ModeHighPass:
		c = biquad.Highpass(fc, q, f.sampleRate)
	case ModeBandPass:
		c = biquad.Bandpass(fc, q, f.sampleRate)
	case ModeNotch:
		c = biquad.Notch(fc, q, f.sampleRate)
	default:
		c = biquad.Lowpass(fc, q, f.sampleRate)
	}
	f.section.Coefficients = c
	f.dirty = false
}

func (f *FilterBank) sanitize(s Settings) Settings {
	maxCutoff := maxCutoffRatio * f.sampleRate
	s.CutoffHz = core.Limit(s.CutoffHz, minCutoffHz, maxCutoff, core.Clamp(defaultCutoffHz, minCutoffHz, maxCutoff))
	s.Resonance = core.Sanitize(s.Resonance, 0, 1, defaultResonance)
	if !s.Mode.Valid() {
		s.Mode = ModeLowPass
	}
	return s
}
