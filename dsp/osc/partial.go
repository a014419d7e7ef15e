// Package osc provides the phase-accumulator oscillator used as the building
// block of the additive resonator.
package osc

import "math"

// Partial is a single sinusoidal partial driven by a normalized phase
// accumulator. The zero value is silent until a sample rate and frequency
// are set.
type Partial struct {
	sampleRate float64
	freq       float64
	inc        float64
	phase      float64 // cycles in [0, 1)
}

// NewPartial returns a partial at freq Hz.
func NewPartial(sampleRate, freq float64) *Partial {
	p := &Partial{}
	p.SetSampleRate(sampleRate)
	p.SetFrequency(freq)
	return p
}

// SetSampleRate updates the sample rate and recomputes the phase increment.
func (p *Partial) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return
	}
	p.sampleRate = sampleRate
	p.updateIncrement()
}

// SetFrequency sets the oscillator frequency in Hz. Non-finite or negative
// values park the oscillator at 0 Hz.
func (p *Partial) SetFrequency(freq float64) {
	if freq < 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		freq = 0
	}
	p.freq = freq
	p.updateIncrement()
}

// Frequency returns the oscillator frequency in Hz.
func (p *Partial) Frequency() float64 { return p.freq }

// Phase returns the current phase in cycles, in [0, 1).
func (p *Partial) Phase() float64 { return p.phase }

// SetPhase sets the phase in cycles; the value is wrapped into [0, 1).
func (p *Partial) SetPhase(phase float64) {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		phase = 0
	}
	p.phase = phase - math.Floor(phase)
}

// Reset returns the phase to zero.
func (p *Partial) Reset() {
	p.phase = 0
}

// Process returns the next sample and advances the phase.
func (p *Partial) Process() float64 {
	y := math.Sin(2 * math.Pi * p.phase)
	p.advance()
	return y
}

// ProcessPM returns the next sample with the phase offset by pm cycles and
// advances the unmodulated phase.
func (p *Partial) ProcessPM(pm float64) float64 {
	y := math.Sin(2 * math.Pi * (p.phase + pm))
	p.advance()
	return y
}

func (p *Partial) advance() {
	p.phase += p.inc
	if p.phase >= 1 {
		p.phase -= math.Floor(p.phase)
	}
}

func (p *Partial) updateIncrement() {
	if p.sampleRate <= 0 {
		p.inc = 0
		return
	}
	p.inc = p.freq / p.sampleRate
}
