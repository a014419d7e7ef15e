// Package smooth provides linear parameter ramps that remove zipper noise
// from control changes.
package smooth

import "github.com/cwbudde/algo-morph/dsp/core"

// DefaultRampSeconds is the ramp length used by New.
const DefaultRampSeconds = 0.02

// Linear ramps from its current value to a target in a fixed number of
// samples. A new target restarts the ramp from wherever it currently is.
type Linear struct {
	current float64
	target  float64
	step    float64

	rampSamples int
	remaining   int
}

// New returns a smoother resting at value with the default ramp length.
func New(sampleRate, value float64) Linear {
	var s Linear
	s.Reset(sampleRate, DefaultRampSeconds)
	s.SetCurrentAndTarget(value)
	return s
}

// Reset sets the ramp length and stops any ramp in progress at its target.
func (s *Linear) Reset(sampleRate, rampSeconds float64) {
	n := 0
	if core.IsFinite(sampleRate) && core.IsFinite(rampSeconds) && sampleRate > 0 && rampSeconds > 0 {
		n = int(sampleRate*rampSeconds + 0.5)
	}
	s.rampSamples = n
	s.current = s.target
	s.remaining = 0
}

// SetTarget starts a ramp toward target. Non-finite targets are ignored.
func (s *Linear) SetTarget(target float64) {
	if !core.IsFinite(target) || target == s.target {
		return
	}
	s.target = target
	if s.rampSamples == 0 {
		s.current = target
		s.remaining = 0
		return
	}
	s.remaining = s.rampSamples
	s.step = (target - s.current) / float64(s.rampSamples)
}

// SetCurrentAndTarget jumps to value without ramping.
func (s *Linear) SetCurrentAndTarget(value float64) {
	if !core.IsFinite(value) {
		return
	}
	s.current = value
	s.target = value
	s.remaining = 0
}

// Next advances one sample and returns the new value.
func (s *Linear) Next() float64 {
	if s.remaining == 0 {
		return s.target
	}
	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Skip advances n samples at once and returns the value after the last one.
func (s *Linear) Skip(n int) float64 {
	if n <= 0 || s.remaining == 0 {
		return s.current
	}
	if n >= s.remaining {
		s.remaining = 0
		s.current = s.target
		return s.current
	}
	s.remaining -= n
	s.current += s.step * float64(n)
	return s.current
}

// Current returns the most recent output.
func (s *Linear) Current() float64 { return s.current }

// Target returns the value being ramped toward.
func (s *Linear) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Linear) IsSmoothing() bool { return s.remaining > 0 }
