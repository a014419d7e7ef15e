package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/smooth"
)

const (
	defaultDelayTimeSeconds = 0.25
	defaultDelayFeedback    = 0.35
	minDelayTimeSeconds     = 0.001
	maxDelayTimeSeconds     = 2.0
	maxDelayFeedback        = 0.95
	delayTimeRampSeconds    = 0.05
)

// Delay is a feedback delay with dry/wet mix. The delay time glides to new
// settings and is read with linear interpolation, so modulating it produces
// a pitch bend rather than clicks.
type Delay struct {
	sampleRate float64
	feedback   float64
	mix        float64
	time       float64

	delaySamples smooth.Linear

	buffer []float64
	write  int
}

// NewDelay creates a delay whose buffer holds the maximum delay time.
func NewDelay(sampleRate float64) (*Delay, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("delay: %w: %f", ErrInvalidSampleRate, sampleRate)
	}

	d := &Delay{
		sampleRate: sampleRate,
		feedback:   defaultDelayFeedback,
		time:       defaultDelayTimeSeconds,
		buffer:     make([]float64, int(math.Ceil(maxDelayTimeSeconds*sampleRate))+2),
	}
	d.delaySamples.Reset(sampleRate, delayTimeRampSeconds)
	d.delaySamples.SetCurrentAndTarget(d.time * sampleRate)
	return d, nil
}

// SetTime sets the delay time in seconds, clamped to [0.001, 2].
func (d *Delay) SetTime(seconds float64) {
	d.time = core.Sanitize(seconds, minDelayTimeSeconds, maxDelayTimeSeconds, defaultDelayTimeSeconds)
	d.delaySamples.SetTarget(d.time * d.sampleRate)
}

// SetFeedback sets the feedback amount, clamped to [0, 0.95].
func (d *Delay) SetFeedback(feedback float64) {
	d.feedback = core.Sanitize(feedback, 0, maxDelayFeedback, defaultDelayFeedback)
}

// SetMix sets the wet amount, clamped to [0, 1].
func (d *Delay) SetMix(mix float64) {
	d.mix = core.Sanitize(mix, 0, 1, 0)
}

// Time returns the target delay time in seconds.
func (d *Delay) Time() float64 { return d.time }

// Feedback returns the feedback amount.
func (d *Delay) Feedback() float64 { return d.feedback }

// Mix returns the wet amount.
func (d *Delay) Mix() float64 { return d.mix }

// Reset clears the delay line and snaps the delay time to its target.
func (d *Delay) Reset() {
	core.Zero(d.buffer)
	d.write = 0
	d.delaySamples.SetCurrentAndTarget(d.time * d.sampleRate)
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(input float64) float64 {
	delayed := d.read(d.delaySamples.Next())

	d.buffer[d.write] = core.FlushDenormals(input + delayed*d.feedback)
	d.write++
	if d.write >= len(d.buffer) {
		d.write = 0
	}

	return input*(1-d.mix) + delayed*d.mix
}

// ProcessInPlace applies the delay to buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

func (d *Delay) read(delay float64) float64 {
	n := len(d.buffer)
	p := int(delay)
	t := delay - float64(p)

	i0 := d.write - p
	if i0 < 0 {
		i0 += n
	}
	i1 := i0 - 1
	if i1 < 0 {
		i1 += n
	}
	return d.buffer[i0]*(1-t) + d.buffer[i1]*t
}
