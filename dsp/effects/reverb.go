package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
)

const (
	reverbNumCombs     = 8
	reverbNumAllpasses = 4

	reverbInputGain = 0.015
	reverbWetScale  = 3.0

	// Comb and allpass lengths tuned at 44.1 kHz, scaled to the actual rate.
	reverbTuningRate = 44100.0

	defaultReverbRoomSize = 0.84
	defaultReverbDamp     = 0.2
	reverbAllpassFeedback = 0.5
)

var (
	reverbCombTuning    = [reverbNumCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTuning = [reverbNumAllpasses]int{556, 441, 341, 225}
)

// Reverb is a Schroeder/Freeverb-style mono reverb: eight damped feedback
// combs in parallel followed by four allpasses in series.
type Reverb struct {
	mix      float64
	roomSize float64
	damp     float64

	combs   [reverbNumCombs]reverbComb
	allpass [reverbNumAllpasses]reverbAllpass
}

type reverbAllpass struct {
	buffer []float64
	index  int
}

func (a *reverbAllpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	a.buffer[a.index] = input + bufOut*reverbAllpassFeedback
	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}
	return bufOut - input
}

type reverbComb struct {
	feedback    float64
	dampA       float64
	dampB       float64
	filterStore float64
	buffer      []float64
	index       int
}

func (c *reverbComb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = core.FlushDenormals(output*c.dampB + c.filterStore*c.dampA)
	c.buffer[c.index] = input + c.filterStore*c.feedback
	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}
	return output
}

// NewReverb constructs a reverb for sampleRate with a fully dry mix.
func NewReverb(sampleRate float64) (*Reverb, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("reverb: %w: %f", ErrInvalidSampleRate, sampleRate)
	}

	scale := sampleRate / reverbTuningRate
	r := &Reverb{}
	for i, n := range reverbCombTuning {
		r.combs[i].buffer = make([]float64, scaledLength(n, scale))
	}
	for i, n := range reverbAllpassTuning {
		r.allpass[i].buffer = make([]float64, scaledLength(n, scale))
	}
	r.SetRoomSize(defaultReverbRoomSize)
	r.SetDamp(defaultReverbDamp)
	return r, nil
}

func scaledLength(n int, scale float64) int {
	return max(1, int(math.Round(float64(n)*scale)))
}

// SetMix sets the wet/dry balance, clamped to [0, 1].
func (r *Reverb) SetMix(mix float64) {
	r.mix = core.Sanitize(mix, 0, 1, 0)
}

// SetRoomSize sets the comb feedback, clamped to [0, 0.98].
func (r *Reverb) SetRoomSize(v float64) {
	r.roomSize = core.Sanitize(v, 0, 0.98, defaultReverbRoomSize)
	for i := range r.combs {
		r.combs[i].feedback = r.roomSize
	}
}

// SetDamp sets high-frequency damping in the comb loops, clamped to [0, 1].
func (r *Reverb) SetDamp(v float64) {
	r.damp = core.Sanitize(v, 0, 1, defaultReverbDamp)
	for i := range r.combs {
		r.combs[i].dampA = r.damp
		r.combs[i].dampB = 1 - r.damp
	}
}

// Mix returns the wet/dry balance.
func (r *Reverb) Mix() float64 { return r.mix }

// RoomSize returns the comb feedback.
func (r *Reverb) RoomSize() float64 { return r.roomSize }

// Damp returns the comb damping.
func (r *Reverb) Damp() float64 { return r.damp }

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	for i := range r.combs {
		core.Zero(r.combs[i].buffer)
		r.combs[i].index = 0
		r.combs[i].filterStore = 0
	}
	for i := range r.allpass {
		core.Zero(r.allpass[i].buffer)
		r.allpass[i].index = 0
	}
}

// ProcessSample processes one sample.
func (r *Reverb) ProcessSample(input float64) float64 {
	x := reverbInputGain * input

	var acc float64
	for i := range r.combs {
		acc += r.combs[i].process(x)
	}
	for i := range r.allpass {
		acc = r.allpass[i].process(acc)
	}
	return acc*r.mix*reverbWetScale + input*(1-r.mix)
}

// ProcessInPlace applies the reverb to buf in place.
func (r *Reverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}
