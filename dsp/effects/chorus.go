package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
)

const (
	defaultChorusSpeedHz = 0.35
	defaultChorusDepth   = 0.02
	defaultChorusStages  = 3
	defaultChorusSeed    = 1
	maxChorusStages      = 8
)

// Chorus is a multi-tap modulated delay. Each tap is swept by its own sine
// LFO at a random fraction of the base speed.
type Chorus struct {
	sampleRate float64
	speedHz    float64
	depth      float64
	mix        float64

	lfos [maxChorusStages]chorusLFO
	n    int

	delayLine []float64
	write     int
	maxDelay  int
}

type chorusLFO struct {
	inc   float64
	phase float64
}

func (l *chorusLFO) process() float64 {
	y := math.Sin(2 * math.Pi * l.phase)
	l.phase += l.inc
	if l.phase >= 1 {
		l.phase--
	}
	return y
}

// NewChorus creates a chorus with the given number of taps (1..8).
// Speed and depth are fixed at construction so the delay line can be sized
// once; only the wet mix changes at run time.
func NewChorus(sampleRate float64, stages int) (*Chorus, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("chorus: %w: %f", ErrInvalidSampleRate, sampleRate)
	}
	if stages < 1 || stages > maxChorusStages {
		return nil, fmt.Errorf("chorus stages must be in [1, %d]: %d", maxChorusStages, stages)
	}

	c := &Chorus{
		sampleRate: sampleRate,
		speedHz:    defaultChorusSpeedHz,
		depth:      defaultChorusDepth,
		n:          stages,
	}

	c.maxDelay = int(math.Round(c.depth * c.sampleRate / c.speedHz))
	if c.maxDelay < 1 {
		c.maxDelay = 1
	}
	c.delayLine = make([]float64, c.maxDelay+4)

	rng := core.NewXorshift32(defaultChorusSeed)
	for i := 0; i < c.n; i++ {
		c.lfos[i].inc = (0.5 + 0.5*rng.Float64()) * c.speedHz / c.sampleRate
		c.lfos[i].phase = float64(i) / float64(c.n)
	}
	return c, nil
}

// SetMix sets the wet amount; out-of-range values are clamped to [0, 1].
func (c *Chorus) SetMix(mix float64) {
	c.mix = core.Sanitize(mix, 0, 1, 0)
}

// Mix returns the wet amount in [0, 1].
func (c *Chorus) Mix() float64 { return c.mix }

// Stages returns the number of modulated taps.
func (c *Chorus) Stages() int { return c.n }

// Reset clears the delay line and rewinds the LFOs.
func (c *Chorus) Reset() {
	core.Zero(c.delayLine)
	c.write = 0
	for i := 0; i < c.n; i++ {
		c.lfos[i].phase = float64(i) / float64(c.n)
	}
}

// ProcessSample processes one sample.
func (c *Chorus) ProcessSample(input float64) float64 {
	c.delayLine[c.write] = input
	c.write++
	if c.write >= len(c.delayLine) {
		c.write = 0
	}

	var wet float64
	for i := 0; i < c.n; i++ {
		delay := 0.5 * (1 - c.lfos[i].process()) * float64(c.maxDelay)
		wet += c.fractionalDelay(delay)
	}
	wet /= float64(c.n)

	return input*(1-c.mix) + wet*c.mix
}

// ProcessInPlace applies the chorus to buf in place.
func (c *Chorus) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

func (c *Chorus) fractionalDelay(delay float64) float64 {
	delay = core.Clamp(delay, 0, float64(c.maxDelay))

	p := int(delay)
	t := delay - float64(p)

	xm1 := c.tap(max(0, p-1))
	x0 := c.tap(p)
	x1 := c.tap(p + 1)
	x2 := c.tap(p + 2)
	return hermite4(t, xm1, x0, x1, x2)
}

func (c *Chorus) tap(delay int) float64 {
	idx := c.write - 1 - delay
	if idx < 0 {
		idx += len(c.delayLine)
	}
	return c.delayLine[idx]
}

func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
