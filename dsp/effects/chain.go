package effects

import (
	"fmt"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/smooth"
)

const (
	defaultChainStages    = 3
	defaultMasterLevel    = 0.8
	maxMasterLevel        = 2.0
	masterGainRampSeconds = 0.02
)

// Settings is the per-block parameter set of a Chain, after modulation.
type Settings struct {
	Saturation    float64
	ChorusMix     float64
	DelayTime     float64 // seconds
	DelayFeedback float64
	DelayMix      float64
	ReverbMix     float64
	MasterLevel   float64
}

// DefaultSettings returns a dry chain at the default master level.
func DefaultSettings() Settings {
	return Settings{
		DelayTime:     defaultDelayTimeSeconds,
		DelayFeedback: defaultDelayFeedback,
		MasterLevel:   defaultMasterLevel,
	}
}

// Chain applies saturation, chorus, delay, reverb and master gain in a
// fixed order. It is owned by the audio goroutine.
type Chain struct {
	Saturation *Saturation
	Chorus     *Chorus
	Delay      *Delay
	Reverb     *Reverb

	master   smooth.Linear
	settings Settings
}

// NewChain builds a chain for sampleRate with DefaultSettings applied.
func NewChain(sampleRate float64) (*Chain, error) {
	chorus, err := NewChorus(sampleRate, defaultChainStages)
	if err != nil {
		return nil, fmt.Errorf("effects chain: %w", err)
	}
	delay, err := NewDelay(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("effects chain: %w", err)
	}
	reverb, err := NewReverb(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("effects chain: %w", err)
	}

	c := &Chain{
		Saturation: NewSaturation(),
		Chorus:     chorus,
		Delay:      delay,
		Reverb:     reverb,
	}
	c.master.Reset(sampleRate, masterGainRampSeconds)
	c.SetSettings(DefaultSettings())
	c.master.SetCurrentAndTarget(c.settings.MasterLevel)
	return c, nil
}

// SetSettings applies a parameter set. The master level ramps to its new
// value; every other parameter takes effect on the next sample.
func (c *Chain) SetSettings(s Settings) {
	c.Saturation.SetAmount(s.Saturation)
	c.Chorus.SetMix(s.ChorusMix)
	c.Delay.SetTime(s.DelayTime)
	c.Delay.SetFeedback(s.DelayFeedback)
	c.Delay.SetMix(s.DelayMix)
	c.Reverb.SetMix(s.ReverbMix)

	s.MasterLevel = core.Sanitize(s.MasterLevel, 0, maxMasterLevel, defaultMasterLevel)
	c.master.SetTarget(s.MasterLevel)

	c.settings = Settings{
		Saturation:    c.Saturation.Amount(),
		ChorusMix:     c.Chorus.Mix(),
		DelayTime:     c.Delay.Time(),
		DelayFeedback: c.Delay.Feedback(),
		DelayMix:      c.Delay.Mix(),
		ReverbMix:     c.Reverb.Mix(),
		MasterLevel:   s.MasterLevel,
	}
}

// Settings returns the clamped settings last applied.
func (c *Chain) Settings() Settings { return c.settings }

// MasterGain returns the current, possibly ramping, master gain.
func (c *Chain) MasterGain() float64 { return c.master.Current() }

// Reset clears every effect's memory and snaps the master gain to target.
func (c *Chain) Reset() {
	c.Chorus.Reset()
	c.Delay.Reset()
	c.Reverb.Reset()
	c.master.SetCurrentAndTarget(c.master.Target())
}

// Process runs buf through the chain in place.
func (c *Chain) Process(buf []float64) {
	c.Saturation.ProcessInPlace(buf)
	c.Chorus.ProcessInPlace(buf)
	c.Delay.ProcessInPlace(buf)
	c.Reverb.ProcessInPlace(buf)
	for i := range buf {
		buf[i] *= c.master.Next()
	}
}
