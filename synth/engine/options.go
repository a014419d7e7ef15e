package engine

import (
	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/synth/model"
)

// Option configures an Engine at construction.
type Option func(*config)

type config struct {
	core.ProcessorConfig
	polyphony int
	models    []model.SpectralModel
}

func defaultConfig() config {
	return config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		polyphony:       DefaultPolyphony,
	}
}

// WithProcessor applies sample rate, block size and seed options.
func WithProcessor(opts ...core.ProcessorOption) Option {
	return func(c *config) {
		for _, opt := range opts {
			if opt != nil {
				opt(&c.ProcessorConfig)
			}
		}
	}
}

// WithPolyphony sets the initial active-voice limit, clamped to
// [1, MaxVoices].
func WithPolyphony(n int) Option {
	return func(c *config) { c.polyphony = clampPolyphony(n) }
}

// WithModels loads models into morph slots 0..3 in order. Extra models
// are ignored.
func WithModels(models ...model.SpectralModel) Option {
	return func(c *config) {
		c.models = append(c.models[:0], models[:min(len(models), NumSlots)]...)
	}
}

func clampPolyphony(n int) int {
	return min(max(n, 1), MaxVoices)
}
