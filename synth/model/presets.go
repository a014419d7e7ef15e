package model

import (
	"fmt"
	"sort"
)

// Sine returns a model with only the fundamental.
func Sine() SpectralModel {
	m := SpectralModel{Name: "sine", Description: "fundamental only", Valid: true}
	m.Amplitudes[0] = 1
	return m
}

// Sawtooth returns a model with every harmonic at amplitude 1/n.
func Sawtooth() SpectralModel {
	m := SpectralModel{Name: "saw", Description: "all harmonics, 1/n", Valid: true}
	for i := range m.Amplitudes {
		m.Amplitudes[i] = 1 / float64(i+1)
	}
	return m
}

// Square returns a model with odd harmonics at amplitude 1/n.
func Square() SpectralModel {
	m := SpectralModel{Name: "square", Description: "odd harmonics, 1/n", Valid: true}
	for i := 0; i < NumPartials; i += 2 {
		m.Amplitudes[i] = 1 / float64(i+1)
	}
	return m
}

// Triangle returns a model with odd harmonics at amplitude 1/n².
func Triangle() SpectralModel {
	m := SpectralModel{Name: "triangle", Description: "odd harmonics, 1/n^2", Valid: true}
	for i := 0; i < NumPartials; i += 2 {
		n := float64(i + 1)
		m.Amplitudes[i] = 1 / (n * n)
	}
	return m
}

// Bell returns an inharmonic model with decaying, detuned upper partials.
func Bell() SpectralModel {
	m := SpectralModel{Name: "bell", Description: "sparse detuned partials", Valid: true}
	for _, p := range []struct {
		idx    int
		amp    float64
		offset float64
	}{
		{0, 1, 0},
		{1, 0.6, 7},
		{2, 0.45, -11},
		{4, 0.3, 23},
		{6, 0.2, -31},
		{9, 0.12, 47},
	} {
		m.Amplitudes[p.idx] = p.amp
		m.FrequencyOffsets[p.idx] = p.offset
	}
	return m
}

var presets = map[string]func() SpectralModel{
	"sine":     Sine,
	"saw":      Sawtooth,
	"square":   Square,
	"triangle": Triangle,
	"bell":     Bell,
}

// Preset returns the built-in model called name.
func Preset(name string) (SpectralModel, error) {
	fn, ok := presets[name]
	if !ok {
		return SpectralModel{}, fmt.Errorf("model: unknown preset %q", name)
	}
	return fn(), nil
}

// PresetNames lists the built-in models in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
