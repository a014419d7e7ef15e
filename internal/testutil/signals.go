package testutil

import "math"

// RenderBlocks calls render on consecutive blocks of at most block samples
// until total samples are produced, and returns them concatenated.
func RenderBlocks(total, block int, render func(out []float64)) []float64 {
	out := make([]float64, total)
	if block <= 0 {
		block = total
	}
	for start := 0; start < total; start += block {
		render(out[start:min(start+block, total)])
	}
	return out
}

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Peak returns the largest absolute sample value.
func Peak(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		peak = max(peak, math.Abs(v))
	}
	return peak
}
