// Package analysis measures rendered audio in the frequency domain. It is
// used offline by tests and the CLI, never on the render path.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrTooShort is returned for inputs with fewer than two samples.
var ErrTooShort = errors.New("analysis: need at least 2 samples")

// Spectrum holds the one-sided magnitude spectrum of a Hann-windowed
// signal, zero-padded to a power-of-two length.
type Spectrum struct {
	Magnitudes []float64 // bins 0..N/2
	BinHz      float64
	Size       int
}

// Analyze windows samples, transforms them and returns the magnitude of
// each non-negative frequency bin.
func Analyze(samples []float64, sampleRate float64) (Spectrum, error) {
	if len(samples) < 2 {
		return Spectrum{}, ErrTooShort
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Spectrum{}, fmt.Errorf("analysis: sample rate must be > 0: %f", sampleRate)
	}

	n := 1 << bits.Len(uint(len(samples)-1))

	windowed := make([]float64, len(samples))
	copy(windowed, samples)
	vecmath.MulBlockInPlace(windowed, hann(len(samples)))

	in := make([]complex128, n)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Spectrum{}, fmt.Errorf("analysis: fft plan (%d): %w", n, err)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return Spectrum{}, fmt.Errorf("analysis: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := 0; k < bins; k++ {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}
	mags := make([]float64, bins)
	vecmath.Magnitude(mags, re, im)

	return Spectrum{
		Magnitudes: mags,
		BinHz:      sampleRate / float64(n),
		Size:       n,
	}, nil
}

// Peak returns the index and magnitude of the strongest bin, ignoring DC.
func (s Spectrum) Peak() (bin int, mag float64) {
	for k := 1; k < len(s.Magnitudes); k++ {
		if s.Magnitudes[k] > mag {
			bin, mag = k, s.Magnitudes[k]
		}
	}
	return bin, mag
}

// PeakFrequency returns the strongest frequency, refined by parabolic
// interpolation across the neighboring bins.
func (s Spectrum) PeakFrequency() float64 {
	k, _ := s.Peak()
	if k <= 0 || k >= len(s.Magnitudes)-1 {
		return float64(k) * s.BinHz
	}
	a, b, c := s.Magnitudes[k-1], s.Magnitudes[k], s.Magnitudes[k+1]
	den := a - 2*b + c
	if den == 0 {
		return float64(k) * s.BinHz
	}
	return (float64(k) + 0.5*(a-c)/den) * s.BinHz
}

// PeakEnergyRatio returns the fraction of spectral energy within ±width
// bins of the peak. A clean sinusoid under a Hann window scores close to 1
// with width 2.
func (s Spectrum) PeakEnergyRatio(width int) float64 {
	k, _ := s.Peak()
	var total, near float64
	for i, m := range s.Magnitudes {
		e := m * m
		total += e
		if i >= k-width && i <= k+width {
			near += e
		}
	}
	if total == 0 {
		return 0
	}
	return near / total
}

// DominantFrequency returns the strongest frequency in samples.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	s, err := Analyze(samples, sampleRate)
	if err != nil {
		return 0, err
	}
	return s.PeakFrequency(), nil
}

// RMS returns the root-mean-square level of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
