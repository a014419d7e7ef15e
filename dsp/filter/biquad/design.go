package biquad

import "math"

const defaultQ = 1 / math.Sqrt2

// Lowpass designs an RBJ low-pass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	cw, alpha, ok := prewarp(freq, q, sampleRate)
	if !ok {
		return Coefficients{}
	}

	b1 := 1 - cw
	return normalize(b1/2, b1, b1/2, 1+alpha, -2*cw, 1-alpha)
}

// Highpass designs an RBJ high-pass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) Coefficients {
	cw, alpha, ok := prewarp(freq, q, sampleRate)
	if !ok {
		return Coefficients{}
	}

	b1 := 1 + cw
	return normalize(b1/2, -b1, b1/2, 1+alpha, -2*cw, 1-alpha)
}

// Bandpass designs an RBJ band-pass biquad with constant 0 dB peak gain,
// so a sinusoid at freq passes with unit amplitude regardless of q.
// B1 is always zero and B2 is always -B0.
func Bandpass(freq, q, sampleRate float64) Coefficients {
	cw, alpha, ok := prewarp(freq, q, sampleRate)
	if !ok {
		return Coefficients{}
	}

	return normalize(alpha, 0, -alpha, 1+alpha, -2*cw, 1-alpha)
}

// Notch designs an RBJ notch biquad centered at freq (Hz).
func Notch(freq, q, sampleRate float64) Coefficients {
	cw, alpha, ok := prewarp(freq, q, sampleRate)
	if !ok {
		return Coefficients{}
	}

	return normalize(1, -2*cw, 1, 1+alpha, -2*cw, 1-alpha)
}

// prewarp returns cos(w0) and alpha = sin(w0)/(2q). ok is false when freq
// is not strictly between 0 and Nyquist.
func prewarp(freq, q, sampleRate float64) (cw, alpha float64, ok bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, 0, false
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = defaultQ
	}

	w0 := 2 * math.Pi * freq / sampleRate
	sw, cw := math.Sincos(w0)

	return cw, sw / (2 * q), true
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return Coefficients{}
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
