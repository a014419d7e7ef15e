package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Sanitize clamps value to [min, max] and substitutes def when value is
// NaN or infinite. Out-of-range values trip a debug assertion.
func Sanitize(value, min, max, def float64) float64 {
	if !IsFinite(value) {
		Assertf(false, "non-finite parameter %v, using default %v", value, def)
		return Clamp(def, min, max)
	}

	if value < min || value > max {
		Assertf(false, "parameter %v outside [%v, %v]", value, min, max)
		return Clamp(value, min, max)
	}

	return value
}

// Limit is Sanitize without the debug assertion, for values derived on the
// render path where overshooting the range is expected.
func Limit(value, min, max, def float64) float64 {
	if !IsFinite(value) {
		return Clamp(def, min, max)
	}
	return Clamp(value, min, max)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in recursive filters.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Bilerp interpolates across the corners of a unit square:
// a=(0,0), b=(1,0), c=(0,1), d=(1,1).
func Bilerp(a, b, c, d, x, y float64) float64 {
	return Lerp(Lerp(a, b, x), Lerp(c, d, x), y)
}

// MIDINoteToHz converts a (possibly fractional) MIDI note number to
// equal-tempered frequency with A4 (note 69) at 440 Hz.
func MIDINoteToHz(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

// SemitonesToRatio converts a pitch offset in semitones to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}
