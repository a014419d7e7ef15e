//go:build !fastmath

// Package fastmath provides the transcendental functions used on the render
// path. Builds with the fastmath tag swap in polynomial approximations.
package fastmath

import "math"

// Exp returns e**x.
func Exp(x float64) float64 {
	return math.Exp(x)
}

// Pow2 returns 2**x.
func Pow2(x float64) float64 {
	return math.Exp2(x)
}

// Sqrt returns the square root of x.
func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}
