// Package biquad provides the second-order IIR primitives shared by the
// multi-mode voice filter and the resonator bank.
//
// A [Section] implements Direct Form II Transposed processing for one set of
// [Coefficients]. Design helpers compute RBJ cookbook coefficients for
// low-pass, high-pass, band-pass (constant 0 dB peak) and notch responses.
package biquad
