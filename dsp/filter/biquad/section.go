package biquad

import "math"

// Coefficients of one normalized second-order section (a0 = 1):
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// IsStable reports whether both poles are inside the unit circle.
func (c Coefficients) IsStable() bool {
	if math.IsNaN(c.A1) || math.IsNaN(c.A2) {
		return false
	}
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// Section runs Coefficients in transposed direct form II. The zero value
// is a silent filter; assign Coefficients before use.
type Section struct {
	Coefficients

	s1, s2 float64
}

// NewSection returns a Section with cleared state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters x.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.s1
	s.s1 = s.B1*x - s.A1*y + s.s2
	s.s2 = s.B2*x - s.A2*y
	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.Coefficients
	s1, s2 := s.s1, s.s2
	for i, x := range buf {
		y := c.B0*x + s1
		s1 = c.B1*x - c.A1*y + s2
		s2 = c.B2*x - c.A2*y
		buf[i] = y
	}
	s.s1, s.s2 = s1, s2
}

// Reset clears the state.
func (s *Section) Reset() { s.s1, s.s2 = 0, 0 }

// State returns the two state variables.
func (s *Section) State() [2]float64 { return [2]float64{s.s1, s.s2} }
