package effects

import (
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
)

const maxSaturationDrive = 20.0

// SaturationMode selects the transfer curve used by Saturation.
type SaturationMode int

const (
	SaturationTanh SaturationMode = iota
	SaturationSoftClip
	SaturationHardClip
)

// Saturation is a memoryless waveshaper. Amount 0 passes the input through
// untouched; amount 1 is fully wet at maximum drive.
type Saturation struct {
	mode   SaturationMode
	amount float64
	drive  float64
}

// NewSaturation returns a bypassed tanh saturator.
func NewSaturation() *Saturation {
	s := &Saturation{mode: SaturationTanh}
	s.SetAmount(0)
	return s
}

// SetMode selects the transfer curve. Unknown modes fall back to tanh.
func (s *Saturation) SetMode(mode SaturationMode) {
	if mode < SaturationTanh || mode > SaturationHardClip {
		mode = SaturationTanh
	}
	s.mode = mode
}

// SetAmount sets drive and wet mix together from one control in [0, 1].
func (s *Saturation) SetAmount(amount float64) {
	s.amount = core.Sanitize(amount, 0, 1, 0)
	s.drive = 1 + s.amount*(maxSaturationDrive-1)
}

// Amount returns the saturation amount in [0, 1].
func (s *Saturation) Amount() float64 { return s.amount }

// Mode returns the transfer curve.
func (s *Saturation) Mode() SaturationMode { return s.mode }

// ProcessSample shapes one sample.
func (s *Saturation) ProcessSample(x float64) float64 {
	if s.amount == 0 {
		return x
	}
	return x*(1-s.amount) + s.shape(x*s.drive)*s.amount
}

// ProcessInPlace shapes buf in place.
func (s *Saturation) ProcessInPlace(buf []float64) {
	if s.amount == 0 {
		return
	}
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}

func (s *Saturation) shape(x float64) float64 {
	switch s.mode {
	case SaturationSoftClip:
		if math.Abs(x) < 1 {
			return 1.5 * (x - x*x*x/3)
		}
		return math.Copysign(1, x)
	case SaturationHardClip:
		return core.Clamp(x, -1, 1)
	default:
		return math.Tanh(x)
	}
}
