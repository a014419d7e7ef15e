// Package generic provides the portable scalar resonator-bank kernel.
package generic

import (
	"github.com/cwbudde/algo-morph/synth/resonator/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:          "generic",
		SIMDLevel:     cpu.SIMDNone,
		Priority:      0,
		ProcessSample: ProcessSample,
	})
}

// ProcessSample advances one lane at a time.
func ProcessSample(l *registry.Lanes, x float64, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		y := l.B0[i]*x + l.Z1[i]
		l.Z1[i] = l.Z2[i] - l.A1[i]*y
		l.Z2[i] = l.B2[i]*x - l.A2[i]*y
		sum += l.Gain[i] * y
	}
	return sum
}
