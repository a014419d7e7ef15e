// Package lanes4 provides a resonator-bank kernel that advances four
// filters per iteration with independent accumulators, letting the
// compiler keep each lane's state in registers.
package lanes4

import "github.com/cwbudde/algo-morph/synth/resonator/internal/arch/registry"

// ProcessSample advances n lanes, four at a time.
func ProcessSample(l *registry.Lanes, x float64, n int) float64 {
	var s0, s1, s2, s3 float64
	for i := 0; i+3 < n; i += 4 {
		b0 := l.B0[i : i+4 : i+4]
		b2 := l.B2[i : i+4 : i+4]
		a1 := l.A1[i : i+4 : i+4]
		a2 := l.A2[i : i+4 : i+4]
		z1 := l.Z1[i : i+4 : i+4]
		z2 := l.Z2[i : i+4 : i+4]
		g := l.Gain[i : i+4 : i+4]

		y0 := b0[0]*x + z1[0]
		y1 := b0[1]*x + z1[1]
		y2 := b0[2]*x + z1[2]
		y3 := b0[3]*x + z1[3]

		z1[0] = z2[0] - a1[0]*y0
		z1[1] = z2[1] - a1[1]*y1
		z1[2] = z2[2] - a1[2]*y2
		z1[3] = z2[3] - a1[3]*y3

		z2[0] = b2[0]*x - a2[0]*y0
		z2[1] = b2[1]*x - a2[1]*y1
		z2[2] = b2[2]*x - a2[2]*y2
		z2[3] = b2[3]*x - a2[3]*y3

		s0 += g[0] * y0
		s1 += g[1] * y1
		s2 += g[2] * y2
		s3 += g[3] * y3
	}
	return (s0 + s1) + (s2 + s3)
}
