//go:build amd64 && !purego

package lanes4

import (
	"github.com/cwbudde/algo-morph/synth/resonator/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:          "lanes4",
		SIMDLevel:     cpu.SIMDSSE2,
		Priority:      10,
		ProcessSample: ProcessSample,
	})
}
