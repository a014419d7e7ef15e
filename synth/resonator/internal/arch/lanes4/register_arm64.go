//go:build arm64 && !purego

package lanes4

import (
	"github.com/cwbudde/algo-morph/synth/resonator/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:          "lanes4",
		SIMDLevel:     cpu.SIMDNEON,
		Priority:      15,
		ProcessSample: ProcessSample,
	})
}
