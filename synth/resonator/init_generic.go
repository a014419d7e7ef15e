//go:build (!amd64 && !arm64) || purego

package resonator

import (
	_ "github.com/cwbudde/algo-morph/synth/resonator/internal/arch/generic"
)
