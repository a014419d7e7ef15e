//go:build arm64 && !purego

package resonator

import (
	_ "github.com/cwbudde/algo-morph/synth/resonator/internal/arch/generic"
	_ "github.com/cwbudde/algo-morph/synth/resonator/internal/arch/lanes4"
)
