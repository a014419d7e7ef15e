//go:build amd64 && !purego

package resonator

import (
	_ "github.com/cwbudde/algo-morph/synth/resonator/internal/arch/generic" // register generic backend
	_ "github.com/cwbudde/algo-morph/synth/resonator/internal/arch/lanes4"  // register 4-lane backend
)
