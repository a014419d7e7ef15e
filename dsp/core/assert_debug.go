//go:build synthdebug

package core

import "fmt"

const debugAssertions = true

// Assertf panics with a formatted message when cond is false.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("synth: assertion failed: "+format, args...))
	}
}
