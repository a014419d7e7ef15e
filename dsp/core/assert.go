//go:build !synthdebug

package core

const debugAssertions = false

// Assertf is a no-op in production builds. Build with -tags synthdebug to
// turn failed assertions into panics.
func Assertf(bool, string, ...any) {}
