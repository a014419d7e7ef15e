// Package effects provides the global effects chain applied to the summed
// voice bus: saturation, chorus, delay, reverb and a smoothed master gain,
// always in that order.
//
// Every effect allocates its delay memory up front for the largest setting
// it accepts, so parameter changes and processing never allocate. Audio-rate
// setters clamp out-of-range input instead of returning errors.
package effects
