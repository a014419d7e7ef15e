package effects

import "errors"

// ErrInvalidSampleRate is returned by constructors given a sample rate that
// is not a positive finite number.
var ErrInvalidSampleRate = errors.New("effects: sample rate must be > 0")
