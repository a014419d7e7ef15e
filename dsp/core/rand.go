package core

// Xorshift32 is a tiny allocation-free PRNG for per-sample noise and jitter.
// Identical seeds produce identical sequences.
type Xorshift32 struct {
	state uint32
}

// NewXorshift32 returns a generator seeded with seed (0 is mapped to 1).
func NewXorshift32(seed uint32) Xorshift32 {
	var x Xorshift32
	x.Seed(seed)
	return x
}

// Seed resets the generator state.
func (x *Xorshift32) Seed(seed uint32) {
	if seed == 0 {
		seed = 1
	}
	x.state = seed
}

// Uint32 returns the next raw value.
func (x *Xorshift32) Uint32() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

// Float64 returns a value uniformly distributed in [0, 1).
func (x *Xorshift32) Float64() float64 {
	return float64(x.Uint32()) * (1.0 / 4294967296.0)
}

// Bipolar returns a value uniformly distributed in [-1, 1).
func (x *Xorshift32) Bipolar() float64 {
	return x.Float64()*2 - 1
}
