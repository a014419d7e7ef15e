package lfo

// Pair holds the two global LFOs of an engine. It is owned by the audio
// goroutine; settings reach it through each LFO's Publish.
type Pair struct {
	LFO1 *LFO
	LFO2 *LFO

	values [2]float64
}

// NewPair returns two LFOs with distinct sample-and-hold seeds derived from
// seed.
func NewPair(sampleRate float64, seed uint32) *Pair {
	p := &Pair{
		LFO1: New(sampleRate),
		LFO2: New(sampleRate),
	}
	p.SetSeed(seed)
	return p
}

// SetSampleRate updates both oscillators.
func (p *Pair) SetSampleRate(sampleRate float64) {
	p.LFO1.SetSampleRate(sampleRate)
	p.LFO2.SetSampleRate(sampleRate)
}

// SetSeed reseeds both oscillators.
func (p *Pair) SetSeed(seed uint32) {
	p.LFO1.SetSeed(seed)
	p.LFO2.SetSeed(seed*2654435761 + 1)
}

// SetSettings applies settings to both oscillators from the audio goroutine.
func (p *Pair) SetSettings(s1, s2 Settings) {
	p.LFO1.SetSettings(s1)
	p.LFO2.SetSettings(s2)
}

// ProcessBlock advances both oscillators by n samples and returns their
// values at the first sample of the block.
func (p *Pair) ProcessBlock(n int) [2]float64 {
	p.values[0] = p.LFO1.ProcessBlock(n)
	p.values[1] = p.LFO2.ProcessBlock(n)
	return p.values
}

// Values returns the values computed by the last ProcessBlock.
func (p *Pair) Values() [2]float64 { return p.values }

// Reset restarts both oscillators.
func (p *Pair) Reset() {
	p.LFO1.Reset()
	p.LFO2.Reset()
	p.values = [2]float64{}
}
