package engine

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-morph/synth/model"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
)

// atomicFloat is a float64 stored as its IEEE-754 bits.
type atomicFloat struct{ bits atomic.Uint64 }

func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }

// telemetry is written by the audio goroutine after each block and read
// by any goroutine. Values within one getter may come from adjacent
// blocks.
type telemetry struct {
	partials  [model.NumPartials]atomicFloat
	lfo       [2]atomicFloat
	envelopes [MaxVoices]atomicFloat
	mod       [modmatrix.NumDestinations]atomicFloat
	active    atomic.Int32
}

func (e *Engine) publishTelemetry() {
	t := &e.telemetry

	var amps [model.NumPartials]float64
	e.voices[e.lastVoice].PartialAmplitudes(&amps)
	for i, a := range amps {
		t.partials[i].Store(a)
	}

	lfo := e.lfos.Values()
	t.lfo[0].Store(lfo[0])
	t.lfo[1].Store(lfo[1])

	active := 0
	for i, v := range e.voices {
		level := 0.0
		if i < e.limit && v.IsActive() {
			level = v.EnvelopeLevel()
			active++
		}
		t.envelopes[i].Store(level)
	}
	t.active.Store(int32(active))

	for i, m := range e.totals {
		t.mod[i].Store(m)
	}
}

// PartialAmplitudes copies the partial amplitudes of the most recently
// triggered voice into dst.
func (e *Engine) PartialAmplitudes(dst *[model.NumPartials]float64) {
	for i := range dst {
		dst[i] = e.telemetry.partials[i].Load()
	}
}

// LFOValues returns both LFO outputs at the start of the last block.
func (e *Engine) LFOValues() [2]float64 {
	return [2]float64{e.telemetry.lfo[0].Load(), e.telemetry.lfo[1].Load()}
}

// EnvelopeLevels copies the amplitude envelope level of every pool slot
// into dst. Idle slots read 0.
func (e *Engine) EnvelopeLevels(dst *[MaxVoices]float64) {
	for i := range dst {
		dst[i] = e.telemetry.envelopes[i].Load()
	}
}

// ModulationTotals copies the summed route contributions per destination
// into dst, evaluated with channel-1 sources.
func (e *Engine) ModulationTotals(dst *modmatrix.Accumulators) {
	for i := range dst {
		dst[i] = e.telemetry.mod[i].Load()
	}
}

// ActiveVoices returns the number of voices still sounding after the last
// block.
func (e *Engine) ActiveVoices() int { return int(e.telemetry.active.Load()) }
