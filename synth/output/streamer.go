// Package output connects an Engine to audio sinks: a beep.Streamer for
// live playback and an offline WAV renderer.
package output

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-morph/synth/engine"
	"github.com/cwbudde/algo-morph/synth/midi"
	"github.com/cwbudde/algo-vecmath"
	"github.com/gopxl/beep"
)

// DefaultInboxSize is the MIDI queue depth of a Streamer.
const DefaultInboxSize = 1024

var _ beep.Streamer = (*Streamer)(nil)

// Streamer renders an Engine block by block on demand. MIDI from other
// goroutines is queued with Send and applied at the start of the next
// engine block.
type Streamer struct {
	engine *engine.Engine
	inbox  chan midi.Message

	block  []float64
	scaled []float64
	events []midi.Event
	pos    int

	gain    atomic.Uint64 // float64 bits
	stopped atomic.Bool
}

// NewStreamer wraps e. inboxSize <= 0 selects DefaultInboxSize.
func NewStreamer(e *engine.Engine, inboxSize int) *Streamer {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	n := e.BlockSize()
	s := &Streamer{
		engine: e,
		inbox:  make(chan midi.Message, inboxSize),
		block:  make([]float64, n),
		scaled: make([]float64, n),
		events: make([]midi.Event, 0, inboxSize),
		pos:    n,
	}
	s.SetGain(1)
	return s
}

// Send queues msg without blocking. It reports false when the queue is
// full and the message was dropped.
func (s *Streamer) Send(msg midi.Message) bool {
	select {
	case s.inbox <- msg:
		return true
	default:
		return false
	}
}

// SetGain sets a linear output trim applied after the engine. Safe for
// concurrent use.
func (s *Streamer) SetGain(g float64) {
	if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		return
	}
	s.gain.Store(math.Float64bits(g))
}

// Stop makes the next Stream call report the end of the stream.
func (s *Streamer) Stop() { s.stopped.Store(true) }

// Stream implements beep.Streamer with the mono engine output on both
// channels.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.stopped.Load() {
		return 0, false
	}
	for n < len(samples) {
		if s.pos == len(s.block) {
			s.renderBlock()
		}
		k := copy2(samples[n:], s.scaled[s.pos:])
		s.pos += k
		n += k
	}
	return n, true
}

// Err implements beep.Streamer.
func (s *Streamer) Err() error { return nil }

func (s *Streamer) renderBlock() {
	s.events = s.events[:0]
drain:
	for len(s.events) < cap(s.events) {
		select {
		case msg := <-s.inbox:
			s.events = append(s.events, midi.Event{Msg: msg})
		default:
			break drain
		}
	}
	s.engine.RenderNextBlock(s.block, s.events)
	vecmath.ScaleBlock(s.scaled, s.block, math.Float64frombits(s.gain.Load()))
	s.pos = 0
}

func copy2(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = [2]float64{src[i], src[i]}
	}
	return n
}
