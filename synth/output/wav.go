package output

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/cwbudde/algo-morph/synth/engine"
	"github.com/cwbudde/algo-morph/synth/midi"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// DefaultTail is the time rendered after the last note ends.
const DefaultTail = 2 * time.Second

// Note is one scheduled note of an offline render.
type Note struct {
	Key      int
	Channel  int
	Velocity int // 1..127
	Start    time.Duration
	Length   time.Duration
}

type timedEvent struct {
	at  int
	msg midi.Message
}

// Render plays notes through e offline and returns the mono output,
// lasting until tail after the last note-off.
func Render(e *engine.Engine, tail time.Duration, notes ...Note) []float64 {
	sr := e.SampleRate()
	toSamples := func(d time.Duration) int { return int(d.Seconds()*sr + 0.5) }

	var (
		timeline = make([]timedEvent, 0, 2*len(notes))
		end      int
	)
	for _, n := range notes {
		on, off := toSamples(n.Start), toSamples(n.Start+n.Length)
		vel := min(max(n.Velocity, 1), 127)
		timeline = append(timeline,
			timedEvent{on, midi.NoteOn(n.Channel, n.Key, vel)},
			timedEvent{off, midi.NoteOff(n.Channel, n.Key)})
		end = max(end, off)
	}
	slices.SortStableFunc(timeline, func(a, b timedEvent) int { return cmp.Compare(a.at, b.at) })

	total := end + toSamples(tail)
	out := make([]float64, total)
	bs := e.BlockSize()
	var events []midi.Event
	for start := 0; start < total; start += bs {
		stop := min(start+bs, total)
		events = events[:0]
		for len(timeline) > 0 && timeline[0].at < stop {
			events = append(events, midi.Event{Offset: timeline[0].at - start, Msg: timeline[0].msg})
			timeline = timeline[1:]
		}
		e.RenderNextBlock(out[start:stop], events)
	}
	return out
}

// RenderWAV renders notes through e with DefaultTail and writes a 16-bit
// mono WAV file to w.
func RenderWAV(w io.WriteSeeker, e *engine.Engine, notes ...Note) error {
	return EncodeWAV(w, Render(e, DefaultTail, notes...), e.SampleRate())
}

// EncodeWAV writes mono samples as a 16-bit WAV file.
func EncodeWAV(w io.WriteSeeker, samples []float64, sampleRate float64) error {
	pos := 0
	src := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copy2(buf, samples[pos:])
		pos += n
		return n, true
	})
	format := beep.Format{
		SampleRate:  beep.SampleRate(int(sampleRate + 0.5)),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(w, src, format); err != nil {
		return fmt.Errorf("output: encode wav: %w", err)
	}
	return nil
}
