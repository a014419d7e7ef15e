package engine

import (
	"github.com/cwbudde/algo-morph/synth/midi"
)

// ProcessMidi applies every event immediately, ignoring offsets.
func (e *Engine) ProcessMidi(events []midi.Event) {
	for _, ev := range events {
		e.HandleMidiMessage(ev.Msg)
	}
}

// HandleMidiMessage routes one channel voice message. Channel 1 (index 0)
// addresses every voice for bend, pressure and timbre, and its bend and
// pressure also become the current value of every other channel.
func (e *Engine) HandleMidiMessage(msg midi.Message) {
	ch := msg.Channel()
	switch msg.Kind() {
	case midi.KindNoteOn:
		if msg.Data2 == 0 {
			e.noteOff(msg.Note(), ch)
			return
		}
		e.noteOn(msg.Note(), ch, msg.Velocity())
	case midi.KindNoteOff:
		e.noteOff(msg.Note(), ch)
	case midi.KindPitchBend:
		setChannel(&e.bend, ch, msg.Bend())
		semis := msg.Bend() * e.voicePar.Value.PitchBendRange
		e.forChannel(ch, func(i int) { e.voices[i].SetPitchBend(semis) })
	case midi.KindChannelAftertouch:
		setChannel(&e.pressure, ch, msg.Value())
		e.forChannel(ch, func(i int) { e.voices[i].SetPressure(msg.Value()) })
	case midi.KindPolyAftertouch:
		note := msg.Note()
		e.forChannel(ch, func(i int) {
			if e.voices[i].Note() == note {
				e.voices[i].SetPressure(msg.Value())
			}
		})
	case midi.KindControlChange:
		e.controlChange(ch, msg.Controller(), msg.Value())
	}
}

func (e *Engine) controlChange(ch, cc int, value float64) {
	switch cc {
	case midi.CCModWheel:
		e.modWheel = value
	case midi.CCTimbre:
		e.forChannel(ch, func(i int) { e.voices[i].SetTimbre(value) })
	case midi.CCSustain:
		down := value >= 0.5
		if e.sustain && !down {
			for i := range e.limit {
				if e.held[i] {
					e.held[i] = false
					e.voices[i].NoteOff()
				}
			}
		}
		e.sustain = down
	case midi.CCAllSoundOff:
		for i, v := range e.voices {
			v.Reset()
			e.gate[i] = false
			e.held[i] = false
		}
	case midi.CCAllNotesOff:
		for i := range e.limit {
			if e.gate[i] || e.held[i] {
				e.gate[i] = false
				e.held[i] = false
				e.voices[i].NoteOff()
			}
		}
	}
}

// noteOn takes the first idle voice below the limit, or retriggers voice 0
// when every one of them is busy.
func (e *Engine) noteOn(note, ch int, velocity float64) {
	slot := 0
	for i := range e.limit {
		if !e.voices[i].IsActive() {
			slot = i
			break
		}
	}

	v := e.voices[slot]
	v.SetPitchBend(e.bend[ch] * e.voicePar.Value.PitchBendRange)
	v.SetPressure(e.pressure[ch])
	v.NoteOn(note, ch, velocity)
	e.gate[slot] = true
	e.held[slot] = false
	e.lastVoice = slot
}

func (e *Engine) noteOff(note, ch int) {
	for i := range e.limit {
		v := e.voices[i]
		if !e.gate[i] || !v.IsActive() || v.Note() != note || v.Channel() != ch {
			continue
		}
		e.gate[i] = false
		if e.sustain {
			e.held[i] = true
			continue
		}
		v.NoteOff()
	}
}

// forChannel calls fn for every active voice on ch, or on every channel
// when ch is the omni channel.
func (e *Engine) forChannel(ch int, fn func(i int)) {
	for i := range e.limit {
		v := e.voices[i]
		if v.IsActive() && (ch == 0 || v.Channel() == ch) {
			fn(i)
		}
	}
}

// setChannel stores v for ch; the omni channel stores it for all channels.
func setChannel(dst *[numChannels]float64, ch int, v float64) {
	if ch == 0 {
		for i := range dst {
			dst[i] = v
		}
		return
	}
	dst[ch] = v
}
