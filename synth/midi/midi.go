// Package midi decodes the MIDI 1.0 channel voice messages the engine
// responds to.
package midi

import (
	"errors"
	"fmt"
)

// Kind is the high nibble of a channel voice status byte.
type Kind byte

const (
	KindNoteOff           Kind = 0x8
	KindNoteOn            Kind = 0x9
	KindPolyAftertouch    Kind = 0xA
	KindControlChange     Kind = 0xB
	KindProgramChange     Kind = 0xC
	KindChannelAftertouch Kind = 0xD
	KindPitchBend         Kind = 0xE
)

// String returns a short name for the message kind.
func (k Kind) String() string {
	switch k {
	case KindNoteOff:
		return "note-off"
	case KindNoteOn:
		return "note-on"
	case KindPolyAftertouch:
		return "poly-aftertouch"
	case KindControlChange:
		return "control-change"
	case KindProgramChange:
		return "program-change"
	case KindChannelAftertouch:
		return "channel-aftertouch"
	case KindPitchBend:
		return "pitch-bend"
	default:
		return fmt.Sprintf("kind(0x%X)", byte(k))
	}
}

// Controller numbers with engine meaning.
const (
	CCModWheel      = 1
	CCSustain       = 64
	CCTimbre        = 74
	CCAllSoundOff   = 120
	CCAllNotesOff   = 123
	pitchBendCenter = 8192
)

var (
	// ErrShortMessage is returned when fewer bytes remain than the status
	// byte requires.
	ErrShortMessage = errors.New("midi: message truncated")
	// ErrNotChannelVoice is returned for system and stray data bytes.
	ErrNotChannelVoice = errors.New("midi: not a channel voice message")
)

// Message is one three-byte channel voice message.
type Message struct {
	Status byte
	Data1  byte
	Data2  byte
}

// Event is a message scheduled at a sample offset within a block.
type Event struct {
	Offset int
	Msg    Message
}

// Kind returns the message kind.
func (m Message) Kind() Kind { return Kind(m.Status >> 4) }

// Channel returns the 0-based channel.
func (m Message) Channel() int { return int(m.Status & 0x0F) }

// Note returns the note number of note and poly aftertouch messages.
func (m Message) Note() int { return int(m.Data1) }

// Velocity returns the note velocity in [0, 1].
func (m Message) Velocity() float64 { return float64(m.Data2) / 127 }

// Controller returns the controller number of a control change.
func (m Message) Controller() int { return int(m.Data1) }

// Value returns the data value of a control change or poly aftertouch in
// [0, 1], or the pressure of a channel aftertouch.
func (m Message) Value() float64 {
	if m.Kind() == KindChannelAftertouch {
		return float64(m.Data1) / 127
	}
	return float64(m.Data2) / 127
}

// Bend returns the pitch wheel position in [-1, 1].
func (m Message) Bend() float64 {
	raw := int(m.Data2)<<7 | int(m.Data1)
	v := float64(raw-pitchBendCenter) / pitchBendCenter
	return max(v, -1)
}

// IsNoteOff reports whether m releases a note, including note-on with
// velocity 0.
func (m Message) IsNoteOff() bool {
	k := m.Kind()
	return k == KindNoteOff || (k == KindNoteOn && m.Data2 == 0)
}

// String formats m for logs.
func (m Message) String() string {
	return fmt.Sprintf("%v ch=%d %d %d", m.Kind(), m.Channel()+1, m.Data1, m.Data2)
}

// NoteOn returns a note-on message. Channel is 0-based.
func NoteOn(channel, note, velocity int) Message {
	return Message{Status: 0x90 | byte(channel&0x0F), Data1: byte(note & 0x7F), Data2: byte(velocity & 0x7F)}
}

// NoteOff returns a note-off message.
func NoteOff(channel, note int) Message {
	return Message{Status: 0x80 | byte(channel&0x0F), Data1: byte(note & 0x7F)}
}

// ControlChange returns a control change message.
func ControlChange(channel, controller, value int) Message {
	return Message{Status: 0xB0 | byte(channel&0x0F), Data1: byte(controller & 0x7F), Data2: byte(value & 0x7F)}
}

// PitchBend returns a pitch bend message for a position in [-1, 1].
func PitchBend(channel int, position float64) Message {
	raw := int(position*pitchBendCenter) + pitchBendCenter
	raw = min(max(raw, 0), 16383)
	return Message{Status: 0xE0 | byte(channel&0x0F), Data1: byte(raw & 0x7F), Data2: byte(raw >> 7)}
}

// ChannelAftertouch returns a channel pressure message.
func ChannelAftertouch(channel, pressure int) Message {
	return Message{Status: 0xD0 | byte(channel&0x0F), Data1: byte(pressure & 0x7F)}
}

// PolyAftertouch returns a per-note pressure message.
func PolyAftertouch(channel, note, pressure int) Message {
	return Message{Status: 0xA0 | byte(channel&0x0F), Data1: byte(note & 0x7F), Data2: byte(pressure & 0x7F)}
}

// dataLen returns the number of data bytes following a status byte.
func dataLen(k Kind) int {
	switch k {
	case KindProgramChange, KindChannelAftertouch:
		return 1
	default:
		return 2
	}
}

// Parse decodes a single channel voice message from raw and returns the
// remainder of raw.
func Parse(raw []byte) (Message, []byte, error) {
	if len(raw) == 0 {
		return Message{}, nil, ErrShortMessage
	}
	status := raw[0]
	if status < 0x80 || status >= 0xF0 {
		return Message{}, raw[1:], fmt.Errorf("%w: status 0x%02X", ErrNotChannelVoice, status)
	}

	n := dataLen(Kind(status >> 4))
	if len(raw) < 1+n {
		return Message{}, nil, ErrShortMessage
	}

	msg := Message{Status: status, Data1: raw[1] & 0x7F}
	if n == 2 {
		msg.Data2 = raw[2] & 0x7F
	}
	return msg, raw[1+n:], nil
}

// ParseAll decodes every message in raw, skipping system messages and
// stray data bytes, and appends them to dst.
func ParseAll(dst []Message, raw []byte) ([]Message, error) {
	for len(raw) > 0 {
		msg, next, err := Parse(raw)
		switch {
		case errors.Is(err, ErrNotChannelVoice):
			raw = next
			continue
		case err != nil:
			return dst, err
		}
		dst = append(dst, msg)
		raw = next
	}
	return dst, nil
}
