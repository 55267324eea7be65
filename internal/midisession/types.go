package midisession

import "time"

// Kind identifies the MIDI message families the engine consumes.
type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
	ControlChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case ControlChange:
		return "control-change"
	}
	return "unknown"
}

// Message is one parsed MIDI event. The session produces one per physical
// event; nothing downstream mutates it.
type Message struct {
	Kind      Kind
	Channel   uint8 // 1-16
	Number    uint8 // note or controller number, 0-127
	Value     uint8 // velocity or controller value, 0-127
	Timestamp time.Time
}
