package midi

import (
	"fmt"
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
)

func (t EventType) String() string {
	switch t {
	case EventTypeNoteOff:
		return "NoteOff"
	case EventTypeNoteOn:
		return "NoteOn"
	case EventTypePolyPressure:
		return "PolyPressure"
	case EventTypeControlChange:
		return "CC"
	case EventTypeProgramChange:
		return "ProgramChange"
	case EventTypeChannelPressure:
		return "ChannelPressure"
	case EventTypePitchBend:
		return "PitchBend"
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// Event is a timestamped channel message. It is a plain value so event
// buffers can be reused block after block without boxing.
type Event struct {
	Kind    EventType
	Channel uint8
	Data1   uint8 // note number, controller or program
	Data2   uint8 // velocity, pressure or controller value
	Bend    int16 // -8192 to 8191, 0 is center
	Offset  int32 // sample offset inside the current block
}

func NoteOn(channel, note, velocity uint8, offset int32) Event {
	return Event{Kind: EventTypeNoteOn, Channel: channel, Data1: note, Data2: velocity, Offset: offset}
}

func NoteOff(channel, note, velocity uint8, offset int32) Event {
	return Event{Kind: EventTypeNoteOff, Channel: channel, Data1: note, Data2: velocity, Offset: offset}
}

func ControlChange(channel, controller, value uint8, offset int32) Event {
	return Event{Kind: EventTypeControlChange, Channel: channel, Data1: controller, Data2: value, Offset: offset}
}

func PitchBend(channel uint8, value int16, offset int32) Event {
	return Event{Kind: EventTypePitchBend, Channel: channel, Bend: value, Offset: offset}
}

// IsNoteOn reports a note-on with non-zero velocity.
func (e Event) IsNoteOn() bool {
	return e.Kind == EventTypeNoteOn && e.Data2 > 0
}

// IsNoteOff treats a zero-velocity note-on as a note-off, as running-status
// senders emit them.
func (e Event) IsNoteOff() bool {
	return e.Kind == EventTypeNoteOff || (e.Kind == EventTypeNoteOn && e.Data2 == 0)
}

func (e Event) IsNote() bool {
	return e.Kind == EventTypeNoteOn || e.Kind == EventTypeNoteOff
}

func (e Event) Note() uint8 {
	return e.Data1
}

func (e Event) Velocity() uint8 {
	return e.Data2
}

func (e Event) NormalizedBend() float64 {
	return float64(e.Bend) / 8192.0
}

func (e Event) String() string {
	switch e.Kind {
	case EventTypeNoteOn, EventTypeNoteOff:
		return fmt.Sprintf("%s{ch:%d, note:%d, vel:%d, offset:%d}",
			e.Kind, e.Channel, e.Data1, e.Data2, e.Offset)
	case EventTypeControlChange:
		return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}",
			e.Channel, e.Data1, e.Data2, e.Offset)
	case EventTypePitchBend:
		return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}",
			e.Channel, e.Bend, e.Offset)
	}
	return fmt.Sprintf("%s{ch:%d, d1:%d, d2:%d, offset:%d}",
		e.Kind, e.Channel, e.Data1, e.Data2, e.Offset)
}

const (
	CCModWheel       uint8 = 1
	CCBreath         uint8 = 2
	CCFoot           uint8 = 4
	CCPortamentoTime uint8 = 5
	CCVolume         uint8 = 7
	CCExpression     uint8 = 11
	CCSustain        uint8 = 64
	CCAllSoundOff    uint8 = 120
	CCResetAll       uint8 = 121
	CCAllNotesOff    uint8 = 123
)

// FromMessage converts a gomidi channel message into an Event at the given
// sample offset. Messages the engine has no use for report false.
func FromMessage(msg gomidi.Message, offset int32) (Event, bool) {
	var ch, d1, d2 uint8
	switch {
	case msg.GetNoteOn(&ch, &d1, &d2):
		if d2 == 0 {
			return NoteOff(ch, d1, 0, offset), true
		}
		return NoteOn(ch, d1, d2, offset), true
	case msg.GetNoteOff(&ch, &d1, &d2):
		return NoteOff(ch, d1, d2, offset), true
	case msg.GetControlChange(&ch, &d1, &d2):
		return ControlChange(ch, d1, d2, offset), true
	}

	var rel int16
	var abs uint16
	if msg.GetPitchBend(&ch, &rel, &abs) {
		return PitchBend(ch, rel, offset), true
	}
	return Event{}, false
}

// Message converts the event back into a gomidi message.
func (e Event) Message() gomidi.Message {
	switch e.Kind {
	case EventTypeNoteOn:
		return gomidi.NoteOn(e.Channel, e.Data1, e.Data2)
	case EventTypeNoteOff:
		return gomidi.NoteOffVelocity(e.Channel, e.Data1, e.Data2)
	case EventTypeControlChange:
		return gomidi.ControlChange(e.Channel, e.Data1, e.Data2)
	case EventTypePitchBend:
		return gomidi.Pitchbend(e.Channel, e.Bend)
	}
	return nil
}

func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Exp2((float64(note)-69.0)/12.0)
}

func FrequencyToNote(freq, tuningA4 float64) uint8 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	if freq <= 0 {
		return 0
	}
	note := 69.0 + 12.0*math.Log2(freq/tuningA4)
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return uint8(note + 0.5)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func NoteNumberToName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note/12)-1)
}
