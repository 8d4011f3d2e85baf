// Package render drives an Engine from a timeline of MIDI events, either
// offline into buffers or on demand through an io.Reader for playback.
package render

import (
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/justyntemme/polysynth/pkg/midi"
)

// Timed is an event at an absolute frame.
type Timed struct {
	Frame int64
	Event midi.Event
}

// Schedule is a list of timed events in frame order.
type Schedule []Timed

// Sort orders events by frame, keeping file order for equal frames.
func (s Schedule) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Frame < s[j].Frame })
}

// End is the frame of the last event, 0 for an empty schedule.
func (s Schedule) End() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Frame
}

// LoadSMF reads every track of a standard MIDI file. Tempo changes are
// honoured; messages the engine cannot use are left out.
func LoadSMF(path string, sampleRate float64) (Schedule, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("render: invalid sample rate %v", sampleRate)
	}
	var s Schedule
	err := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		ev, ok := midi.FromMessage(gomidi.Message(te.Message), 0)
		if !ok {
			return
		}
		frame := te.AbsMicroSeconds * int64(sampleRate) / 1_000_000
		s = append(s, Timed{Frame: frame, Event: ev})
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("render: read %s: %w", path, err)
	}
	s.Sort()
	return s, nil
}

// Demo is a short phrase for trying patches without a MIDI file: a held
// chord, a bass note under it and a swell of the mod wheel.
func Demo(sampleRate float64) Schedule {
	at := func(seconds float64) int64 { return int64(seconds * sampleRate) }
	s := Schedule{
		{at(0), midi.NoteOn(0, 48, 100, 0)},
		{at(0), midi.NoteOn(0, 60, 90, 0)},
		{at(0), midi.NoteOn(0, 64, 90, 0)},
		{at(0), midi.NoteOn(0, 67, 90, 0)},
		{at(0.5), midi.ControlChange(0, midi.CCModWheel, 64, 0)},
		{at(1), midi.ControlChange(0, midi.CCModWheel, 127, 0)},
		{at(2), midi.NoteOff(0, 60, 0, 0)},
		{at(2), midi.NoteOff(0, 64, 0, 0)},
		{at(2), midi.NoteOff(0, 67, 0, 0)},
		{at(2), midi.NoteOn(0, 62, 90, 0)},
		{at(2), midi.NoteOn(0, 65, 90, 0)},
		{at(2), midi.NoteOn(0, 69, 90, 0)},
		{at(4), midi.NoteOff(0, 48, 0, 0)},
		{at(4), midi.NoteOff(0, 62, 0, 0)},
		{at(4), midi.NoteOff(0, 65, 0, 0)},
		{at(4), midi.NoteOff(0, 69, 0, 0)},
	}
	s.Sort()
	return s
}
