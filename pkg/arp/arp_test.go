package arp

import (
	"reflect"
	"testing"

	"github.com/justyntemme/polysynth/pkg/midi"
)

const (
	testRate  = 1000.0
	stepHz    = 10.0 // 100 samples per step
	blockSize = 100
)

func newTestArp(mode Mode, octaves, pattern int) *Arpeggiator {
	a := New()
	a.Prepare(testRate)
	a.SetParameters(true, mode, stepHz, octaves, pattern)
	return a
}

func hold(events *midi.Buffer, notes ...uint8) {
	for _, n := range notes {
		events.Add(midi.NoteOn(0, n, 100, 0))
	}
}

// run processes blocks and returns the note-ons generated, in order
func run(a *Arpeggiator, events *midi.Buffer, blocks int) []uint8 {
	var notes []uint8
	for b := 0; b < blocks; b++ {
		a.ProcessBlock(events, blockSize)
		for _, ev := range events.Events() {
			if ev.IsNoteOn() {
				notes = append(notes, ev.Note())
			}
		}
		events.Clear()
	}
	return notes
}

func TestPatternUp4WrapsNoteIndex(t *testing.T) {
	a := newTestArp(ModePattern, 1, 0)
	events := midi.NewBuffer(64)
	hold(events, 60, 64, 67)

	got := run(a, events, 5)
	want := []uint8{60, 64, 67, 60}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("note-ons = %v, want %v", got, want)
	}
}

func TestRawNotesAreConsumed(t *testing.T) {
	a := newTestArp(ModeUp, 1, 0)
	events := midi.NewBuffer(64)
	hold(events, 60, 64)
	events.Add(midi.ControlChange(0, midi.CCModWheel, 90, 12))

	a.ProcessBlock(events, blockSize)

	if events.Len() != 1 {
		t.Fatalf("expected only the CC to remain, got %v", events.Events())
	}
	if ev := events.At(0); ev.Kind != midi.EventTypeControlChange || ev.Offset != 12 {
		t.Errorf("passthrough event changed: %v", ev)
	}
	if got := a.HeldNotes(); !reflect.DeepEqual(got, []uint8{60, 64}) {
		t.Errorf("held = %v", got)
	}
}

func TestUnheldNoteOffPassesThrough(t *testing.T) {
	a := newTestArp(ModeUp, 1, 0)
	events := midi.NewBuffer(64)
	hold(events, 64)
	events.Add(midi.NoteOff(0, 60, 0, 30))

	a.ProcessBlock(events, blockSize)

	if events.Len() != 1 {
		t.Fatalf("expected the foreign note-off to remain, got %v", events.Events())
	}
	if ev := events.At(0); !ev.IsNoteOff() || ev.Note() != 60 || ev.Offset != 30 {
		t.Errorf("got %v, want note-off for 60 at 30", ev)
	}
	if got := a.HeldNotes(); !reflect.DeepEqual(got, []uint8{64}) {
		t.Errorf("held = %v", got)
	}
}

func TestTicksAreSampleAccurate(t *testing.T) {
	a := newTestArp(ModeUp, 1, 0)
	events := midi.NewBuffer(64)
	hold(events, 48)

	// steps land at samples 100, 200, 300 of a 350 sample block
	a.ProcessBlock(events, 350)
	var offsets []int32
	for _, ev := range events.Events() {
		if ev.IsNoteOn() {
			offsets = append(offsets, ev.Offset)
		}
	}
	if want := []int32{100, 200, 300}; !reflect.DeepEqual(offsets, want) {
		t.Errorf("note-on offsets = %v, want %v", offsets, want)
	}

	// each new note is preceded by a note-off for the previous one
	evs := events.Events()
	for i := 1; i < len(evs); i++ {
		if evs[i].IsNoteOn() && evs[i].Offset != 100 {
			if !evs[i-1].IsNoteOff() || evs[i-1].Offset != evs[i].Offset {
				t.Errorf("missing note-off before %v", evs[i])
			}
		}
	}
}

func TestReleaseAllStopsImmediately(t *testing.T) {
	a := newTestArp(ModeUp, 1, 0)
	events := midi.NewBuffer(64)
	hold(events, 60, 64, 67)
	run(a, events, 3) // two notes played, 64 sounding

	for _, n := range []uint8{60, 64, 67} {
		events.Add(midi.NoteOff(0, n, 0, 40))
	}
	a.ProcessBlock(events, blockSize)

	if events.Len() != 1 {
		t.Fatalf("expected a single note-off, got %v", events.Events())
	}
	if ev := events.At(0); !ev.IsNoteOff() || ev.Note() != 64 {
		t.Errorf("got %v, want note-off for 64", ev)
	}
	events.Clear()

	if notes := run(a, events, 5); len(notes) != 0 {
		t.Errorf("notes played after release: %v", notes)
	}
	for b := 0; b < 3; b++ {
		a.ProcessBlock(events, blockSize)
		if events.Len() != 0 {
			t.Fatalf("unexpected events with nothing held: %v", events.Events())
		}
	}
}

func TestBypassIsPassThrough(t *testing.T) {
	a := New()
	a.Prepare(testRate)
	a.SetParameters(false, ModeUp, stepHz, 1, 0)

	events := midi.NewBuffer(16)
	hold(events, 60, 64)
	events.Add(midi.NoteOff(0, 60, 0, 50))
	before := append([]midi.Event(nil), events.Events()...)

	a.ProcessBlock(events, blockSize)
	if !reflect.DeepEqual(events.Events(), before) {
		t.Errorf("bypassed arp changed events:\n got %v\nwant %v", events.Events(), before)
	}
}

func TestDisablingReleasesGeneratedNote(t *testing.T) {
	a := newTestArp(ModeUp, 1, 0)
	events := midi.NewBuffer(16)
	hold(events, 60)
	run(a, events, 2)

	a.SetParameters(false, ModeUp, stepHz, 1, 0)
	a.ProcessBlock(events, blockSize)
	if events.Len() != 1 || !events.At(0).IsNoteOff() || events.At(0).Note() != 60 {
		t.Fatalf("expected note-off for 60, got %v", events.Events())
	}
	events.Clear()

	a.ProcessBlock(events, blockSize)
	if events.Len() != 0 {
		t.Errorf("bypass emitted %v", events.Events())
	}
}

func TestUpModeOctaveRange(t *testing.T) {
	a := newTestArp(ModeUp, 2, 0)
	events := midi.NewBuffer(64)
	hold(events, 60, 64)

	got := run(a, events, 6)
	want := []uint8{60, 64, 72, 76, 60}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("note-ons = %v, want %v", got, want)
	}
}

func TestUnimplementedModesFallBackToUp(t *testing.T) {
	for _, mode := range []Mode{ModeDown, ModeUpDown, ModeRandom, ModeChord, Mode(42)} {
		a := newTestArp(mode, 1, 0)
		events := midi.NewBuffer(64)
		hold(events, 67, 60, 64)

		got := run(a, events, 5)
		want := []uint8{60, 64, 67, 60}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%v: note-ons = %v, want %v", mode, got, want)
		}
	}
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		pattern int
		want    []uint8
	}{
		{1, []uint8{60, 62, 64, 65, 65, 64, 62, 60}},
		{2, []uint8{60, 72, 62, 74, 64, 76, 65, 77}},
		{3, []uint8{60, 64, 62, 65, 72, 76, 74, 77}},
		{4, []uint8{60, 62, 64, 65}},
	}
	for _, tt := range tests {
		t.Run(PatternAt(tt.pattern).Name, func(t *testing.T) {
			a := newTestArp(ModePattern, 1, tt.pattern)
			events := midi.NewBuffer(64)
			hold(events, 60, 62, 64, 65)

			got := run(a, events, 9)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("note-ons = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRestReleasesPreviousNote(t *testing.T) {
	a := newTestArp(ModePattern, 1, 4)
	events := midi.NewBuffer(64)
	hold(events, 60)

	run(a, events, 2) // first step plays 60
	a.ProcessBlock(events, blockSize)
	if events.Len() != 1 || !events.At(0).IsNoteOff() {
		t.Errorf("rest step should only release, got %v", events.Events())
	}
}

func TestPatternIndexWraps(t *testing.T) {
	a := newTestArp(ModePattern, 1, NumPatterns+2)
	if a.pattern != 2 {
		t.Errorf("pattern = %d, want 2", a.pattern)
	}
	a.SetParameters(true, ModePattern, stepHz, 1, -1)
	if a.pattern != NumPatterns-1 {
		t.Errorf("pattern = %d, want %d", a.pattern, NumPatterns-1)
	}
}

func TestHeldNotesSortedUnique(t *testing.T) {
	a := newTestArp(ModeUp, 1, 0)
	events := midi.NewBuffer(64)
	hold(events, 67, 60, 64, 60, 72)
	events.Add(midi.NoteOn(0, 72, 0, 3)) // zero velocity releases
	a.ProcessBlock(events, 10)

	if got := a.HeldNotes(); !reflect.DeepEqual(got, []uint8{60, 64, 67}) {
		t.Errorf("held = %v", got)
	}
}

func TestRateGuards(t *testing.T) {
	sampleRate, floor := 48000.0, MinRate
	a := New()
	a.Prepare(sampleRate)
	a.SetParameters(true, ModeUp, 0, 1, 0)
	if got, want := a.SamplesPerStep(), int(sampleRate/floor); got != want {
		t.Errorf("samples per step = %d, want %d", got, want)
	}

	if got := RateFromControl(0); got != 4 {
		t.Errorf("RateFromControl(0) = %v", got)
	}
	if got := RateFromControl(1); got != 24 {
		t.Errorf("RateFromControl(1) = %v", got)
	}
}

func TestInvalidSampleRateIsInert(t *testing.T) {
	a := New()
	a.Prepare(0)
	a.SetParameters(true, ModeUp, stepHz, 1, 0)

	events := midi.NewBuffer(16)
	hold(events, 60)
	a.ProcessBlock(events, blockSize)
	if events.Len() != 1 || !events.At(0).IsNoteOn() {
		t.Errorf("inert arp should leave events alone, got %v", events.Events())
	}
}

func TestProcessBlockDoesNotAllocate(t *testing.T) {
	a := newTestArp(ModePattern, 2, 2)
	events := midi.NewBuffer(64)
	hold(events, 60, 64, 67)
	a.ProcessBlock(events, blockSize)

	allocs := testing.AllocsPerRun(50, func() {
		events.Clear()
		a.ProcessBlock(events, 64)
	})
	if allocs != 0 {
		t.Errorf("ProcessBlock allocated %.1f times", allocs)
	}
}
