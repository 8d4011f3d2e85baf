// Package arp implements the arpeggiator that sits in front of the voice
// pool and turns held chords into a clocked stream of single notes.
package arp

import (
	"math"

	"github.com/justyntemme/polysynth/pkg/midi"
)

// Mode is the note order
type Mode int

const (
	ModeUp Mode = iota
	ModeDown
	ModeUpDown
	ModeRandom
	ModeChord
	ModePattern

	NumModes
)

var modeNames = [NumModes]string{"Up", "Down", "Up/Down", "Random", "Chord", "Pattern"}

func (m Mode) String() string {
	if m < 0 || m >= NumModes {
		return "Unknown"
	}
	return modeNames[m]
}

func ModeNames() []string {
	return modeNames[:]
}

const (
	MinRate      = 0.1
	MaxOctaves   = 4
	arpVelocity  = 127
	noNote       = -1
	maxHeldNotes = 128
)

// RateFromControl maps the 0-1 rate control to 4-24 Hz
func RateFromControl(v float64) float64 {
	return 4 + v*20
}

// Arpeggiator consumes raw note events and replaces them with clocked
// notes. It owns no heap state after construction.
type Arpeggiator struct {
	sampleRate float64
	enabled    bool
	wasEnabled bool

	mode    Mode
	rateHz  float64
	octaves int
	pattern int

	held    [maxHeldNotes]uint8 // sorted, unique
	numHeld int
	channel uint8

	step           int
	samplesPerStep int
	counter        int
	lastNote       int
	lastGate       float32
}

func New() *Arpeggiator {
	return &Arpeggiator{
		mode:     ModeUp,
		rateHz:   4,
		octaves:  1,
		lastNote: noNote,
	}
}

// Prepare sets the sample rate and clears all state. A non-positive rate
// leaves the arpeggiator inert.
func (a *Arpeggiator) Prepare(sampleRate float64) {
	a.sampleRate = sampleRate
	a.Reset()
}

// Reset forgets held notes and restarts the pattern
func (a *Arpeggiator) Reset() {
	a.numHeld = 0
	a.lastNote = noNote
	a.counter = 0
	a.step = 0
	a.updateTiming()
}

// SetParameters applies one block's parameter snapshot. Unknown modes fall
// back to Up, rate is floored at MinRate, octaves clamp to 1-4 and the
// pattern index wraps.
func (a *Arpeggiator) SetParameters(enabled bool, mode Mode, rateHz float64, octaves, pattern int) {
	a.enabled = enabled
	if mode < 0 || mode >= NumModes {
		mode = ModeUp
	}
	a.mode = mode
	if math.IsNaN(rateHz) || rateHz < MinRate {
		rateHz = MinRate
	}
	if rateHz != a.rateHz {
		a.rateHz = rateHz
		a.updateTiming()
	}
	a.octaves = max(1, min(MaxOctaves, octaves))
	a.pattern = wrap(pattern, len(patterns))
}

func (a *Arpeggiator) updateTiming() {
	if a.sampleRate <= 0 {
		a.samplesPerStep = 0
		return
	}
	a.samplesPerStep = max(1, int(a.sampleRate/a.rateHz))
}

// Enabled reports whether the arpeggiator rewrites events
func (a *Arpeggiator) Enabled() bool {
	return a.enabled
}

// HeldNotes returns the sorted held notes. The slice aliases internal
// storage and is only valid until the next ProcessBlock.
func (a *Arpeggiator) HeldNotes() []uint8 {
	return a.held[:a.numHeld]
}

// SamplesPerStep returns the clock period, 0 when inert
func (a *Arpeggiator) SamplesPerStep() int {
	return a.samplesPerStep
}

// Gate returns the gate fraction of the last step played
func (a *Arpeggiator) Gate() float32 {
	return a.lastGate
}

// ProcessBlock rewrites events for one block of numSamples. Raw note
// events update the held set and are removed, other events pass through,
// and generated notes are added at their sample offsets.
func (a *Arpeggiator) ProcessBlock(events *midi.Buffer, numSamples int) {
	if !a.enabled || a.samplesPerStep == 0 {
		if a.wasEnabled {
			// switching off must not leave the generated note hanging
			a.release(events, 0)
			a.numHeld = 0
			a.counter = 0
			a.wasEnabled = false
		}
		return
	}
	a.wasEnabled = true

	a.consume(events)

	if a.numHeld == 0 {
		a.release(events, 0)
		a.counter = 0
		events.SortByOffset()
		return
	}

	offset := 0
	for offset < numSamples {
		if a.counter >= a.samplesPerStep {
			a.counter = 0
			a.tick(events, int32(offset))
		}
		adv := min(numSamples-offset, a.samplesPerStep-a.counter)
		a.counter += adv
		offset += adv
	}
	events.SortByOffset()
}

// consume moves raw notes into the held set and compacts the remaining
// events in place. Note-offs for keys the arpeggiator never held, such as
// keys pressed before it was switched on, pass through to the voices.
func (a *Arpeggiator) consume(events *midi.Buffer) {
	kept := 0
	for i := 0; i < events.Len(); i++ {
		ev := events.At(i)
		switch {
		case ev.IsNoteOn():
			a.hold(ev.Note())
			a.channel = ev.Channel
		case ev.IsNoteOff() && a.unhold(ev.Note()):
		default:
			if ev.Kind == midi.EventTypeControlChange && ev.Data1 == midi.CCAllNotesOff {
				a.numHeld = 0
			}
			events.Set(kept, ev)
			kept++
		}
	}
	events.Truncate(kept)
}

func (a *Arpeggiator) tick(events *midi.Buffer, offset int32) {
	a.release(events, offset)

	note, step := a.nextNote()
	a.lastGate = step.Gate
	if note < 0 || note > 127 || step.Velocity == 0 {
		return
	}
	events.Add(midi.NoteOn(a.channel, uint8(note), step.Velocity, offset))
	a.lastNote = note
}

func (a *Arpeggiator) release(events *midi.Buffer, offset int32) {
	if a.lastNote == noNote {
		return
	}
	events.Add(midi.NoteOff(a.channel, uint8(a.lastNote), 0, offset))
	a.lastNote = noNote
}

// nextNote resolves the current step against the held notes and advances.
// Modes other than Pattern play upward across the octave range.
func (a *Arpeggiator) nextNote() (int, Step) {
	i := a.step
	a.step++

	if a.mode == ModePattern {
		pat := patterns[a.pattern].Steps
		s := pat[i%len(pat)]
		base := int(a.held[s.NoteIndex%a.numHeld])
		return base + 12*s.Octave, s
	}

	span := a.numHeld * a.octaves
	k := i % span
	note := int(a.held[k%a.numHeld]) + 12*(k/a.numHeld)
	return note, Step{Velocity: arpVelocity, Gate: 0.5}
}

func (a *Arpeggiator) hold(note uint8) {
	i := a.search(note)
	if i < a.numHeld && a.held[i] == note {
		return
	}
	if a.numHeld == maxHeldNotes {
		return
	}
	copy(a.held[i+1:a.numHeld+1], a.held[i:a.numHeld])
	a.held[i] = note
	a.numHeld++
}

func (a *Arpeggiator) unhold(note uint8) bool {
	i := a.search(note)
	if i >= a.numHeld || a.held[i] != note {
		return false
	}
	copy(a.held[i:a.numHeld-1], a.held[i+1:a.numHeld])
	a.numHeld--
	return true
}

// search returns the insertion index for note
func (a *Arpeggiator) search(note uint8) int {
	lo, hi := 0, a.numHeld
	for lo < hi {
		mid := (lo + hi) / 2
		if a.held[mid] < note {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
