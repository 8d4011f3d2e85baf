package arp

// Step is one entry of a pattern. NoteIndex picks from the sorted held
// notes (wrapping), Octave transposes by 12 semitones and a zero Velocity
// is a rest.
type Step struct {
	NoteIndex int
	Octave    int
	Velocity  uint8
	Gate      float32
}

func step(noteIndex, octave int) Step {
	return Step{NoteIndex: noteIndex, Octave: octave, Velocity: 127, Gate: 0.5}
}

func rest(noteIndex, octave int) Step {
	return Step{NoteIndex: noteIndex, Octave: octave, Velocity: 0, Gate: 0.5}
}

// Pattern is a named step table
type Pattern struct {
	Name  string
	Steps []Step
}

var patterns = []Pattern{
	{"Up 4", []Step{step(0, 0), step(1, 0), step(2, 0), step(3, 0)}},
	{"Up Down 8", []Step{
		step(0, 0), step(1, 0), step(2, 0), step(3, 0),
		step(3, 0), step(2, 0), step(1, 0), step(0, 0),
	}},
	{"Octave Jump", []Step{
		step(0, 0), step(0, 1), step(1, 0), step(1, 1),
		step(2, 0), step(2, 1), step(3, 0), step(3, 1),
	}},
	{"Scatter", []Step{
		step(0, 0), step(2, 0), step(1, 0), step(3, 0),
		step(0, 1), step(2, 1), step(1, 1), step(3, 1),
	}},
	{"Rests", []Step{
		step(0, 0), rest(0, 0), step(1, 0), rest(1, 0),
		step(2, 0), rest(2, 0), step(3, 0), rest(3, 0),
	}},
}

// NumPatterns is the number of built-in patterns
var NumPatterns = len(patterns)

// PatternAt returns pattern i, wrapping out-of-range indices
func PatternAt(i int) Pattern {
	return patterns[wrap(i, len(patterns))]
}

func PatternNames() []string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.Name
	}
	return names
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
