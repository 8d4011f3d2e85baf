package synth

import "math"

const (
	// MaxUnison is the largest unison stack a voice renders
	MaxUnison = 12
	// MaxVoices is the size of the voice pool
	MaxVoices = 12
	// MaxDetuneSemitones is the spread at full unison detune
	MaxDetuneSemitones = 0.5
)

// PolyphonyMode selects voice count and unison stacking
type PolyphonyMode int

const (
	ModePoly PolyphonyMode = iota
	ModeUnison2
	ModeUnison3
	ModeUnison4
	ModeUnison6
	ModeUnison12
	ModeMono
	ModeMono2
	ModeMono3
	ModeMono4
	ModeMono6
	ModePoly6
	ModePoly8

	NumPolyphonyModes
)

type modeInfo struct {
	name   string
	unison int
	voices int
	mono   bool
}

var modeTable = [NumPolyphonyModes]modeInfo{
	ModePoly:     {"Poly", 1, 12, false},
	ModeUnison2:  {"Unison-2", 2, 6, false},
	ModeUnison3:  {"Unison-3", 3, 4, false},
	ModeUnison4:  {"Unison-4", 4, 3, false},
	ModeUnison6:  {"Unison-6", 6, 2, false},
	ModeUnison12: {"Unison-12", 12, 1, false},
	ModeMono:     {"Mono", 1, 1, true},
	ModeMono2:    {"Mono-2", 1, 1, true},
	ModeMono3:    {"Mono-3", 1, 1, true},
	ModeMono4:    {"Mono-4", 1, 1, true},
	ModeMono6:    {"Mono-6", 1, 1, true},
	ModePoly6:    {"Poly-6", 6, 6, false},
	ModePoly8:    {"Poly-8", 8, 8, false},
}

func (m PolyphonyMode) valid() bool {
	return m >= 0 && m < NumPolyphonyModes
}

func (m PolyphonyMode) String() string {
	if !m.valid() {
		return "Unknown"
	}
	return modeTable[m].name
}

// UnisonCount returns how many oscillator pairs each note stacks. Unknown
// modes play a single pair.
func (m PolyphonyMode) UnisonCount() int {
	if !m.valid() {
		return 1
	}
	return modeTable[m].unison
}

// VoiceLimit returns how many notes may sound at once
func (m PolyphonyMode) VoiceLimit() int {
	if !m.valid() {
		return MaxVoices
	}
	return modeTable[m].voices
}

// IsMono reports whether the mode plays one note with last-note priority
func (m PolyphonyMode) IsMono() bool {
	return m.valid() && modeTable[m].mono
}

func PolyphonyModeNames() []string {
	names := make([]string, NumPolyphonyModes)
	for i, info := range modeTable {
		names[i] = info.name
	}
	return names
}

// SpreadOffsets writes the symmetric detune in semitones for each of n
// unison slots into out and returns out[:n]. detune is 0-1.
func SpreadOffsets(n int, detune float64, out []float64) []float64 {
	n = max(1, min(n, len(out)))
	out = out[:n]
	if n == 1 {
		out[0] = 0
		return out
	}
	maxDetune := math.Max(0, math.Min(1, detune)) * MaxDetuneSemitones
	for i := range out {
		out[i] = (float64(i)/float64(n-1)*2 - 1) * maxDetune
	}
	return out
}

// UnisonGain is the energy compensation for summing n slots
func UnisonGain(n int) float32 {
	if n < 1 {
		return 1
	}
	return float32(1 / math.Sqrt(float64(n)))
}
