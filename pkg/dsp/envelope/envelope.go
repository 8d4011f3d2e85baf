// Package envelope provides the ADSR generator used three times per voice
// (amplitude, filter and modulation).
package envelope

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// Stage represents the current envelope stage
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

// ADSR is a linear-time envelope. Each stage ramps linearly over its time
// setting; the curve control reshapes the output as value^(4^curve) without
// changing stage timing.
type ADSR struct {
	sampleRate float64

	attack  float64 // seconds
	decay   float64 // seconds
	sustain float64 // 0-1
	release float64 // seconds
	curve   float64 // -1..1, 0 is linear

	exponent float64 // 4^curve

	attackStep  float64
	decayStep   float64
	releaseStep float64

	stage Stage
	level float64
}

func New(sampleRate float64) *ADSR {
	e := &ADSR{
		attack:   0.01,
		decay:    0.1,
		sustain:  0.7,
		release:  0.3,
		exponent: 1,
	}
	e.SetSampleRate(sampleRate)
	return e
}

// stage targets are reached within this tolerance so accumulated rounding
// cannot add a sample to a stage
const levelEpsilon = 1e-9

// SetSampleRate recomputes per-sample steps. A non-positive rate leaves the
// envelope inert: NoteOn is ignored and output stays 0.
func (e *ADSR) SetSampleRate(sampleRate float64) {
	e.sampleRate = sampleRate
	if sampleRate <= 0 {
		e.Reset()
	}
	e.updateSteps()
}

// SetParameters sets attack, decay and release in seconds and sustain as a
// 0-1 level. Negative times are treated as zero.
func (e *ADSR) SetParameters(attack, decay, sustain, release float64) {
	e.attack = math.Max(0, attack)
	e.decay = math.Max(0, decay)
	e.sustain = math.Max(0, math.Min(1, sustain))
	e.release = math.Max(0, release)
	e.updateSteps()
}

// SetCurve sets the output shaping, clamped to [-1, 1]
func (e *ADSR) SetCurve(curve float64) {
	curve = math.Max(-1, math.Min(1, curve))
	e.curve = curve
	e.exponent = math.Pow(4, curve)
}

func (e *ADSR) Curve() float64 {
	return e.curve
}

func (e *ADSR) updateSteps() {
	e.attackStep = stepFor(1, e.attack, e.sampleRate)
	e.decayStep = stepFor(1-e.sustain, e.decay, e.sampleRate)
	if e.stage == StageRelease {
		return
	}
	e.releaseStep = stepFor(1, e.release, e.sampleRate)
}

// stepFor is the per-sample increment that covers distance in seconds. A
// zero time completes the stage in one sample.
func stepFor(distance, seconds, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	samples := seconds * sampleRate
	if samples < 1 {
		return math.Max(distance, 1)
	}
	return distance / samples
}

// NoteOn restarts the attack from the current level so retriggers do not
// click.
func (e *ADSR) NoteOn() {
	if e.sampleRate <= 0 {
		return
	}
	e.stage = StageAttack
}

// NoteOff enters release from whatever level the envelope has reached.
func (e *ADSR) NoteOff() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.stage = StageRelease
	e.releaseStep = stepFor(e.level, e.release, e.sampleRate)
	if e.level > 0 && e.releaseStep <= 0 {
		e.releaseStep = e.level
	}
}

// Reset returns to idle with zero output
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.level = 0
}

// IsActive is false only in idle with zero level.
func (e *ADSR) IsActive() bool {
	return e.stage != StageIdle || e.level > 0
}

func (e *ADSR) Stage() Stage {
	return e.stage
}

// Level returns the current raw (unshaped) level
func (e *ADSR) Level() float64 {
	return e.level
}

// Next advances one sample and returns the raw linear level.
func (e *ADSR) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.level += e.attackStep
		if e.level >= 1-levelEpsilon {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.decayStep
		if e.level <= e.sustain+levelEpsilon {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level -= e.releaseStep
		if e.level <= levelEpsilon {
			e.level = 0
			e.stage = StageIdle
		}
	}
	return float32(e.level)
}

// NextShaped advances one sample and returns the curve-shaped level.
func (e *ADSR) NextShaped() float32 {
	return e.Shape(e.Next())
}

// Shape applies value^(4^curve).
func (e *ADSR) Shape(value float32) float32 {
	if value <= 0 {
		return 0
	}
	if value >= 1 || e.curve == 0 {
		return value
	}
	return approx.FastExp(float32(e.exponent) * float32(math.Log(float64(value))))
}

// Advance returns the shaped level at the current position and then moves
// the envelope n samples ahead. Used for control-rate sampling once per
// block.
func (e *ADSR) Advance(n int) float32 {
	v := e.Shape(float32(e.level))
	for i := 0; i < n; i++ {
		e.Next()
	}
	return v
}

// Process writes shaped levels for len(buffer) samples into buffer.
func (e *ADSR) Process(buffer []float32) {
	if !e.IsActive() {
		for i := range buffer {
			buffer[i] = 0
		}
		return
	}
	for i := range buffer {
		buffer[i] = e.Shape(e.Next())
	}
}
