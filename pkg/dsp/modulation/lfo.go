// Package modulation provides the per-voice modulation sources (LFO and
// drift), the modulation matrix that routes them, and the chorus used by
// the effects chain.
package modulation

import (
	"math"

	"github.com/justyntemme/polysynth/pkg/dsp/utility"
)

const twoPi = 2 * math.Pi

const defaultLFOSeed = 0x9e3779b9

// Shape is the LFO waveform
type Shape int

const (
	ShapeSine Shape = iota
	ShapeTriangle
	ShapeSquare
	ShapeRampUp
	ShapeRampDown
	// ShapeSampleAndHold holds a random value for one cycle
	ShapeSampleAndHold
	// ShapeSampleAndGlide glides from the previous random value to the
	// current one over a cycle
	ShapeSampleAndGlide

	NumShapes
)

var shapeNames = [NumShapes]string{"Sine", "Triangle", "Square", "Ramp Up", "Ramp Down", "S&H", "S&Glide"}

func (s Shape) String() string {
	if s < 0 || s >= NumShapes {
		return "Unknown"
	}
	return shapeNames[s]
}

// ShapeNames lists shape display names in enum order
func ShapeNames() []string {
	return shapeNames[:]
}

// LFO is a free-running phase accumulator with key sync and onset delay.
// Voices read it at control rate with AdvanceBlock; the chorus reads it per
// sample with Next.
type LFO struct {
	sampleRate float64
	frequency  float64
	phase      float64 // radians, [0, 2π)
	phaseInc   float64 // radians per sample
	shape      Shape

	onsetDelay float64 // seconds
	elapsed    float64 // seconds since the last ResetPhase

	held     float32
	prevHeld float32
	noise    *utility.NoiseGenerator
}

func NewLFO(sampleRate float64) *LFO {
	l := &LFO{
		frequency: 1.0,
		noise:     utility.NewNoiseGenerator(defaultLFOSeed),
	}
	l.SetSampleRate(sampleRate)
	return l
}

// SetSampleRate updates the phase increment. A non-positive rate freezes
// the LFO.
func (l *LFO) SetSampleRate(sampleRate float64) {
	l.sampleRate = sampleRate
	l.updatePhaseIncrement()
}

// SetFrequency sets the rate in Hz. Negative rates are treated as 0.
func (l *LFO) SetFrequency(hz float64) {
	l.frequency = math.Max(0, hz)
	l.updatePhaseIncrement()
}

func (l *LFO) Frequency() float64 {
	return l.frequency
}

func (l *LFO) updatePhaseIncrement() {
	if l.sampleRate <= 0 {
		l.phaseInc = 0
		return
	}
	l.phaseInc = twoPi * l.frequency / l.sampleRate
	// one cycle per sample is the most that makes sense
	if l.phaseInc > math.Pi {
		l.phaseInc = math.Pi
	}
}

// SetShape selects the waveform. Unknown shapes fall back to sine.
func (l *LFO) SetShape(shape Shape) {
	if shape < 0 || shape >= NumShapes {
		shape = ShapeSine
	}
	l.shape = shape
}

func (l *LFO) Shape() Shape {
	return l.shape
}

// SetOnsetDelay sets how long after ResetPhase the output stays at 0
func (l *LFO) SetOnsetDelay(seconds float64) {
	l.onsetDelay = math.Max(0, seconds)
}

// SetSeed makes the random shapes reproducible
func (l *LFO) SetSeed(seed uint32) {
	l.noise.SetSeed(int64(seed))
}

// SetPhase sets the phase in cycles (0-1)
func (l *LFO) SetPhase(cycles float64) {
	cycles -= math.Floor(cycles)
	l.phase = cycles * twoPi
}

// Phase returns the phase in radians
func (l *LFO) Phase() float64 {
	return l.phase
}

// ResetPhase restarts the cycle and the onset delay, called on note-on.
func (l *LFO) ResetPhase() {
	l.phase = 0
	l.elapsed = 0
}

// Reset clears all state including the held random values
func (l *LFO) Reset() {
	l.ResetPhase()
	l.held = 0
	l.prevHeld = 0
}

// AdvanceBlock returns the value at the current phase and then advances
// the phase by numSamples.
func (l *LFO) AdvanceBlock(numSamples int) float32 {
	v := l.current()
	if numSamples <= 0 || l.sampleRate <= 0 {
		return v
	}

	l.elapsed += float64(numSamples) / l.sampleRate
	l.phase += l.phaseInc * float64(numSamples)
	if l.phase >= twoPi {
		l.phase = math.Mod(l.phase, twoPi)
		l.redraw()
	}
	return v
}

// Next returns one sample and advances by one sample
func (l *LFO) Next() float32 {
	return l.AdvanceBlock(1)
}

func (l *LFO) current() float32 {
	if l.elapsed < l.onsetDelay {
		return 0
	}
	return l.valueAt(l.phase)
}

func (l *LFO) valueAt(phase float64) float32 {
	t := phase / twoPi
	switch l.shape {
	case ShapeTriangle:
		if t < 0.5 {
			return float32(4*t - 1)
		}
		return float32(3 - 4*t)
	case ShapeSquare:
		if t < 0.5 {
			return 1
		}
		return -1
	case ShapeRampUp:
		return float32(2*t - 1)
	case ShapeRampDown:
		return float32(1 - 2*t)
	case ShapeSampleAndHold:
		return l.held
	case ShapeSampleAndGlide:
		return l.prevHeld + (l.held-l.prevHeld)*float32(t)
	default:
		return float32(math.Sin(phase))
	}
}

func (l *LFO) redraw() {
	l.prevHeld = l.held
	l.held = l.random()
}

func (l *LFO) random() float32 {
	return l.noise.Next()
}
