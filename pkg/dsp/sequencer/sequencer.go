// Package sequencer implements the per-voice control sequencer, a looping
// row of up to 32 bipolar values stepped at a fixed rate with optional
// swing and slew.
package sequencer

import "math"

const (
	MaxSteps = 32

	DefaultLength = 16
	DefaultRate   = 4.0 // steps per second
	MaxRate       = 1000.0
	MaxSwing      = 0.9
)

type Sequencer struct {
	sampleRate float64
	steps      [MaxSteps]float32
	length     int
	rate       float64
	swing      float64
	slew       float64 // seconds

	step     int
	counter  float64 // samples spent in the current step
	value    float32
	slewStep float32 // per-sample increment toward the step value
}

func New(sampleRate float64) *Sequencer {
	return &Sequencer{
		sampleRate: sampleRate,
		length:     DefaultLength,
		rate:       DefaultRate,
	}
}

// SetSampleRate changes the clock. A non-positive rate freezes the sequencer.
func (s *Sequencer) SetSampleRate(sampleRate float64) {
	s.sampleRate = sampleRate
	s.retarget()
}

// SetLength sets how many steps loop, clamped to 1-32
func (s *Sequencer) SetLength(n int) {
	s.length = max(1, min(MaxSteps, n))
	if s.step >= s.length {
		s.step = 0
		s.retarget()
	}
}

func (s *Sequencer) Length() int {
	return s.length
}

// SetStep stores a step value clamped to [-1, 1]. Out-of-range indices are
// ignored.
func (s *Sequencer) SetStep(index int, value float32) {
	if index < 0 || index >= MaxSteps {
		return
	}
	value = max(-1, min(1, value))
	if value == s.steps[index] {
		return
	}
	s.steps[index] = value
	if index == s.step {
		s.retarget()
	}
}

func (s *Sequencer) Step(index int) float32 {
	if index < 0 || index >= MaxSteps {
		return 0
	}
	return s.steps[index]
}

// SetRate sets the step rate in steps per second, up to MaxRate. Zero holds
// the current step.
func (s *Sequencer) SetRate(hz float64) {
	s.rate = math.Max(0, math.Min(MaxRate, hz))
}

// SetSwing lengthens even steps by (1+r) and shortens odd ones by (1-r)
func (s *Sequencer) SetSwing(r float64) {
	s.swing = math.Max(0, math.Min(MaxSwing, r))
}

// SetSlew sets the glide time between steps in seconds. Setting the same
// time again leaves a glide in progress untouched.
func (s *Sequencer) SetSlew(seconds float64) {
	seconds = math.Max(0, seconds)
	if seconds == s.slew {
		return
	}
	s.slew = seconds
	s.retarget()
}

// CurrentStep returns the index of the playing step
func (s *Sequencer) CurrentStep() int {
	return s.step
}

// Value returns the current output without advancing
func (s *Sequencer) Value() float32 {
	return s.value
}

// Reset restarts from step 0 and snaps to its value
func (s *Sequencer) Reset() {
	s.step = 0
	s.counter = 0
	s.value = s.steps[0]
	s.slewStep = 0
}

// stepLength returns the length in samples of step i including swing
func (s *Sequencer) stepLength(i int) float64 {
	base := s.sampleRate / s.rate
	if i%2 == 0 {
		return base * (1 + s.swing)
	}
	return base * (1 - s.swing)
}

func (s *Sequencer) retarget() {
	target := s.steps[s.step]
	if s.slew <= 0 || s.sampleRate <= 0 {
		s.slewStep = 0
		s.value = target
		return
	}
	dist := target - s.value
	if dist < 0 {
		dist = -dist
	}
	s.slewStep = dist / float32(s.slew*s.sampleRate)
}

// glide moves the output n samples toward the step value
func (s *Sequencer) glide(n float64) {
	target := s.steps[s.step]
	if s.slewStep == 0 {
		s.value = target
		return
	}
	delta := s.slewStep * float32(n)
	switch {
	case s.value < target:
		s.value = min(target, s.value+delta)
	case s.value > target:
		s.value = max(target, s.value-delta)
	}
}

// Next returns the current value and advances one sample
func (s *Sequencer) Next() float32 {
	return s.Advance(1)
}

// Advance returns the value at the current position and then moves n
// samples forward, crossing as many step boundaries as needed.
func (s *Sequencer) Advance(n int) float32 {
	v := s.value
	if n <= 0 || s.sampleRate <= 0 {
		return v
	}
	if s.rate <= 0 {
		s.glide(float64(n))
		return v
	}

	remaining := float64(n)
	for remaining > 0 {
		left := s.stepLength(s.step) - s.counter
		if left > remaining {
			s.glide(remaining)
			s.counter += remaining
			break
		}
		s.glide(left)
		remaining -= left
		s.counter = 0
		s.step = (s.step + 1) % s.length
		s.retarget()
	}
	return v
}
