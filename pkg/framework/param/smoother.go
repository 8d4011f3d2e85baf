package param

import "math"

type SmoothingType int

const (
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing is a one-pole filter towards the target
	ExponentialSmoothing
)

// Smoother removes zipper noise from block-rate parameter changes.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64 // samples for linear, pole coefficient for exponential
	step          float64
	threshold     float64
	smoothing     bool
}

func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// SetTimeConstant configures the smoother to settle in roughly ms
// milliseconds at the given sample rate.
func (s *Smoother) SetTimeConstant(sampleRate, ms float64) {
	samples := sampleRate * ms / 1000
	if samples < 1 {
		samples = 1
	}
	switch s.smoothingType {
	case LinearSmoothing:
		s.rate = samples
	case ExponentialSmoothing:
		s.rate = math.Exp(-1 / samples)
	}
}

func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}
	s.target = target
	s.smoothing = true
	if s.smoothingType == LinearSmoothing && s.rate > 0 {
		s.step = (target - s.current) / s.rate
	}
}

func (s *Smoother) Next() float64 {
	if !s.smoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		s.current += (s.target - s.current) * (1.0 - s.rate)
		if math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.smoothing = false
		}
	case LinearSmoothing:
		s.current += s.step
		if s.step == 0 || (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) {
			s.current = s.target
			s.smoothing = false
		}
	}
	return s.current
}

// Fill writes the next len(buf) smoothed values into buf
func (s *Smoother) Fill(buf []float32) {
	if !s.smoothing {
		v := float32(s.current)
		for i := range buf {
			buf[i] = v
		}
		return
	}
	for i := range buf {
		buf[i] = float32(s.Next())
	}
}

func (s *Smoother) IsSmoothing() bool {
	return s.smoothing
}

func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.smoothing = false
}
