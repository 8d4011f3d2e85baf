package filter

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

const (
	MinQ = 0.707
	MaxQ = 10.0
)

// SVF is a zero-delay feedback state variable filter (trapezoidal
// integrators) producing lowpass, bandpass and highpass at once.
type SVF struct {
	g float32 // tan(pi*fc/fs)
	k float32 // 1/Q

	ic1eq float32
	ic2eq float32
}

// SVFOutputs holds all filter outputs
type SVFOutputs struct {
	Lowpass  float32
	Highpass float32
	Bandpass float32
}

func (s *SVF) Reset() {
	s.ic1eq = 0
	s.ic2eq = 0
}

// SetFrequencyAndQ sets the pre-warped frequency coefficient and damping
func (s *SVF) SetFrequencyAndQ(sampleRate, frequency, q float64) {
	s.g = float32(math.Tan(math.Pi * frequency / sampleRate))
	s.k = float32(1.0 / q)
}

// ProcessSample runs one sample through the filter
func (s *SVF) ProcessSample(input float32) SVFOutputs {
	g, k := s.g, s.k
	a1 := 1.0 / (1.0 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	v3 := input - s.ic2eq
	v1 := a1*s.ic1eq + a2*v3
	v2 := s.ic2eq + a2*s.ic1eq + a3*v3

	s.ic1eq = flush(2*v1 - s.ic1eq)
	s.ic2eq = flush(2*v2 - s.ic2eq)

	return SVFOutputs{
		Lowpass:  v2,
		Bandpass: v1,
		Highpass: input - k*v1 - v2,
	}
}

// ProcessLowpass filters buffer in place
func (s *SVF) ProcessLowpass(buffer []float32) {
	for i := range buffer {
		buffer[i] = s.ProcessSample(buffer[i]).Lowpass
	}
}

func flush(x float32) float32 {
	return float32(dspcore.FlushDenormals(float64(x)))
}

// SaturatedSVF is the 12 dB model: tanh drive into the SVF lowpass, with
// the resonance control mapped to Q between MinQ and MaxQ.
type SaturatedSVF struct {
	SVF
	sampleRate float64
	cutoff     float64
	q          float64
	drive      float32
}

func NewSaturatedSVF() *SaturatedSVF {
	return &SaturatedSVF{cutoff: 1000, q: MinQ, drive: 1}
}

func (s *SaturatedSVF) Prepare(sampleRate float64) error {
	s.sampleRate = sampleRate
	s.update()
	return nil
}

func (s *SaturatedSVF) SetCutoff(hz float64) {
	s.cutoff = hz
	s.update()
}

func (s *SaturatedSVF) SetResonance(r float64) {
	s.q = MinQ + r*r*(MaxQ-MinQ)
	s.update()
}

// Resonance returns the Q
func (s *SaturatedSVF) Resonance() float64 {
	return s.q
}

func (s *SaturatedSVF) SetDrive(gain float64) {
	s.drive = float32(gain)
}

func (s *SaturatedSVF) update() {
	if s.sampleRate <= 0 {
		return
	}
	hz := math.Min(s.cutoff, 0.49*s.sampleRate)
	s.SetFrequencyAndQ(s.sampleRate, hz, s.q)
}

func (s *SaturatedSVF) Process(buffer []float32) {
	saturate(buffer, s.drive)
	s.ProcessLowpass(buffer)
}
