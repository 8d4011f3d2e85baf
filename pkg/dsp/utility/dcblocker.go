package utility

import "math"

// DefaultDCCutoff is the corner used when none is given.
const DefaultDCCutoff = 5.0

// DCBlocker is a one-pole high-pass, y = x - x1 + R*y1, for removing
// offset from a mono signal.
type DCBlocker struct {
	x1, y1      float32
	coefficient float32
}

func NewDCBlocker(cutoffHz, sampleRate float64) *DCBlocker {
	dc := &DCBlocker{}
	dc.SetCutoff(cutoffHz, sampleRate)
	return dc
}

// SetCutoff moves the corner. A non-positive sample rate or cutoff makes
// the blocker pass the signal through unchanged.
func (dc *DCBlocker) SetCutoff(cutoffHz, sampleRate float64) {
	if sampleRate <= 0 || cutoffHz <= 0 {
		dc.coefficient = 1
		return
	}
	r := 1 - 2*math.Pi*cutoffHz/sampleRate
	dc.coefficient = float32(math.Max(0.9, math.Min(0.9999, r)))
}

func (dc *DCBlocker) Coefficient() float32 {
	return dc.coefficient
}

func (dc *DCBlocker) Tick(input float32) float32 {
	if dc.coefficient == 1 {
		return input
	}
	output := input - dc.x1 + dc.coefficient*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// Process filters buffer in place.
func (dc *DCBlocker) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = dc.Tick(buffer[i])
	}
}

func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
