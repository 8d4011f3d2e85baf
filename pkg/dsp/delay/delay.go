// Package delay provides the fractional delay line and the feedback echo
// used by the effects chain.
package delay

import "github.com/justyntemme/polysynth/pkg/dsp/interpolation"

// Line is a circular delay line with fractional reads.
type Line struct {
	buffer   []float32
	writePos int
}

// New creates a line holding maxDelaySeconds of audio at sampleRate.
func New(maxDelaySeconds, sampleRate float64) *Line {
	l := &Line{}
	l.Resize(int(maxDelaySeconds*sampleRate) + 4)
	return l
}

// Resize reallocates the line to size samples and clears it.
func (l *Line) Resize(size int) {
	l.buffer = make([]float32, max(size, 4))
	l.writePos = 0
}

// MaxDelay is the longest delay in samples that Read supports.
func (l *Line) MaxDelay() float64 {
	return float64(len(l.buffer) - 3)
}

func (l *Line) Reset() {
	clear(l.buffer)
	l.writePos = 0
}

func (l *Line) Write(sample float32) {
	l.buffer[l.writePos] = sample
	if l.writePos++; l.writePos >= len(l.buffer) {
		l.writePos = 0
	}
}

// Read returns the sample written delaySamples writes ago, linearly
// interpolated. The delay is clamped to [1, MaxDelay].
func (l *Line) Read(delaySamples float64) float32 {
	i, frac := l.position(delaySamples)
	return interpolation.Linear(l.at(i), l.at(i-1), frac)
}

// ReadHermite is Read with 4-point Hermite interpolation. The delay is
// clamped to at least 2 so every support point is written history.
func (l *Line) ReadHermite(delaySamples float64) float32 {
	i, frac := l.position(max(delaySamples, 2))
	return interpolation.Hermite(l.at(i+1), l.at(i), l.at(i-1), l.at(i-2), frac)
}

// Process reads at delaySamples, then writes input.
func (l *Line) Process(input float32, delaySamples float64) float32 {
	out := l.Read(delaySamples)
	l.Write(input)
	return out
}

// position returns the buffer index of the integer part of the delay,
// counted back from the write head, and the fraction toward the older
// neighbour.
func (l *Line) position(delaySamples float64) (int, float32) {
	delaySamples = min(max(delaySamples, 1), l.MaxDelay())
	whole := int(delaySamples)
	return l.writePos - whole, float32(delaySamples - float64(whole))
}

func (l *Line) at(i int) float32 {
	n := len(l.buffer)
	i %= n
	if i < 0 {
		i += n
	}
	return l.buffer[i]
}
