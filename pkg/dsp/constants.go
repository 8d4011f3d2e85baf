// Package dsp holds constants and buffer helpers shared by the synth DSP
// packages.
package dsp

const (
	MinFrequency = 20.0
	MaxFrequency = 20000.0

	// Butterworth response
	DefaultQ = 0.707

	TwoPi  = 6.283185307179586
	Pi     = 3.141592653589793
	HalfPi = 1.5707963267948966

	Mono   = 1
	Stereo = 2

	DefaultSampleRate = 48000.0
	DefaultBlockSize  = 512
	// Largest block the engine processes in one pass. Host blocks above
	// this are split.
	MaxBlockSize = 4096

	Epsilon = 1e-6
)

// ClampFrequency limits hz to the audible range.
func ClampFrequency(hz float64) float64 {
	if hz < MinFrequency {
		return MinFrequency
	}
	if hz > MaxFrequency {
		return MaxFrequency
	}
	return hz
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
