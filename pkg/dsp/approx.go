package dsp

import "github.com/cwbudde/algo-approx"

const ln2 = 0.69314718055994530942

// Pow2 computes 2^x with a fast exponential approximation. Used for
// pitch ratios and curve exponents on the render path.
func Pow2(x float32) float32 {
	return approx.FastExp(x * ln2)
}

// SemitonesToRatio converts a pitch offset in semitones to a frequency
// ratio.
func SemitonesToRatio(semitones float32) float32 {
	return Pow2(semitones / 12)
}
