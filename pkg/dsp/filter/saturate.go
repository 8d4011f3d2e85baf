package filter

import (
	approx "github.com/cwbudde/algo-approx"
)

// Tanh is a fast hyperbolic tangent built on the exponential approximation
func Tanh(x float32) float32 {
	if x > 9 {
		return 1
	}
	if x < -9 {
		return -1
	}
	e := approx.FastExp(2 * x)
	return (e - 1) / (e + 1)
}

// saturate applies tanh(x*gain) in place
func saturate(buffer []float32, gain float32) {
	for i, x := range buffer {
		buffer[i] = Tanh(x * gain)
	}
}
