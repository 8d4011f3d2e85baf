// Package interpolation provides fractional read and smoothing helpers.
package interpolation

import "math"

// Linear interpolates between y0 and y1 at frac in [0,1].
func Linear(y0, y1, frac float32) float32 {
	return y0 + (y1-y0)*frac
}

// Hermite performs 4-point, 3rd-order Hermite interpolation between y1
// and y2.
func Hermite(y0, y1, y2, y3, frac float32) float32 {
	c0 := y1
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)
	return ((c3*frac+c2)*frac+c1)*frac + c0
}

// Smooth moves current toward target by factor.
func Smooth(current, target, factor float32) float32 {
	return current + (target-current)*factor
}

// SmoothingFactor returns the per-sample factor for Smooth that covers
// about 63% of a step in seconds. A non-positive time gives 1 (no
// smoothing).
func SmoothingFactor(seconds, sampleRate float64) float32 {
	if seconds <= 0 || sampleRate <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(seconds*sampleRate)))
}
