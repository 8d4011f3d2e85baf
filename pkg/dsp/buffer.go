package dsp

import "github.com/viterin/vek/vek32"

// Buffer helpers on equal-length slices. dst and src must have the same
// length; callers slice to the active block first.

func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

func Copy(dst, src []float32) {
	copy(dst, src)
}

// Add sums src into dst.
func Add(dst, src []float32) {
	vek32.Add_Inplace(dst, src)
}

// AddScaled sums src*scale into dst using tmp as scratch.
func AddScaled(dst, src, tmp []float32, scale float32) {
	vek32.MulNumber_Into(tmp, src, scale)
	vek32.Add_Inplace(dst, tmp)
}

func Scale(buffer []float32, scale float32) {
	vek32.MulNumber_Inplace(buffer, scale)
}

// Multiply multiplies dst by src element-wise.
func Multiply(dst, src []float32) {
	vek32.Mul_Inplace(dst, src)
}

// Mix writes dry*(1-mix) + wet*mix into dst. dst may alias dry.
func Mix(dst, dry, wet []float32, mix float32) {
	dryGain := 1 - mix
	for i := range dst {
		dst[i] = dry[i]*dryGain + wet[i]*mix
	}
}

func Peak(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}
	hi := vek32.Max(buffer)
	lo := vek32.Min(buffer)
	if -lo > hi {
		return -lo
	}
	return hi
}
