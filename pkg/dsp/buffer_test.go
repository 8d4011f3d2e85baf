package dsp

import (
	"math"
	"testing"
)

func TestBufferOps(t *testing.T) {
	dst := []float32{1, 2, 3}
	src := []float32{1, 1, 1}
	tmp := make([]float32, 3)

	Add(dst, src)
	if dst[0] != 2 || dst[2] != 4 {
		t.Errorf("Add: got %v", dst)
	}

	AddScaled(dst, src, tmp, 0.5)
	if dst[1] != 3.5 {
		t.Errorf("AddScaled: got %v", dst)
	}

	Multiply(dst, []float32{2, 0, 1})
	if dst[0] != 5 || dst[1] != 0 || dst[2] != 4.5 {
		t.Errorf("Multiply: got %v", dst)
	}

	Scale(dst, 2)
	if dst[2] != 9 {
		t.Errorf("Scale: got %v", dst)
	}

	Clear(dst)
	for i, v := range dst {
		if v != 0 {
			t.Errorf("Clear: index %d is %f", i, v)
		}
	}
}

func TestMixAndPeak(t *testing.T) {
	dry := []float32{1, 1}
	wet := []float32{0, -3}
	out := make([]float32, 2)
	Mix(out, dry, wet, 0.25)

	if math.Abs(float64(out[0])-0.75) > 1e-6 || math.Abs(float64(out[1])-0) > 1e-6 {
		t.Errorf("Mix: got %v", out)
	}
	if p := Peak(wet); p != 3 {
		t.Errorf("Peak: got %f", p)
	}
	if p := Peak(nil); p != 0 {
		t.Errorf("Peak of empty: got %f", p)
	}
}

func TestClampFrequency(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{5, 20}, {440, 440}, {30000, 20000},
	}
	for _, tt := range tests {
		if got := ClampFrequency(tt.in); got != tt.want {
			t.Errorf("ClampFrequency(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestSemitonesToRatio(t *testing.T) {
	tests := []struct {
		semitones float32
		want      float64
	}{
		{0, 1},
		{12, 2},
		{-12, 0.5},
		{7, 1.4983},
	}
	for _, tt := range tests {
		got := float64(SemitonesToRatio(tt.semitones))
		if math.Abs(got-tt.want)/tt.want > 1e-3 {
			t.Errorf("SemitonesToRatio(%f) = %f, want %f", tt.semitones, got, tt.want)
		}
	}
}
