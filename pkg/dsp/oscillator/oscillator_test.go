package oscillator

import (
	"math"
	"testing"
)

func TestPairAddsIntoBuffer(t *testing.T) {
	p := NewPair(48000)
	p.SetLevels(1, 0)
	p.SetFrequency(1000)

	buf := make([]float32, 4)
	for i := range buf {
		buf[i] = 10
	}
	p.RenderAdd(buf)

	// saw starts at -1 and rises by 2*1000/48000 per sample
	step := 2 * 1000.0 / 48000.0
	for i, v := range buf {
		want := 10 + (-1 + float64(i)*step)
		if math.Abs(float64(v)-want) > 1e-5 {
			t.Errorf("sample %d: got %f, want %f", i, v, want)
		}
	}
}

func TestPulseFollowsWidth(t *testing.T) {
	tests := []struct {
		width    float64
		wantHigh float64
	}{
		{0.5, 0.5},
		{0.25, 0.75},
		{0.9, 0.1},
	}

	for _, tt := range tests {
		p := NewPair(48000)
		p.SetLevels(0, 1)
		p.SetFrequency(100) // 480 samples per cycle
		p.SetPulseWidth(tt.width)

		buf := make([]float32, 480)
		p.RenderAdd(buf)

		high := 0
		for _, v := range buf {
			if v > 0 {
				high++
			}
		}
		got := float64(high) / float64(len(buf))
		if math.Abs(got-tt.wantHigh) > 0.01 {
			t.Errorf("width %.2f: high fraction %.3f, want %.3f", tt.width, got, tt.wantHigh)
		}
	}
}

func TestPulseWidthClamped(t *testing.T) {
	p := NewPair(48000)
	p.SetPulseWidth(0)
	if p.PulseWidth() != MinPulseWidth {
		t.Errorf("Expected %f, got %f", MinPulseWidth, p.PulseWidth())
	}
	p.SetPulseWidth(2)
	if p.PulseWidth() != MaxPulseWidth {
		t.Errorf("Expected %f, got %f", MaxPulseWidth, p.PulseWidth())
	}
}

func TestInvalidSampleRateIsSilent(t *testing.T) {
	p := NewPair(0)
	buf := make([]float32, 16)
	p.RenderAdd(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: expected silence, got %f", i, v)
		}
	}
}

func TestPairImplementsRenderer(t *testing.T) {
	var _ Renderer = NewPair(44100)
}
