package utility

import (
	"math"
	"testing"
)

func TestNoiseIsDeterministicPerSeed(t *testing.T) {
	a := NewNoiseGenerator(42)
	b := NewNoiseGenerator(42)
	c := NewNoiseGenerator(43)

	same := true
	for i := 0; i < 64; i++ {
		x, y, z := a.Next(), b.Next(), c.Next()
		if x != y {
			t.Fatalf("sample %d differs for equal seeds: %v vs %v", i, x, y)
		}
		if x != z {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestNoiseRangeAndMean(t *testing.T) {
	n := NewNoiseGenerator(7)
	buf := make([]float32, 48000)
	n.Generate(buf)

	var sum float64
	for i, v := range buf {
		if v < -1 || v >= 1 {
			t.Fatalf("sample %d = %v out of [-1, 1)", i, v)
		}
		sum += float64(v)
	}
	if mean := sum / float64(len(buf)); math.Abs(mean) > 0.02 {
		t.Errorf("mean = %v, want close to 0", mean)
	}
}

func TestNoiseReset(t *testing.T) {
	n := NewNoiseGenerator(3)
	first := n.Next()
	n.Next()
	n.Reset()
	if got := n.Next(); got != first {
		t.Errorf("after Reset got %v, want %v", got, first)
	}
	if n.Seed() != 3 {
		t.Errorf("Seed() = %d", n.Seed())
	}

	allocs := testing.AllocsPerRun(100, func() {
		n.SetSeed(9)
		n.Next()
	})
	if allocs != 0 {
		t.Errorf("reseeding allocated %v times", allocs)
	}
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	dc := NewDCBlocker(DefaultDCCutoff, 48000)
	buf := make([]float32, 48000)
	for i := range buf {
		buf[i] = 0.5
	}
	dc.Process(buf)
	if tail := buf[len(buf)-1]; math.Abs(float64(tail)) > 0.01 {
		t.Errorf("residual offset %v after one second", tail)
	}
	if buf[0] != 0.5 {
		t.Errorf("first sample = %v, want the step to pass", buf[0])
	}
}

func TestDCBlockerPassesAudio(t *testing.T) {
	const sr = 48000.0
	dc := NewDCBlocker(DefaultDCCutoff, sr)
	buf := make([]float32, 4800)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * 1000 * float64(i) / sr))
	}
	dc.Process(buf)

	var peak float32
	for _, v := range buf[2400:] {
		peak = max(peak, float32(math.Abs(float64(v))))
	}
	if peak < 0.95 || peak > 1.05 {
		t.Errorf("1 kHz peak = %v, want about 1", peak)
	}
}

func TestDCBlockerInvalidRateIsIdentity(t *testing.T) {
	dc := NewDCBlocker(DefaultDCCutoff, 0)
	buf := []float32{0.25, 0.25, 0.25}
	dc.Process(buf)
	for i, v := range buf {
		if v != 0.25 {
			t.Errorf("sample %d = %v, want 0.25", i, v)
		}
	}
	dc.Reset()
}
