package modulation

import (
	"math"
	"testing"
)

func TestDriftStaysWithinAmount(t *testing.T) {
	for _, amount := range []float64{0.1, 0.5, 1} {
		d := NewDrift(48000, 7)
		d.SetAmount(amount)
		prev := d.Value()
		for i := 0; i < 20000; i++ {
			v := d.Advance(64)
			if math.Abs(float64(v)) > amount+1e-6 {
				t.Fatalf("amount %.1f: value %f out of range", amount, v)
			}
			if step := math.Abs(float64(v - prev)); step > amount*driftMaxStep+1e-6 {
				t.Fatalf("amount %.1f: jump of %f in one update", amount, step)
			}
			prev = v
		}
	}
}

func TestDriftZeroAmountIsSilent(t *testing.T) {
	d := NewDrift(48000, 3)
	for i := 0; i < 1000; i++ {
		if v := d.Advance(64); v != 0 {
			t.Fatalf("drift with zero amount = %f", v)
		}
	}
}

func TestDriftMoves(t *testing.T) {
	d := NewDrift(48000, 11)
	d.SetAmount(1)
	var peak float64
	for i := 0; i < 50000; i++ {
		peak = math.Max(peak, math.Abs(float64(d.Advance(64))))
	}
	if peak < 0.05 {
		t.Errorf("drift barely moved: peak %f", peak)
	}
}

func TestDriftSeedIsReproducible(t *testing.T) {
	a := NewDrift(44100, 5)
	b := NewDrift(44100, 5)
	a.SetAmount(1)
	b.SetAmount(1)
	for i := 0; i < 500; i++ {
		if va, vb := a.Advance(32), b.Advance(32); va != vb {
			t.Fatalf("update %d differs: %f vs %f", i, va, vb)
		}
	}
}

func TestDriftScaling(t *testing.T) {
	if r := PitchRatio(0); r != 1 {
		t.Errorf("PitchRatio(0) = %f", r)
	}
	want := math.Exp2(0.2 / 12)
	if r := PitchRatio(1); math.Abs(r-want) > 1e-12 {
		t.Errorf("PitchRatio(1) = %f, want %f", r, want)
	}
	if m := CutoffMultiplier(-1); math.Abs(m-0.95) > 1e-9 {
		t.Errorf("CutoffMultiplier(-1) = %f, want 0.95", m)
	}
}
