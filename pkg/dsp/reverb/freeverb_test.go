package reverb

import (
	"math"
	"testing"
)

func TestFreeverbDefaults(t *testing.T) {
	f := NewFreeverb(44100)
	if f.RoomSize() != DefaultRoomSize || f.Damping() != DefaultDamping {
		t.Errorf("defaults = %v/%v", f.RoomSize(), f.Damping())
	}
	if !f.Bypassed() {
		t.Error("new reverb should start fully dry")
	}
	if got := len(f.combL[0].buffer); got != combTuning[0] {
		t.Errorf("comb length at 44.1k = %d, want %d", got, combTuning[0])
	}
}

func TestFreeverbScalesWithSampleRate(t *testing.T) {
	f := NewFreeverb(88200)
	if got := len(f.combL[0].buffer); got != 2*combTuning[0] {
		t.Errorf("comb length at 88.2k = %d, want %d", got, 2*combTuning[0])
	}
	if got := len(f.combR[0].buffer); got != 2*(combTuning[0]+stereoSpread) {
		t.Errorf("right comb length = %d", got)
	}

	f.SetSampleRate(0)
	if f.SampleRate() != tuningRate {
		t.Errorf("SampleRate() = %v after invalid rate", f.SampleRate())
	}
}

func TestFreeverbClamping(t *testing.T) {
	f := NewFreeverb(44100)
	f.SetRoomSize(2)
	f.SetDamping(-1)
	f.SetMix(3)
	if f.RoomSize() != 1 || f.Damping() != 0 || f.Mix() != 1 {
		t.Errorf("clamped = %v/%v/%v", f.RoomSize(), f.Damping(), f.Mix())
	}
}

func TestFreeverbDryIsIdentity(t *testing.T) {
	f := NewFreeverb(48000)
	f.SetMix(0)
	left := []float32{1, 0.5, -0.25, 0}
	right := []float32{-1, 0.25, 0, 0.75}
	wantL := append([]float32(nil), left...)
	wantR := append([]float32(nil), right...)
	f.ProcessStereo(left, right)
	for i := range left {
		if left[i] != wantL[i] || right[i] != wantR[i] {
			t.Errorf("frame %d = (%v,%v), want (%v,%v)", i, left[i], right[i], wantL[i], wantR[i])
		}
	}
}

func TestFreeverbTail(t *testing.T) {
	f := NewFreeverb(44100)
	f.SetMix(1)
	left := make([]float32, 8192)
	right := make([]float32, 8192)
	left[0], right[0] = 1, 1
	f.ProcessStereo(left, right)

	// Nothing reaches the output before the shortest comb plus allpass path.
	for i := 0; i < allpassTuning[3]; i++ {
		if left[i] != 0 {
			t.Fatalf("output at %d = %v before the first reflection", i, left[i])
		}
	}
	var energy float64
	for i := combTuning[0]; i < len(left); i++ {
		energy += float64(left[i] * left[i])
		if math.IsNaN(float64(left[i])) || math.Abs(float64(left[i])) > 1 {
			t.Fatalf("sample %d = %v", i, left[i])
		}
	}
	if energy == 0 {
		t.Error("no reverb tail")
	}
}

func TestFreeverbReset(t *testing.T) {
	f := NewFreeverb(44100)
	f.SetMix(1)
	buf := make([]float32, 4096)
	buf[0] = 1
	f.ProcessStereo(buf, make([]float32, len(buf)))
	f.Reset()

	l, r := make([]float32, 4096), make([]float32, 4096)
	f.ProcessStereo(l, r)
	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("frame %d = (%v,%v) after reset", i, l[i], r[i])
		}
	}
}

func TestFreeverbFreezeSustains(t *testing.T) {
	f := NewFreeverb(44100)
	f.SetMix(1)
	l, r := make([]float32, 4096), make([]float32, 4096)
	l[0], r[0] = 1, 1
	f.ProcessStereo(l, r)
	f.SetFreeze(true)

	measure := func() float64 {
		l, r := make([]float32, 8192), make([]float32, 8192)
		f.ProcessStereo(l, r)
		var e float64
		for i := range l {
			e += float64(l[i] * l[i])
		}
		return e
	}
	first := measure()
	second := measure()
	if first == 0 || second < first*0.5 {
		t.Errorf("frozen tail decayed: %v then %v", first, second)
	}
}

func TestFreeverbNoAllocs(t *testing.T) {
	f := NewFreeverb(48000)
	f.SetMix(0.3)
	l, r := make([]float32, 256), make([]float32, 256)
	allocs := testing.AllocsPerRun(50, func() {
		f.ProcessStereo(l, r)
	})
	if allocs != 0 {
		t.Errorf("ProcessStereo allocated %v times", allocs)
	}
}

func BenchmarkFreeverb(b *testing.B) {
	f := NewFreeverb(48000)
	f.SetMix(0.3)
	l, r := make([]float32, 256), make([]float32, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.ProcessStereo(l, r)
	}
}
