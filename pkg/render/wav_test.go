package render

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wav"
)

func sine(freq float64, rate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	left := sine(440, testRate, 4800)
	right := make([]float32, len(left))
	if err := WriteWAV(path, left, right, testRate); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("written file is not a valid WAV")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != testRate {
		t.Errorf("format %d ch @ %d Hz", buf.Format.NumChannels, buf.Format.SampleRate)
	}
	if got := len(buf.Data) / 2; got != len(left) {
		t.Errorf("frames = %d, want %d", got, len(left))
	}
	for i := 1; i < len(buf.Data); i += 2 {
		if buf.Data[i] != 0 {
			t.Fatalf("right channel sample %d = %v, want 0", i/2, buf.Data[i])
		}
	}
}

func TestWriteWAVLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WriteWAV(path, make([]float32, 3), make([]float32, 2), testRate); err == nil {
		t.Error("mismatched channels should fail")
	}
}

func TestResample(t *testing.T) {
	left := sine(440, testRate, testRate/2)
	right := sine(220, testRate, testRate/2)

	same, _, err := Resample(left, right, testRate, testRate)
	if err != nil || &same[0] != &left[0] {
		t.Errorf("equal rates should pass through (err %v)", err)
	}

	l, r, err := Resample(left, right, testRate, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(l) != len(r) {
		t.Fatalf("channel lengths differ: %d, %d", len(l), len(r))
	}
	want := float64(len(left)) * 44100 / testRate
	if math.Abs(float64(len(l))-want) > want*0.05 {
		t.Errorf("resampled length %d, want about %.0f", len(l), want)
	}
	if p := peak(l); p < 0.3 || p > 0.7 {
		t.Errorf("resampled peak %v, want about 0.5", p)
	}
}
