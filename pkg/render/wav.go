package render

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// WriteWAV writes a 16-bit stereo PCM file, creating parent directories.
func WriteWAV(path string, left, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("render: left/right length mismatch (%d, %d)", len(left), len(right))
	}
	data := make([]float32, len(left)*2)
	for i := range left {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return enc.Close()
}

// Resample converts both channels between rates. Equal rates return the
// input unchanged.
func Resample(left, right []float32, fromRate, toRate int) ([]float32, []float32, error) {
	if fromRate == toRate {
		return left, right, nil
	}
	channels := [2][]float32{left, right}
	for c, in := range channels {
		r, err := dspresample.NewForRates(
			float64(fromRate),
			float64(toRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("render: resample %d -> %d: %w", fromRate, toRate, err)
		}
		wide := make([]float64, len(in))
		for i, v := range in {
			wide[i] = float64(v)
		}
		out := r.Process(wide)
		channels[c] = make([]float32, len(out))
		for i, v := range out {
			channels[c][i] = float32(v)
		}
	}
	n := min(len(channels[0]), len(channels[1]))
	return channels[0][:n], channels[1][:n], nil
}
