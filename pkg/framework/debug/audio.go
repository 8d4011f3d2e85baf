package debug

import (
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

// BufferStats summarizes a rendered audio buffer.
type BufferStats struct {
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
}

const (
	clipThreshold    = 0.999
	dcThreshold      = 0.01
	silenceThreshold = 0.0001
)

func (s BufferStats) Silent() bool {
	return s.RMS < silenceThreshold
}

// AnalyzeBuffer measures peak, RMS and DC of buffer. NaN and Inf samples are
// counted and excluded from the other figures.
func AnalyzeBuffer(buffer []float32) BufferStats {
	var st BufferStats
	if len(buffer) == 0 {
		return st
	}

	var sum, sumSquares float64
	finite := 0
	for _, v := range buffer {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			st.NaNCount++
			continue
		}
		a := float32(math.Abs(f))
		if a > st.Peak {
			st.Peak = a
		}
		if a >= clipThreshold {
			st.ClippedSamples++
		}
		sum += f
		sumSquares += f * f
		finite++
	}
	if finite > 0 {
		st.RMS = float32(math.Sqrt(sumSquares / float64(finite)))
		st.DC = float32(sum / float64(finite))
	}
	return st
}

// CheckBuffer returns human readable problems found in buffer.
func CheckBuffer(buffer []float32, name string) []string {
	var issues []string
	st := AnalyzeBuffer(buffer)

	if st.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d non-finite samples", name, st.NaNCount))
	}
	if st.ClippedSamples > 0 {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, st.ClippedSamples))
	}
	if math.Abs(float64(st.DC)) > dcThreshold {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.3f", name, st.DC))
	}
	return issues
}

// NormalizePeak scales buffers in place so the loudest sample across all
// of them reaches target. Silent input is left untouched.
func NormalizePeak(target float32, buffers ...[]float32) float32 {
	var peak float32
	for _, b := range buffers {
		if len(b) == 0 {
			continue
		}
		hi := vek32.Max(b)
		lo := vek32.Min(b)
		if hi > peak {
			peak = hi
		}
		if -lo > peak {
			peak = -lo
		}
	}
	if peak < silenceThreshold {
		return 1
	}
	gain := target / peak
	for _, b := range buffers {
		vek32.MulNumber_Inplace(b, gain)
	}
	return gain
}

// LogBufferStats logs statistics about a rendered buffer.
func (l *Logger) LogBufferStats(buffer []float32, name string) {
	st := AnalyzeBuffer(buffer)
	l.Info("%s: %d samples, peak %.3f, rms %.3f, dc %.5f", name, len(buffer), st.Peak, st.RMS, st.DC)
	for _, issue := range CheckBuffer(buffer, name) {
		l.Warn("%s", issue)
	}
}
