package delay

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/justyntemme/polysynth/pkg/dsp/filter"
	"github.com/justyntemme/polysynth/pkg/dsp/interpolation"
)

const (
	MaxTime      = 2.0
	MaxFeedback  = 0.95
	DefaultTone  = 8000.0
	timeGlideSec = 0.05
)

// Echo is a stereo feedback delay: each channel writes in + delayed*fb and
// outputs in*(1-mix) + delayed*mix. The feedback path runs through a
// lowpass tone filter. Time changes glide instead of jumping.
type Echo struct {
	sampleRate float64
	lines      [2]Line
	tone       [2]filter.Biquad
	toneHz     float64

	time     float64
	current  float64
	glide    float32
	feedback float32
	mix      float32
}

func NewEcho(sampleRate float64) *Echo {
	e := &Echo{time: 0.25, toneHz: DefaultTone}
	e.SetSampleRate(sampleRate)
	return e
}

// SetSampleRate resizes the lines for MaxTime and clears state. It
// allocates.
func (e *Echo) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	e.sampleRate = sampleRate
	for i := range e.lines {
		e.lines[i].Resize(int(MaxTime*sampleRate) + 4)
	}
	e.glide = interpolation.SmoothingFactor(timeGlideSec, sampleRate)
	e.SetTone(e.toneHz)
	e.Reset()
}

// SetTime sets the delay time in seconds, clamped to (0, MaxTime].
func (e *Echo) SetTime(seconds float64) {
	e.time = min(max(seconds, 0), MaxTime)
}

func (e *Echo) Time() float64 { return e.time }

func (e *Echo) SetFeedback(fb float32) {
	e.feedback = min(max(fb, 0), MaxFeedback)
}

func (e *Echo) Feedback() float32 { return e.feedback }

func (e *Echo) SetMix(mix float32) {
	e.mix = min(max(mix, 0), 1)
}

func (e *Echo) Mix() float32 { return e.mix }

// SetTone sets the feedback lowpass cutoff in Hz.
func (e *Echo) SetTone(hz float64) {
	e.toneHz = hz
	if e.sampleRate <= 0 {
		return
	}
	for i := range e.tone {
		e.tone[i].SetLowpass(e.sampleRate, hz, 0.707)
	}
}

func (e *Echo) Bypassed() bool {
	return e.mix == 0 || e.sampleRate <= 0
}

func (e *Echo) ProcessStereo(left, right []float32) {
	if e.sampleRate <= 0 {
		return
	}
	right = right[:len(left)]
	target := e.time * e.sampleRate
	dry := 1 - e.mix
	for i := range left {
		e.current += (target - e.current) * float64(e.glide)
		left[i] = e.tick(0, left[i], dry)
		right[i] = e.tick(1, right[i], dry)
	}
}

func (e *Echo) tick(ch int, in, dry float32) float32 {
	line := &e.lines[ch]
	delayed := line.Read(e.current)
	fb := e.tone[ch].ProcessSample(delayed) * e.feedback
	line.Write(float32(dspcore.FlushDenormals(float64(in + fb))))
	return in*dry + delayed*e.mix
}

// Reset clears the lines and snaps the delay time to its target.
func (e *Echo) Reset() {
	for i := range e.lines {
		e.lines[i].Reset()
		e.tone[i].Reset()
	}
	e.current = e.time * e.sampleRate
}
