package modulation

import (
	"math"

	"github.com/justyntemme/polysynth/pkg/dsp/delay"
	"github.com/justyntemme/polysynth/pkg/dsp/utility"
)

const (
	maxChorusVoices  = 4
	maxChorusDelayMs = 50.0
	maxChorusDepthMs = 10.0
)

// Chorus is a multi-voice modulated delay. Every voice reads the same
// stereo pair of delay lines through its own phase-offset sine LFO.
type Chorus struct {
	sampleRate float64

	rate     float64 // Hz
	depth    float64 // ms
	delay    float64 // ms
	mix      float64
	feedback float64
	spread   float64
	voices   int

	lines [2]delay.Line

	lfos [maxChorusVoices]LFO
	panL [maxChorusVoices]float32
	panR [maxChorusVoices]float32

	feedbackL float32
	feedbackR float32
}

func NewChorus(sampleRate float64) *Chorus {
	c := &Chorus{
		rate:   0.5,
		depth:  2.0,
		delay:  20.0,
		mix:    0.5,
		spread: 1.0,
		voices: 2,
	}
	for i := range c.lfos {
		c.lfos[i] = LFO{frequency: c.rate, noise: utility.NewNoiseGenerator(int64(i) + 1)}
	}
	c.SetSampleRate(sampleRate)
	return c
}

// SetSampleRate reallocates the delay lines. Not real-time safe.
func (c *Chorus) SetSampleRate(sampleRate float64) {
	c.sampleRate = sampleRate
	size := 0
	if sampleRate > 0 {
		size = int((maxChorusDelayMs+maxChorusDepthMs)*sampleRate/1000) + 4
	}
	for i := range c.lines {
		c.lines[i].Resize(size)
	}
	for i := range c.lfos {
		c.lfos[i].SetSampleRate(sampleRate)
	}
	c.layoutVoices()
	c.Reset()
}

// SetRate sets the LFO rate in Hz (0.01-10)
func (c *Chorus) SetRate(hz float64) {
	c.rate = math.Max(0.01, math.Min(10.0, hz))
	for i := range c.lfos {
		c.lfos[i].SetFrequency(c.rate)
	}
}

// SetDepth sets the modulation depth in milliseconds (0-10)
func (c *Chorus) SetDepth(ms float64) {
	c.depth = math.Max(0.0, math.Min(maxChorusDepthMs, ms))
}

// SetDelay sets the base delay in milliseconds (1-50)
func (c *Chorus) SetDelay(ms float64) {
	c.delay = math.Max(1.0, math.Min(maxChorusDelayMs, ms))
}

// SetMix sets the wet/dry mix (0=dry, 1=wet)
func (c *Chorus) SetMix(mix float64) {
	c.mix = math.Max(0.0, math.Min(1.0, mix))
}

func (c *Chorus) Mix() float64 {
	return c.mix
}

// SetFeedback sets the feedback amount (0-0.5)
func (c *Chorus) SetFeedback(feedback float64) {
	c.feedback = math.Max(0.0, math.Min(0.5, feedback))
}

func (c *Chorus) SetSpread(spread float64) {
	c.spread = math.Max(0.0, math.Min(1.0, spread))
	c.layoutVoices()
}

// SetVoices sets the number of chorus voices (1-4)
func (c *Chorus) SetVoices(voices int) {
	c.voices = max(1, min(maxChorusVoices, voices))
	c.layoutVoices()
}

func (c *Chorus) layoutVoices() {
	for v := 0; v < c.voices; v++ {
		c.lfos[v].SetShape(ShapeSine)
		c.lfos[v].SetPhase(float64(v) / float64(c.voices))

		if c.voices == 1 {
			c.panL[v], c.panR[v] = 1, 1
			continue
		}
		pan := (float64(v)/float64(c.voices-1) - 0.5) * c.spread
		angle := (pan + 0.5) * math.Pi / 2
		scale := 1 / float64(c.voices)
		c.panL[v] = float32(math.Cos(angle) * scale)
		c.panR[v] = float32(math.Sin(angle) * scale)
	}
}

// Bypassed reports whether the chorus is fully dry.
func (c *Chorus) Bypassed() bool {
	return c.mix == 0
}

// Tick processes one stereo frame.
func (c *Chorus) Tick(inL, inR float32) (float32, float32) {
	var wetL, wetR float32
	msToSamples := c.sampleRate / 1000.0
	for v := 0; v < c.voices; v++ {
		mod := float64(c.lfos[v].Next())
		d := (c.delay + c.depth*mod) * msToSamples
		wetL += c.lines[0].ReadHermite(d) * c.panL[v]
		wetR += c.lines[1].ReadHermite(d) * c.panR[v]
	}

	fb := float32(c.feedback)
	c.lines[0].Write(inL + c.feedbackL*fb)
	c.lines[1].Write(inR + c.feedbackR*fb)
	c.feedbackL = wetL
	c.feedbackR = wetR

	dry := float32(1 - c.mix)
	wet := float32(c.mix)
	return inL*dry + wetL*wet, inR*dry + wetR*wet
}

// ProcessStereo processes left and right in place.
func (c *Chorus) ProcessStereo(left, right []float32) {
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		left[i], right[i] = c.Tick(left[i], right[i])
	}
}

// Reset clears the delay line and restarts the LFOs
func (c *Chorus) Reset() {
	for i := range c.lines {
		c.lines[i].Reset()
	}
	for v := 0; v < maxChorusVoices; v++ {
		c.lfos[v].ResetPhase()
	}
	c.layoutVoices()
	c.feedbackL = 0
	c.feedbackR = 0
}
