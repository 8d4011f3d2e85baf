// Package reverb implements the Freeverb stereo reverb used at the end of
// the effects chain.
package reverb

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// Comb is a lowpass feedback comb filter.
type Comb struct {
	buffer   []float32
	idx      int
	feedback float32
	damp1    float32
	damp2    float32
	store    float32
}

func NewComb(delaySamples int) *Comb {
	c := &Comb{feedback: 0.5}
	c.Resize(delaySamples)
	c.SetDamping(0.5)
	return c
}

// Resize reallocates the delay buffer and clears state.
func (c *Comb) Resize(delaySamples int) {
	c.buffer = make([]float32, max(delaySamples, 1))
	c.idx = 0
	c.store = 0
}

func (c *Comb) SetFeedback(feedback float32) {
	c.feedback = min(max(feedback, 0), 1)
}

// SetDamping sets the lowpass coefficient in the feedback path, 0..1.
func (c *Comb) SetDamping(damping float32) {
	c.damp1 = min(max(damping, 0), 1)
	c.damp2 = 1 - c.damp1
}

func (c *Comb) Process(input float32) float32 {
	out := c.buffer[c.idx]
	c.store = float32(dspcore.FlushDenormals(float64(out*c.damp2 + c.store*c.damp1)))
	c.buffer[c.idx] = input + c.feedback*c.store
	if c.idx++; c.idx >= len(c.buffer) {
		c.idx = 0
	}
	return out
}

func (c *Comb) Reset() {
	clear(c.buffer)
	c.idx = 0
	c.store = 0
}

// Allpass is a Schroeder allpass diffuser.
type Allpass struct {
	buffer   []float32
	idx      int
	feedback float32
}

func NewAllpass(delaySamples int) *Allpass {
	a := &Allpass{feedback: 0.5}
	a.Resize(delaySamples)
	return a
}

func (a *Allpass) Resize(delaySamples int) {
	a.buffer = make([]float32, max(delaySamples, 1))
	a.idx = 0
}

func (a *Allpass) SetFeedback(feedback float32) {
	a.feedback = feedback
}

func (a *Allpass) Process(input float32) float32 {
	buf := a.buffer[a.idx]
	a.buffer[a.idx] = float32(dspcore.FlushDenormals(float64(input + a.feedback*buf)))
	if a.idx++; a.idx >= len(a.buffer) {
		a.idx = 0
	}
	return buf - input
}

func (a *Allpass) Reset() {
	clear(a.buffer)
	a.idx = 0
}
