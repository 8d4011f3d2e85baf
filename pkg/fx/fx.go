// Package fx is the post-synthesis effects chain: chorus, then feedback
// delay, then reverb, each skipped while its mix is zero.
package fx

import (
	"fmt"

	"github.com/justyntemme/polysynth/pkg/dsp/delay"
	"github.com/justyntemme/polysynth/pkg/dsp/modulation"
	"github.com/justyntemme/polysynth/pkg/dsp/reverb"
	"github.com/justyntemme/polysynth/pkg/framework/dsp"
)

// Stage names, in processing order.
const (
	StageChorus = "chorus"
	StageDelay  = "delay"
	StageReverb = "reverb"
)

// ChorusDepthMs is the modulation depth at ChorusDepth 1.
const ChorusDepthMs = 5.0

// Params is one block's worth of effect settings.
type Params struct {
	ChorusRate  float32 // Hz
	ChorusDepth float32 // 0..1
	ChorusMix   float32

	DelayTime     float32 // seconds
	DelayFeedback float32
	DelayMix      float32

	ReverbSize float32
	ReverbDamp float32
	ReverbMix  float32
}

// DefaultParams returns the settings used when a patch does not name
// them: every effect present but dry.
func DefaultParams() Params {
	return Params{
		ChorusRate:  1,
		ChorusDepth: 0.5,
		DelayTime:   0.5,
		ReverbSize:  reverb.DefaultRoomSize,
		ReverbDamp:  reverb.DefaultDamping,
	}
}

// Chain owns the three effects and runs them in place on a stereo pair.
type Chain struct {
	chorus *modulation.Chorus
	echo   *delay.Echo
	reverb *reverb.Freeverb
	chain  *dsp.StereoChain
	params Params
}

func New() (*Chain, error) {
	c := &Chain{
		chorus: modulation.NewChorus(0),
		echo:   delay.NewEcho(0),
		reverb: reverb.NewFreeverb(0),
	}
	chain, err := dsp.NewStereoBuilder("fx").
		With(StageChorus, c.chorus).
		With(StageDelay, c.echo).
		With(StageReverb, c.reverb).
		Build()
	if err != nil {
		return nil, fmt.Errorf("fx: %w", err)
	}
	c.chain = chain
	c.SetParameters(DefaultParams())
	return c, nil
}

// Prepare sizes every delay buffer for sampleRate. It allocates.
func (c *Chain) Prepare(sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("fx: invalid sample rate %v", sampleRate)
	}
	c.chorus.SetSampleRate(sampleRate)
	c.echo.SetSampleRate(sampleRate)
	c.reverb.SetSampleRate(sampleRate)
	c.SetParameters(c.params)
	c.Reset()
	return nil
}

// SetParameters applies p. Out-of-range values are clamped by the effects.
func (c *Chain) SetParameters(p Params) {
	c.params = p
	c.chorus.SetRate(float64(p.ChorusRate))
	c.chorus.SetDepth(float64(p.ChorusDepth) * ChorusDepthMs)
	c.chorus.SetMix(float64(p.ChorusMix))

	c.echo.SetTime(float64(p.DelayTime))
	c.echo.SetFeedback(p.DelayFeedback)
	c.echo.SetMix(p.DelayMix)

	if p.ReverbSize != c.reverb.RoomSize() {
		c.reverb.SetRoomSize(p.ReverbSize)
	}
	if p.ReverbDamp != c.reverb.Damping() {
		c.reverb.SetDamping(p.ReverbDamp)
	}
	if p.ReverbMix != c.reverb.Mix() {
		c.reverb.SetMix(p.ReverbMix)
	}
}

func (c *Chain) Parameters() Params { return c.params }

// ProcessStereo runs the chain in place. left and right must have equal
// length.
func (c *Chain) ProcessStereo(left, right []float32) {
	c.chain.ProcessStereo(left, right)
}

func (c *Chain) Reset() {
	c.chain.Reset()
}

// Active lists the stages that currently process audio.
func (c *Chain) Active() []string {
	return c.chain.Active()
}
