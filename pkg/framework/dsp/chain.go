// Package dsp chains block processors into serial signal paths.
package dsp

import (
	"errors"
	"fmt"
)

// ErrEmptyChain is returned by the builders when no stage was added.
var ErrEmptyChain = errors.New("chain is empty")

// Processor processes a mono buffer in place.
type Processor interface {
	Process(buffer []float32)
	Reset()
}

// StereoProcessor processes a pair of equally sized buffers in place.
type StereoProcessor interface {
	ProcessStereo(left, right []float32)
	Reset()
}

// Bypasser is implemented by stages that can tell, for their current
// settings, that processing would leave the signal untouched. Chains skip
// such stages.
type Bypasser interface {
	Bypassed() bool
}

// ProcessorFunc allows using a function as a Processor.
type ProcessorFunc func([]float32)

func (f ProcessorFunc) Process(buffer []float32) {
	f(buffer)
}

func (f ProcessorFunc) Reset() {}

// Dual runs one mono processor per channel as a stereo stage.
type Dual struct {
	Left, Right Processor
}

func (d Dual) ProcessStereo(left, right []float32) {
	d.Left.Process(left)
	d.Right.Process(right)
}

func (d Dual) Reset() {
	d.Left.Reset()
	d.Right.Reset()
}

// Bypassed reports true only when both sides are bypassed.
func (d Dual) Bypassed() bool {
	return bypassed(d.Left) && bypassed(d.Right)
}

func bypassed(p any) bool {
	b, ok := p.(Bypasser)
	return ok && b.Bypassed()
}

type stage[P any] struct {
	name   string
	p      P
	bypass Bypasser
}

func newStage[P any](name string, p P) stage[P] {
	b, _ := any(p).(Bypasser)
	return stage[P]{name: name, p: p, bypass: b}
}

func (s *stage[P]) skip() bool {
	return s.bypass != nil && s.bypass.Bypassed()
}

// Chain is a serial chain of mono processors.
type Chain struct {
	name   string
	stages []stage[Processor]
	bypass bool
}

func NewChain(name string) *Chain {
	return &Chain{name: name}
}

func (c *Chain) Add(name string, p Processor) *Chain {
	c.stages = append(c.stages, newStage(name, p))
	return c
}

func (c *Chain) AddFunc(name string, fn func([]float32)) *Chain {
	return c.Add(name, ProcessorFunc(fn))
}

func (c *Chain) Process(buffer []float32) {
	if c.bypass {
		return
	}
	for i := range c.stages {
		s := &c.stages[i]
		if s.skip() {
			continue
		}
		s.p.Process(buffer)
	}
}

func (c *Chain) Reset() {
	for i := range c.stages {
		c.stages[i].p.Reset()
	}
}

func (c *Chain) Name() string          { return c.name }
func (c *Chain) SetBypass(bypass bool) { c.bypass = bypass }
func (c *Chain) Bypassed() bool        { return c.bypass }
func (c *Chain) IsEmpty() bool         { return len(c.stages) == 0 }
func (c *Chain) Count() int            { return len(c.stages) }

// Names lists the stage names in processing order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.name
	}
	return names
}

// StereoChain is a serial chain of stereo processors. It is itself a
// StereoProcessor so chains nest.
type StereoChain struct {
	name   string
	stages []stage[StereoProcessor]
	bypass bool
}

func NewStereoChain(name string) *StereoChain {
	return &StereoChain{name: name}
}

func (c *StereoChain) Add(name string, p StereoProcessor) *StereoChain {
	c.stages = append(c.stages, newStage(name, p))
	return c
}

// AddMono adds a pair of mono processors, one per channel.
func (c *StereoChain) AddMono(name string, left, right Processor) *StereoChain {
	return c.Add(name, Dual{Left: left, Right: right})
}

func (c *StereoChain) ProcessStereo(left, right []float32) {
	if c.bypass {
		return
	}
	for i := range c.stages {
		s := &c.stages[i]
		if s.skip() {
			continue
		}
		s.p.ProcessStereo(left, right)
	}
}

func (c *StereoChain) Reset() {
	for i := range c.stages {
		c.stages[i].p.Reset()
	}
}

// Stage returns the processor registered under name.
func (c *StereoChain) Stage(name string) (StereoProcessor, bool) {
	for _, s := range c.stages {
		if s.name == name {
			return s.p, true
		}
	}
	return nil, false
}

// Active lists the stages that would run for the current settings.
func (c *StereoChain) Active() []string {
	var names []string
	if c.bypass {
		return names
	}
	for i := range c.stages {
		if !c.stages[i].skip() {
			names = append(names, c.stages[i].name)
		}
	}
	return names
}

func (c *StereoChain) Name() string          { return c.name }
func (c *StereoChain) SetBypass(bypass bool) { c.bypass = bypass }
func (c *StereoChain) Bypassed() bool        { return c.bypass }
func (c *StereoChain) IsEmpty() bool         { return len(c.stages) == 0 }
func (c *StereoChain) Count() int            { return len(c.stages) }

func (c *StereoChain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.name
	}
	return names
}

// StereoBuilder assembles a StereoChain and collects the first error.
type StereoBuilder struct {
	chain *StereoChain
	err   error
}

func NewStereoBuilder(name string) *StereoBuilder {
	return &StereoBuilder{chain: NewStereoChain(name)}
}

func (b *StereoBuilder) With(name string, p StereoProcessor) *StereoBuilder {
	if b.err != nil {
		return b
	}
	if p == nil {
		b.err = fmt.Errorf("chain %s: stage %q has no processor", b.chain.name, name)
		return b
	}
	if _, dup := b.chain.Stage(name); dup {
		b.err = fmt.Errorf("chain %s: duplicate stage %q", b.chain.name, name)
		return b
	}
	b.chain.Add(name, p)
	return b
}

func (b *StereoBuilder) WithMono(name string, left, right Processor) *StereoBuilder {
	if left == nil || right == nil {
		if b.err == nil {
			b.err = fmt.Errorf("chain %s: stage %q has no processor", b.chain.name, name)
		}
		return b
	}
	return b.With(name, Dual{Left: left, Right: right})
}

func (b *StereoBuilder) Build() (*StereoChain, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.chain.IsEmpty() {
		return nil, fmt.Errorf("chain %s: %w", b.chain.name, ErrEmptyChain)
	}
	return b.chain, nil
}
