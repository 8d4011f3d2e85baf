// Package process carries one audio block through the engine.
package process

import "github.com/justyntemme/polysynth/pkg/framework/param"

// Context is the per-block view the engine renders into. Buffers are
// allocated once in NewContext; Bind re-slices caller memory into Output
// without allocating.
type Context struct {
	Output     [][]float32
	SampleRate float64

	views      [][]float32
	workBuffer []float32
	tempBuffer []float32

	params *param.Registry
}

// NewContext creates a context for up to channels outputs and blocks of
// at most maxBlockSize samples.
func NewContext(maxBlockSize, channels int, params *param.Registry) *Context {
	return &Context{
		views:      make([][]float32, channels),
		workBuffer: make([]float32, maxBlockSize),
		tempBuffer: make([]float32, maxBlockSize),
		params:     params,
	}
}

// Bind points Output at outputs[ch][start:start+n] for every channel the
// context was created for. Missing or short channels are skipped.
func (c *Context) Bind(outputs [][]float32, start, n int) {
	c.Output = c.views[:0]
	for ch := 0; ch < len(c.views) && ch < len(outputs); ch++ {
		if start+n > len(outputs[ch]) {
			break
		}
		c.Output = append(c.Output, outputs[ch][start:start+n])
	}
}

// Params returns the registry the context reads from.
func (c *Context) Params() *param.Registry {
	return c.params
}

// Param returns the normalized value of a parameter, or 0 when it is not
// registered.
func (c *Context) Param(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	if p := c.params.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the plain value of a parameter, or 0 when it is not
// registered.
func (c *Context) ParamPlain(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	if p := c.params.Get(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

// NumSamples is the length of the first output channel.
func (c *Context) NumSamples() int {
	if len(c.Output) > 0 {
		return len(c.Output[0])
	}
	return 0
}

func (c *Context) NumChannels() int {
	return len(c.Output)
}

func (c *Context) MaxBlockSize() int {
	return len(c.workBuffer)
}

// WorkBuffer returns the work buffer sized to the current block.
func (c *Context) WorkBuffer() []float32 {
	return c.workBuffer[:min(c.NumSamples(), len(c.workBuffer))]
}

// TempBuffer returns the temp buffer sized to the current block.
func (c *Context) TempBuffer() []float32 {
	return c.tempBuffer[:min(c.NumSamples(), len(c.tempBuffer))]
}

// Clear zeros the output buffers.
func (c *Context) Clear() {
	for _, ch := range c.Output {
		clear(ch)
	}
}
