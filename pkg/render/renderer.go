package render

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/justyntemme/polysynth/pkg/framework/process"
	"github.com/justyntemme/polysynth/pkg/midi"
	"github.com/justyntemme/polysynth/pkg/synth"
)

const (
	// eventCapacity bounds the events delivered in one block
	eventCapacity = 256
	// bytesPerFrame is one stereo frame of 32-bit float
	bytesPerFrame = 8
)

var ErrNotPrepared = errors.New("render: engine is not prepared")

// Renderer feeds a schedule through a prepared engine block by block.
type Renderer struct {
	engine   *synth.Engine
	schedule Schedule
	next     int

	ctx    *process.Context
	events *midi.Buffer
	out    [][]float32
	block  int

	frame int64
	end   int64

	pending []byte
}

// NewRenderer renders until tailFrames after the last scheduled event.
// The engine must already be prepared for at least block samples.
func NewRenderer(engine *synth.Engine, schedule Schedule, block int, tailFrames int64) (*Renderer, error) {
	if engine.MaxBlockSize() == 0 {
		return nil, ErrNotPrepared
	}
	block = max(1, min(block, engine.MaxBlockSize()))
	r := &Renderer{
		engine:   engine,
		schedule: schedule,
		ctx:      process.NewContext(block, 2, engine.Registry()),
		events:   midi.NewBuffer(eventCapacity),
		out:      [][]float32{make([]float32, block), make([]float32, block)},
		block:    block,
		end:      schedule.End() + max(0, tailFrames),
		pending:  make([]byte, 0, block*bytesPerFrame),
	}
	return r, nil
}

// Frame is the number of frames rendered so far.
func (r *Renderer) Frame() int64 { return r.frame }

// Length is the total number of frames the renderer produces.
func (r *Renderer) Length() int64 { return r.end }

func (r *Renderer) Done() bool { return r.frame >= r.end }

// Next renders the following block and returns views of the left and
// right channels, valid until the next call. It returns nil slices once
// the schedule and tail are exhausted.
func (r *Renderer) Next() (left, right []float32) {
	if r.Done() {
		return nil, nil
	}
	n := int(min(int64(r.block), r.end-r.frame))
	stop := r.frame + int64(n)

	r.events.Clear()
	for r.next < len(r.schedule) && r.schedule[r.next].Frame < stop {
		t := r.schedule[r.next]
		ev := t.Event
		ev.Offset = int32(max(0, t.Frame-r.frame))
		r.events.Add(ev)
		r.next++
	}

	r.ctx.Bind(r.out, 0, n)
	r.engine.Process(r.ctx, r.events)
	r.frame = stop
	return r.out[0][:n], r.out[1][:n]
}

// RenderAll renders everything that is left into new buffers.
func (r *Renderer) RenderAll() (left, right []float32) {
	remaining := max(0, r.end-r.frame)
	left = make([]float32, 0, remaining)
	right = make([]float32, 0, remaining)
	for !r.Done() {
		l, rr := r.Next()
		left = append(left, l...)
		right = append(right, rr...)
	}
	return left, right
}

// Read implements io.Reader with interleaved little-endian float32 stereo
// frames, rendering on demand. It returns io.EOF after the tail.
func (r *Renderer) Read(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		if len(r.pending) == 0 {
			if r.Done() {
				break
			}
			left, right := r.Next()
			r.pending = r.pending[:0]
			for i := range left {
				r.pending = binary.LittleEndian.AppendUint32(r.pending, math.Float32bits(left[i]))
				r.pending = binary.LittleEndian.AppendUint32(r.pending, math.Float32bits(right[i]))
			}
		}
		n := copy(p[written:], r.pending)
		r.pending = r.pending[n:]
		written += n
	}
	if written == 0 && r.Done() {
		return 0, io.EOF
	}
	return written, nil
}
