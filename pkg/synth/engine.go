// Package synth is the polyphonic voice engine: parameters, voices, the
// voice pool and the block-level Engine that ties them to MIDI input and
// the effects chain.
package synth

import (
	"errors"
	"fmt"
	"time"

	"github.com/justyntemme/polysynth/pkg/arp"
	"github.com/justyntemme/polysynth/pkg/dsp"
	"github.com/justyntemme/polysynth/pkg/dsp/utility"
	"github.com/justyntemme/polysynth/pkg/framework/debug"
	fwdsp "github.com/justyntemme/polysynth/pkg/framework/dsp"
	"github.com/justyntemme/polysynth/pkg/framework/param"
	"github.com/justyntemme/polysynth/pkg/framework/process"
	"github.com/justyntemme/polysynth/pkg/fx"
	"github.com/justyntemme/polysynth/pkg/midi"
)

var (
	ErrInvalidSampleRate = errors.New("synth: invalid sample rate")
	ErrInvalidBlockSize  = errors.New("synth: invalid block size")
	ErrEngineRunning     = errors.New("synth: engine is running")
)

// masterSmoothingMs is the settle time of master volume changes
const masterSmoothingMs = 20.0

// ControllerMap binds MIDI CC numbers to parameters. A CC value v sets the
// parameter's normalized value to v/127.
var ControllerMap = map[uint8]uint32{
	16: ParamLFO1Rate,
	21: ParamDCO1PWM,
	28: ParamUnisonDetune,
	29: ParamVCFFreq,
	30: ParamVCFRes,
	37: ParamArpRate,
}

// Stats counts events the audio path could not act on. It is read and
// reset through Engine.LogStats.
type Stats struct {
	DroppedEvents  int
	OversizeBlocks int
}

// Engine renders the synth one block at a time. Process runs on a single
// audio goroutine; everything else is meant to be called before playback
// or between blocks.
type Engine struct {
	registry *param.Registry
	handles  *handles
	params   Params
	logger   *debug.Logger

	pool      *Pool
	arp       *arp.Arpeggiator
	fx        *fx.Chain
	bus       *fwdsp.Chain
	dcBlocker *utility.DCBlocker
	master    *param.Smoother
	controls  [numNotes]*param.Parameter
	profiler  *debug.BlockProfiler

	mode   PolyphonyMode
	legato bool

	mono, left, right, gain []float32

	sampleRate float64
	maxBlock   int
	channels   int
	prepared   bool
	stats      Stats
}

// NewEngine builds an engine reading registry. A nil registry gets the
// default parameter set and a nil logger the package default.
func NewEngine(registry *param.Registry, logger *debug.Logger) (*Engine, error) {
	if registry == nil {
		r, err := NewParameters()
		if err != nil {
			return nil, err
		}
		registry = r
	}
	if logger == nil {
		logger = debug.Default()
	}
	chain, err := fx.New()
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	e := &Engine{
		registry:  registry,
		handles:   resolveHandles(registry),
		params:    DefaultParams(),
		logger:    logger.Named("synth"),
		pool:      NewPool(MaxVoices),
		arp:       arp.New(),
		fx:        chain,
		dcBlocker: utility.NewDCBlocker(utility.DefaultDCCutoff, 0),
		master:    param.NewSmoother(param.ExponentialSmoothing, 0.999),
	}
	e.bus = fwdsp.NewChain("bus").Add("dc", e.dcBlocker)
	for cc, id := range ControllerMap {
		e.controls[cc] = registry.Get(id)
	}
	e.handles.read(&e.params)
	e.mode = e.params.Mode
	e.legato = e.params.Legato
	e.pool.SetMode(e.mode, e.legato)
	e.pool.UpdateParameters(&e.params)
	return e, nil
}

// SetMaxVoices resizes the voice pool. It is only allowed before Prepare.
func (e *Engine) SetMaxVoices(n int) error {
	if e.prepared {
		return ErrEngineRunning
	}
	e.pool = NewPool(n)
	e.pool.SetMode(e.mode, e.legato)
	e.pool.UpdateParameters(&e.params)
	return nil
}

// Prepare sizes every buffer for blocks of up to maxBlock samples.
func (e *Engine) Prepare(sampleRate float64, maxBlock, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if maxBlock <= 0 || maxBlock > dsp.MaxBlockSize {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, maxBlock)
	}
	if err := e.pool.Prepare(sampleRate, maxBlock); err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	if err := e.fx.Prepare(sampleRate); err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	e.arp.Prepare(sampleRate)
	e.dcBlocker.SetCutoff(utility.DefaultDCCutoff, sampleRate)
	e.master.SetTimeConstant(sampleRate, masterSmoothingMs)

	e.sampleRate = sampleRate
	e.maxBlock = maxBlock
	e.channels = max(1, channels)
	e.mono = make([]float32, maxBlock)
	e.left = make([]float32, maxBlock)
	e.right = make([]float32, maxBlock)
	e.gain = make([]float32, maxBlock)
	e.prepared = true

	e.Reset()
	e.logger.Info("prepared: %.0f Hz, block %d, %d voices, mode %s",
		sampleRate, maxBlock, e.pool.Size(), e.mode)
	return nil
}

// Reset silences the engine and clears all effect tails.
func (e *Engine) Reset() {
	e.pool.Reset()
	e.arp.Reset()
	e.fx.Reset()
	e.bus.Reset()
	e.handles.read(&e.params)
	e.master.Reset(e.params.MasterVolume)
}

// EnableProfiling starts measuring render load per block.
func (e *Engine) EnableProfiling() *debug.BlockProfiler {
	e.profiler = debug.NewBlockProfiler(e.sampleRate)
	return e.profiler
}

func (e *Engine) Registry() *param.Registry     { return e.registry }
func (e *Engine) Pool() *Pool                   { return e.pool }
func (e *Engine) Arpeggiator() *arp.Arpeggiator { return e.arp }
func (e *Engine) Effects() *fx.Chain            { return e.fx }
func (e *Engine) SampleRate() float64           { return e.sampleRate }
func (e *Engine) MaxBlockSize() int             { return e.maxBlock }

// Params returns the snapshot taken for the last block.
func (e *Engine) Params() Params {
	return e.params
}

// Process renders one block into ctx.Output. Note events are applied at
// their sample offsets; events has arpeggiator output appended to it.
func (e *Engine) Process(ctx *process.Context, events *midi.Buffer) {
	n := ctx.NumSamples()
	if !e.prepared || n == 0 {
		ctx.Clear()
		return
	}
	var start time.Time
	if e.profiler != nil {
		start = time.Now()
	}
	if n > e.maxBlock {
		e.stats.OversizeBlocks++
		for _, out := range ctx.Output {
			clear(out[e.maxBlock:])
		}
		n = e.maxBlock
	}

	e.updateParameters()

	if events != nil {
		e.arp.ProcessBlock(events, n)
		events.SortByOffset()
		e.stats.DroppedEvents += events.Dropped()
	}

	mono := e.mono[:n]
	dsp.Clear(mono)
	pos := 0
	if events != nil {
		for i := 0; i < events.Len(); i++ {
			ev := events.At(i)
			offset := max(0, min(n, int(ev.Offset)))
			if offset > pos {
				e.pool.Render(mono, pos, offset-pos)
				pos = offset
			}
			e.handleEvent(ev)
		}
	}
	if pos < n {
		e.pool.Render(mono, pos, n-pos)
	}

	e.bus.Process(mono)

	left, right := e.left[:n], e.right[:n]
	copy(left, mono)
	copy(right, mono)
	e.fx.ProcessStereo(left, right)

	gain := e.gain[:n]
	e.master.Fill(gain)
	dsp.Multiply(left, gain)
	dsp.Multiply(right, gain)

	ctx.WriteStereo(left, right)

	if e.profiler != nil {
		e.profiler.Record(n, time.Since(start))
	}
}

// LogStats reports and clears the audio-path counters. Call it from the
// control side, never from inside Process.
func (e *Engine) LogStats() Stats {
	s := e.stats
	e.stats = Stats{}
	if s.DroppedEvents > 0 {
		e.logger.Warn("dropped %d events: event buffer full", s.DroppedEvents)
	}
	if s.OversizeBlocks > 0 {
		e.logger.Warn("truncated %d blocks longer than %d samples", s.OversizeBlocks, e.maxBlock)
	}
	if e.profiler != nil && e.profiler.Blocks() > 0 {
		e.logger.Debug("%s", e.profiler.Report())
	}
	return s
}

func (e *Engine) updateParameters() {
	p := &e.params
	e.handles.read(p)

	if p.Mode != e.mode || p.Legato != e.legato {
		e.mode = p.Mode
		e.legato = p.Legato
		e.pool.SetMode(p.Mode, p.Legato)
	}
	e.pool.UpdateParameters(p)
	e.arp.SetParameters(p.Arp.Enabled, p.Arp.Mode, p.Arp.Rate, p.Arp.Octaves, p.Arp.Pattern)
	e.fx.SetParameters(p.FX)
	e.master.SetTarget(p.MasterVolume)
}

func (e *Engine) handleEvent(ev midi.Event) {
	switch {
	case ev.IsNoteOn():
		e.pool.NoteOn(ev.Note(), ev.Velocity())
	case ev.IsNoteOff():
		e.pool.NoteOff(ev.Note(), ev.Velocity())
	case ev.Kind == midi.EventTypePitchBend:
		e.pool.SetPitchBend(ev.NormalizedBend())
	case ev.Kind == midi.EventTypeControlChange:
		e.handleController(ev.Data1, ev.Data2)
	}
}

func (e *Engine) handleController(cc, value uint8) {
	switch cc {
	case midi.CCModWheel:
		e.pool.SetModWheel(float32(value) / 127)
	case midi.CCSustain:
		e.pool.SetSustain(value >= 64)
	case midi.CCAllNotesOff:
		e.pool.AllNotesOff(true)
	case midi.CCAllSoundOff:
		e.pool.AllNotesOff(false)
	default:
		if p := e.controls[cc&0x7F]; p != nil {
			// takes effect from the next block's snapshot
			p.SetValue(float64(value) / 127)
		}
	}
}
