package synth

import (
	"fmt"
	"math"

	"github.com/justyntemme/polysynth/pkg/dsp"
	"github.com/justyntemme/polysynth/pkg/dsp/envelope"
	"github.com/justyntemme/polysynth/pkg/dsp/filter"
	"github.com/justyntemme/polysynth/pkg/dsp/modulation"
	"github.com/justyntemme/polysynth/pkg/dsp/oscillator"
	"github.com/justyntemme/polysynth/pkg/dsp/sequencer"
	"github.com/justyntemme/polysynth/pkg/midi"
)

const (
	// TuningA4 is the reference pitch for note 69
	TuningA4 = 440.0

	// cutoff swing in Hz at full filter envelope amount
	filterEnvRange = 10000.0
	// cutoff swing in Hz at full matrix modulation
	filterModRange = 5000.0
	// unison slot phase spacing in cycles
	goldenPhase = 0.6180339887498949
)

// VoiceState tracks where a voice is in its lifetime
type VoiceState int

const (
	VoiceFree VoiceState = iota
	VoiceSounding
	VoiceReleasing
)

func (s VoiceState) String() string {
	switch s {
	case VoiceFree:
		return "Free"
	case VoiceSounding:
		return "Sounding"
	case VoiceReleasing:
		return "Releasing"
	}
	return "Unknown"
}

type unisonSlot struct {
	osc1 oscillator.Pair
	osc2 oscillator.Pair
}

// Voice renders one note: a stack of oscillator pairs through the filter
// and the amplitude envelope. All buffers are sized in Prepare.
type Voice struct {
	sampleRate float64
	state      VoiceState

	note     uint8
	velocity float32
	bend     float64
	modWheel float32
	baseFreq float64
	age      uint64
	elapsed  int

	ampEnv    *envelope.ADSR
	filterEnv *envelope.ADSR
	modEnv    *envelope.ADSR
	lfos      [2]*modulation.LFO
	drift     *modulation.Drift
	seq       *sequencer.Sequencer
	filter    *filter.MultiFilter
	matrix    modulation.Matrix

	slots   [MaxUnison]unisonSlot
	unison  int
	pending int
	detune  float64
	spread  [MaxUnison]float64 // frequency ratios
	offsets [MaxUnison]float64 // semitones

	p *Params

	sources modulation.Sources
	dests   modulation.Destinations

	scratch []float32
	ampBuf  []float32
}

// NewVoice creates an unprepared voice. seed decorrelates drift and the
// random LFO shapes between voices.
func NewVoice(seed int64) *Voice {
	v := &Voice{
		ampEnv:    envelope.New(0),
		filterEnv: envelope.New(0),
		modEnv:    envelope.New(0),
		drift:     modulation.NewDrift(0, seed),
		seq:       sequencer.New(0),
		filter:    filter.NewMultiFilter(),
		unison:    1,
		pending:   1,
	}
	for i := range v.lfos {
		v.lfos[i] = modulation.NewLFO(0)
		v.lfos[i].SetSeed(uint32(seed)*2 + uint32(i) + 1)
	}
	for i := range v.slots {
		v.slots[i].osc1 = *oscillator.NewPair(0)
		v.slots[i].osc2 = *oscillator.NewPair(0)
	}
	defaults := DefaultParams()
	v.UpdateParameters(&defaults)
	return v
}

// Prepare sizes the render buffers and configures every component for
// sampleRate.
func (v *Voice) Prepare(sampleRate float64, maxBlock int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("voice: %w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if maxBlock <= 0 {
		return fmt.Errorf("voice: invalid block size %d", maxBlock)
	}
	v.sampleRate = sampleRate
	v.ampEnv.SetSampleRate(sampleRate)
	v.filterEnv.SetSampleRate(sampleRate)
	v.modEnv.SetSampleRate(sampleRate)
	for _, l := range v.lfos {
		l.SetSampleRate(sampleRate)
	}
	v.drift.SetSampleRate(sampleRate)
	v.seq.SetSampleRate(sampleRate)
	for i := range v.slots {
		v.slots[i].osc1.SetSampleRate(sampleRate)
		v.slots[i].osc2.SetSampleRate(sampleRate)
	}
	if err := v.filter.Prepare(sampleRate); err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	v.scratch = make([]float32, maxBlock)
	v.ampBuf = make([]float32, maxBlock)
	v.Reset()
	return nil
}

// Reset silences the voice and clears all component state.
func (v *Voice) Reset() {
	v.state = VoiceFree
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.modEnv.Reset()
	for _, l := range v.lfos {
		l.Reset()
	}
	v.drift.Reset()
	v.seq.Reset()
	v.filter.Reset()
	for i := range v.slots {
		v.slots[i].osc1.Reset()
		v.slots[i].osc2.Reset()
	}
	v.elapsed = 0
}

// UpdateParameters applies a parameter snapshot. The unison count change
// waits for the next StartNote.
func (v *Voice) UpdateParameters(p *Params) {
	v.p = p

	v.ampEnv.SetParameters(p.AmpEnv.Attack, p.AmpEnv.Decay, p.AmpEnv.Sustain, p.AmpEnv.Release)
	v.ampEnv.SetCurve(p.AmpEnv.Curve)
	v.filterEnv.SetParameters(p.FilterEnv.Attack, p.FilterEnv.Decay, p.FilterEnv.Sustain, p.FilterEnv.Release)
	v.filterEnv.SetCurve(p.FilterEnv.Curve)
	v.modEnv.SetParameters(p.ModEnv.Attack, p.ModEnv.Decay, p.ModEnv.Sustain, p.ModEnv.Release)
	v.modEnv.SetCurve(p.ModEnv.Curve)

	for i, l := range v.lfos {
		l.SetFrequency(p.LFO[i].Rate)
		l.SetOnsetDelay(p.LFO[i].Delay)
		l.SetShape(p.LFO[i].Shape)
	}
	for i, s := range p.Slots {
		v.matrix.SetSlot(i, s.Source, s.Destination, s.Amount)
	}

	v.drift.SetAmount(p.Drift)

	v.seq.SetRate(p.Seq.Rate)
	v.seq.SetSlew(p.Seq.Slew)
	v.seq.SetSwing(p.Seq.Swing)
	v.seq.SetLength(p.Seq.Length)
	for i, s := range p.Seq.Steps {
		v.seq.SetStep(i, s)
	}

	if p.FilterType != v.filter.Type() {
		v.filter.SetType(p.FilterType)
	}
	v.filter.SetDrive(p.Drive)

	for i := range v.slots {
		v.slots[i].osc1.SetLevels(p.SawLevel, p.PulseLevel)
		v.slots[i].osc2.SetLevels(0, p.Osc2Level)
	}

	v.pending = p.Mode.UnisonCount()
	v.detune = p.Detune
}

// StartNote begins a note, stealing the voice if it was still sounding.
// Envelopes restart from their current level.
func (v *Voice) StartNote(note, velocity uint8, pitchWheel float64) {
	v.note = note & 0x7F
	v.velocity = float32(min(velocity, 127)) / 127
	v.bend = math.Max(-1, math.Min(1, pitchWheel))
	v.baseFreq = midi.NoteToFrequency(v.note, TuningA4)
	v.elapsed = 0

	v.unison = max(1, min(MaxUnison, v.pending))
	SpreadOffsets(v.unison, v.detune, v.offsets[:])
	for i := 0; i < v.unison; i++ {
		v.spread[i] = math.Exp2(v.offsets[i] / 12)
		if v.unison > 1 {
			phase := float64(i) * goldenPhase
			v.slots[i].osc1.SetPhase(phase)
			v.slots[i].osc2.SetPhase(phase)
		}
	}

	for _, l := range v.lfos {
		l.ResetPhase()
	}
	v.seq.Reset()

	v.ampEnv.NoteOn()
	v.filterEnv.NoteOn()
	v.modEnv.NoteOn()
	v.state = VoiceSounding
}

// ChangeNote glides a sounding voice to a new pitch without retriggering
// the envelopes, for legato playing.
func (v *Voice) ChangeNote(note, velocity uint8) {
	v.note = note & 0x7F
	v.velocity = float32(min(velocity, 127)) / 127
	v.baseFreq = midi.NoteToFrequency(v.note, TuningA4)
}

// StopNote releases the note. Without tail-off the voice is reclaimed
// immediately.
func (v *Voice) StopNote(velocity uint8, allowTailOff bool) {
	if v.state == VoiceFree {
		return
	}
	if !allowTailOff {
		v.ampEnv.Reset()
		v.filterEnv.Reset()
		v.modEnv.Reset()
		v.state = VoiceFree
		return
	}
	v.ampEnv.NoteOff()
	v.filterEnv.NoteOff()
	v.modEnv.NoteOff()
	if !v.ampEnv.IsActive() {
		v.state = VoiceFree
		return
	}
	v.state = VoiceReleasing
}

func (v *Voice) SetPitchBend(bend float64) {
	v.bend = math.Max(-1, math.Min(1, bend))
}

func (v *Voice) SetModWheel(value float32) {
	v.modWheel = max(0, min(1, value))
}

func (v *Voice) IsActive() bool       { return v.state != VoiceFree }
func (v *Voice) State() VoiceState    { return v.state }
func (v *Voice) Note() uint8          { return v.note }
func (v *Voice) Velocity() float32    { return v.velocity }
func (v *Voice) Unison() int          { return v.unison }
func (v *Voice) Age() uint64          { return v.age }
func (v *Voice) Elapsed() int         { return v.elapsed }
func (v *Voice) Level() float64       { return v.ampEnv.Level() }
func (v *Voice) Filter() filter.Model { return v.filter.Type() }

// RenderBlock adds n samples of the voice into out starting at start.
func (v *Voice) RenderBlock(out []float32, start, n int) {
	if v.state == VoiceFree || v.sampleRate <= 0 || start < 0 {
		return
	}
	n = min(n, len(v.scratch), len(out)-start)
	if n <= 0 {
		return
	}
	p := v.p

	// control-rate sources, sampled at block start
	src := &v.sources
	src[modulation.SourceFilterEnvelope] = v.filterEnv.Advance(n)
	src[modulation.SourceModEnvelope] = v.modEnv.Advance(n)
	src[modulation.SourceAmplitudeEnvelope] = v.ampEnv.Shape(float32(v.ampEnv.Level()))
	src[modulation.SourceLFO1] = v.lfos[0].AdvanceBlock(n)
	src[modulation.SourceLFO2] = v.lfos[1].AdvanceBlock(n)
	src[modulation.SourceVelocity] = v.velocity
	src[modulation.SourceModWheel] = v.modWheel
	src[modulation.SourceKeyTrack] = float32(v.note) / 127
	src[modulation.SourceControlSequencer] = v.seq.Advance(n)
	drift := v.drift.Advance(n)

	v.matrix.Process(src, &v.dests)
	dst := &v.dests

	bend := float32(v.bend * PitchBendRange)
	ratio1 := float64(dsp.SemitonesToRatio(dst[modulation.DestOsc1Pitch]*12 + bend))
	ratio2 := float64(dsp.SemitonesToRatio(dst[modulation.DestOsc2Pitch]*12 + bend + float32(p.Osc2Semitones)))
	driftRatio := modulation.PitchRatio(drift)
	pw := p.PulseWidth + float64(dst[modulation.DestOsc1PulseWidth])*0.5
	osc2 := p.Osc2Level > 0

	for i := 0; i < v.unison; i++ {
		f := v.baseFreq * v.spread[i] * driftRatio
		s := &v.slots[i]
		s.osc1.SetFrequency(f * ratio1)
		s.osc1.SetPulseWidth(pw)
		if osc2 {
			s.osc2.SetFrequency(f * ratio2)
		}
	}

	keyTrack := float64(dsp.Pow2(float32((float64(v.note) - 60) / 12 * p.KeyTrack)))
	cutoff := p.Cutoff +
		p.FilterEnvAmount*float64(src[modulation.SourceFilterEnvelope])*filterEnvRange +
		float64(dst[modulation.DestFilterCutoff])*filterModRange
	v.filter.SetCutoff(cutoff * keyTrack * modulation.CutoffMultiplier(drift))
	v.filter.SetResonance(p.Resonance + float64(dst[modulation.DestFilterResonance]))

	buf := v.scratch[:n]
	dsp.Clear(buf)
	for i := 0; i < v.unison; i++ {
		v.slots[i].osc1.RenderAdd(buf)
		if osc2 {
			v.slots[i].osc2.RenderAdd(buf)
		}
	}
	dsp.Scale(buf, UnisonGain(v.unison))

	v.filter.Process(buf)

	amp := v.ampBuf[:n]
	v.ampEnv.Process(amp)
	dsp.Scale(amp, 1-p.VelocitySens+p.VelocitySens*v.velocity)
	dsp.Multiply(buf, amp)
	dsp.Add(out[start:start+n], buf)

	v.elapsed += n
	if !v.ampEnv.IsActive() {
		v.state = VoiceFree
	}
}
