package synth

import (
	"fmt"

	"github.com/justyntemme/polysynth/pkg/arp"
	"github.com/justyntemme/polysynth/pkg/dsp/filter"
	"github.com/justyntemme/polysynth/pkg/dsp/modulation"
	"github.com/justyntemme/polysynth/pkg/dsp/sequencer"
	"github.com/justyntemme/polysynth/pkg/framework/param"
	"github.com/justyntemme/polysynth/pkg/fx"
)

// Parameter IDs. Groups leave room so new controls keep existing IDs.
const (
	ParamDCO1PWM uint32 = iota
	ParamDCO1Saw
	ParamDCO1Pulse
	ParamDCO2Pitch
	ParamDCO2Level
)

const (
	ParamVCFType uint32 = 20 + iota
	ParamVCFFreq
	ParamVCFRes
	ParamVCFDrive
	ParamVCFEnvAmt
	ParamVCFKybd
)

const (
	ParamVCAAttack uint32 = 40 + iota
	ParamVCADecay
	ParamVCASustain
	ParamVCARelease
	ParamVCACurve
	ParamVCAVelSens
)

const (
	ParamVCFAttack uint32 = 50 + iota
	ParamVCFDecay
	ParamVCFSustain
	ParamVCFRelease
	ParamVCFCurve
)

const (
	ParamModAttack uint32 = 60 + iota
	ParamModDecay
	ParamModSustain
	ParamModRelease
	ParamModCurve
)

const (
	ParamLFO1Rate uint32 = 80 + iota
	ParamLFO1Delay
	ParamLFO1Shape
	ParamLFO2Rate
	ParamLFO2Delay
	ParamLFO2Shape
)

const (
	ParamPolyphonyMode uint32 = 100 + iota
	ParamUnisonDetune
	ParamDrift
	ParamLegato
)

const (
	ParamSeqRate uint32 = 120 + iota
	ParamSeqSlew
	ParamSeqSwing
	ParamSeqLength
)

const (
	ParamArpOn uint32 = 140 + iota
	ParamArpMode
	ParamArpRate
	ParamArpOctaves
	ParamArpPattern
)

const (
	ParamChorusRate uint32 = 160 + iota
	ParamChorusDepth
	ParamChorusMix
	ParamDelayTime
	ParamDelayFeedback
	ParamDelayMix
	ParamReverbSize
	ParamReverbDamp
	ParamReverbMix
)

const ParamMasterVolume uint32 = 180

const (
	paramModSlotBase uint32 = 200
	paramSeqStepBase uint32 = 300
)

// Mod slot fields, offsets from the slot's first ID
const (
	ModSlotSource uint32 = iota
	ModSlotDestination
	ModSlotAmount
)

// ModSlotParamID returns the ID of one field of a modulation slot.
func ModSlotParamID(slot int, field uint32) uint32 {
	return paramModSlotBase + uint32(slot)*3 + field
}

// SeqStepParamID returns the ID of a sequencer step value.
func SeqStepParamID(step int) uint32 {
	return paramSeqStepBase + uint32(step)
}

// PitchBendRange is the wheel range in semitones either way.
const PitchBendRange = 2.0

// EnvelopeParams configures one ADSR; times in seconds.
type EnvelopeParams struct {
	Attack, Decay, Sustain, Release float64
	Curve                           float64
}

type LFOParams struct {
	Rate  float64 // Hz
	Delay float64 // seconds
	Shape modulation.Shape
}

type SequencerParams struct {
	Rate   float64 // steps per second
	Slew   float64 // seconds
	Swing  float64
	Length int
	Steps  [sequencer.MaxSteps]float32
}

type ArpParams struct {
	Enabled bool
	Mode    arp.Mode
	Rate    float64 // Hz, already mapped from the 0-1 control
	Octaves int
	Pattern int
}

// Params is the plain per-block snapshot of every parameter. The engine
// fills it once per block and hands it to the pool by pointer.
type Params struct {
	PulseWidth    float64
	SawLevel      float32
	PulseLevel    float32
	Osc2Semitones float64
	Osc2Level     float32

	FilterType      filter.Model
	Cutoff          float64
	Resonance       float64
	Drive           float64
	FilterEnvAmount float64
	KeyTrack        float64

	AmpEnv       EnvelopeParams
	FilterEnv    EnvelopeParams
	ModEnv       EnvelopeParams
	VelocitySens float32

	LFO   [2]LFOParams
	Slots [modulation.NumSlots]modulation.Slot

	Mode   PolyphonyMode
	Detune float64
	Drift  float64
	Legato bool

	Seq SequencerParams
	Arp ArpParams
	FX  fx.Params

	MasterVolume float64
}

// Defaults, shared by the registry and by handles that fail to resolve.
const (
	defaultPulseWidth  = 0.5
	defaultSawLevel    = 0.5
	defaultPulseLevel  = 0.5
	defaultCutoff      = 5000.0
	defaultResonance   = 0.1
	defaultAttack      = 0.01
	defaultDecay       = 0.1
	defaultSustain     = 0.7
	defaultRelease     = 0.3
	defaultLFORate     = 1.0
	defaultDetune      = 0.2
	defaultArpRate     = 0.2
	defaultMasterLevel = 0.8
)

// DefaultParams returns the snapshot of a freshly built registry.
func DefaultParams() Params {
	env := EnvelopeParams{
		Attack:  defaultAttack,
		Decay:   defaultDecay,
		Sustain: defaultSustain,
		Release: defaultRelease,
	}
	p := Params{
		PulseWidth: defaultPulseWidth,
		SawLevel:   defaultSawLevel,
		PulseLevel: defaultPulseLevel,
		FilterType: filter.ModelA,
		Cutoff:     defaultCutoff,
		Resonance:  defaultResonance,
		AmpEnv:     env,
		FilterEnv:  env,
		ModEnv:     env,
		Mode:       ModePoly,
		Detune:     defaultDetune,
		Seq: SequencerParams{
			Rate:   sequencer.DefaultRate,
			Length: sequencer.DefaultLength,
		},
		Arp: ArpParams{
			Mode:    arp.ModeUp,
			Rate:    arp.RateFromControl(defaultArpRate),
			Octaves: 1,
		},
		FX:           fx.DefaultParams(),
		MasterVolume: defaultMasterLevel,
	}
	for i := range p.LFO {
		p.LFO[i] = LFOParams{Rate: defaultLFORate, Shape: modulation.ShapeSine}
	}
	return p
}

// NewParameters builds the registry of every synth parameter.
func NewParameters() (*param.Registry, error) {
	r := param.NewRegistry()
	d := DefaultParams()

	add := func(group string, params ...*param.Parameter) error {
		if err := r.Add(params...); err != nil {
			return fmt.Errorf("register %s parameters: %w", group, err)
		}
		return nil
	}

	if err := add("oscillator",
		param.AmountParameter(ParamDCO1PWM, "dco1_pwm", d.PulseWidth).Name("DCO 1 Pulse Width").Build(),
		param.AmountParameter(ParamDCO1Saw, "dco1_saw", float64(d.SawLevel)).Name("DCO 1 Saw").Build(),
		param.AmountParameter(ParamDCO1Pulse, "dco1_pulse", float64(d.PulseLevel)).Name("DCO 1 Pulse").Build(),
		param.New(ParamDCO2Pitch, "dco2_pitch").Name("DCO 2 Pitch").
			Range(-24, 24).Steps(48).Default(0).Unit("st").
			Formatter(param.SemitoneFormatter, param.SemitoneParser).Build(),
		param.AmountParameter(ParamDCO2Level, "dco2_level", 0).Name("DCO 2 Level").Build(),
	); err != nil {
		return nil, err
	}

	if err := add("filter",
		param.Choice(ParamVCFType, "vcf_type", param.ChoiceNames(filter.ModelNames()...)).Name("VCF Type").Build(),
		param.FrequencyParameter(ParamVCFFreq, "vcf_freq", filter.MinCutoff, filter.MaxCutoff, d.Cutoff).Name("VCF Frequency").Build(),
		param.AmountParameter(ParamVCFRes, "vcf_res", d.Resonance).Name("VCF Resonance").Build(),
		param.AmountParameter(ParamVCFDrive, "vcf_drive", 0).Name("VCF Drive").Build(),
		param.BipolarParameter(ParamVCFEnvAmt, "vcf_env_amt", 0).Name("VCF Env Amount").Build(),
		param.AmountParameter(ParamVCFKybd, "vcf_kybd", 0).Name("VCF Key Track").Build(),
	); err != nil {
		return nil, err
	}

	envelopes := []struct {
		group string
		first uint32
		env   EnvelopeParams
	}{
		{"vca", ParamVCAAttack, d.AmpEnv},
		{"vcf", ParamVCFAttack, d.FilterEnv},
		{"mod", ParamModAttack, d.ModEnv},
	}
	for _, e := range envelopes {
		if err := add(e.group+" envelope",
			param.TimeParameter(e.first, e.group+"_attack", 0, 10, e.env.Attack).Build(),
			param.TimeParameter(e.first+1, e.group+"_decay", 0, 10, e.env.Decay).Build(),
			param.AmountParameter(e.first+2, e.group+"_sustain", e.env.Sustain).Build(),
			param.TimeParameter(e.first+3, e.group+"_release", 0, 10, e.env.Release).Build(),
			param.BipolarParameter(e.first+4, e.group+"_curve", e.env.Curve).Build(),
		); err != nil {
			return nil, err
		}
	}
	if err := add("vca", param.AmountParameter(ParamVCAVelSens, "vca_vel_sens", float64(d.VelocitySens)).Name("VCA Velocity").Build()); err != nil {
		return nil, err
	}

	shapes := param.ChoiceNames(modulation.ShapeNames()...)
	for i, first := range []uint32{ParamLFO1Rate, ParamLFO2Rate} {
		prefix := fmt.Sprintf("lfo%d", i+1)
		if err := add(prefix,
			param.RateParameter(first, prefix+"_rate", 0.05, 20, d.LFO[i].Rate).Build(),
			param.TimeParameter(first+1, prefix+"_delay", 0, 5, d.LFO[i].Delay).Build(),
			param.Choice(first+2, prefix+"_shape", shapes).Default(float64(d.LFO[i].Shape)).Build(),
		); err != nil {
			return nil, err
		}
	}

	sources := param.ChoiceNames(modulation.SourceNames()...)
	destinations := param.ChoiceNames(modulation.DestinationNames()...)
	for slot := 0; slot < modulation.NumSlots; slot++ {
		prefix := fmt.Sprintf("mod_slot_%d", slot+1)
		if err := add(prefix,
			param.Choice(ModSlotParamID(slot, ModSlotSource), prefix+"_src", sources).Build(),
			param.Choice(ModSlotParamID(slot, ModSlotDestination), prefix+"_dst", destinations).Build(),
			param.BipolarParameter(ModSlotParamID(slot, ModSlotAmount), prefix+"_amt", 0).Build(),
		); err != nil {
			return nil, err
		}
	}

	if err := add("voicing",
		param.Choice(ParamPolyphonyMode, "polyphony_mode", param.ChoiceNames(PolyphonyModeNames()...)).Name("Polyphony").Build(),
		param.AmountParameter(ParamUnisonDetune, "unison_detune", d.Detune).Name("Unison Detune").Build(),
		param.AmountParameter(ParamDrift, "drift", d.Drift).Name("Drift").Build(),
		param.SwitchParameter(ParamLegato, "legato", d.Legato).Name("Legato").Build(),
	); err != nil {
		return nil, err
	}

	if err := add("sequencer",
		param.RateParameter(ParamSeqRate, "seq_rate", 0.1, 50, d.Seq.Rate).Build(),
		param.TimeParameter(ParamSeqSlew, "seq_slew", 0, 1, d.Seq.Slew).Build(),
		param.New(ParamSeqSwing, "seq_swing").Range(0, sequencer.MaxSwing).Default(d.Seq.Swing).
			Formatter(param.PercentFormatter, param.PercentParser).Build(),
		param.New(ParamSeqLength, "seq_length").Range(1, sequencer.MaxSteps).Steps(sequencer.MaxSteps-1).
			Default(float64(d.Seq.Length)).Build(),
	); err != nil {
		return nil, err
	}
	for step := 0; step < sequencer.MaxSteps; step++ {
		key := fmt.Sprintf("seq_step_%d", step+1)
		if err := add("sequencer", param.BipolarParameter(SeqStepParamID(step), key, 0).Build()); err != nil {
			return nil, err
		}
	}

	if err := add("arp",
		param.SwitchParameter(ParamArpOn, "arp_on", d.Arp.Enabled).Name("Arp").Build(),
		param.Choice(ParamArpMode, "arp_mode", param.ChoiceNames(arp.ModeNames()...)).Build(),
		param.AmountParameter(ParamArpRate, "arp_rate", defaultArpRate).Build(),
		param.New(ParamArpOctaves, "arp_oct").Range(1, arp.MaxOctaves).Steps(arp.MaxOctaves-1).
			Default(float64(d.Arp.Octaves)).Build(),
		param.Choice(ParamArpPattern, "arp_pattern", param.ChoiceNames(arp.PatternNames()...)).Build(),
	); err != nil {
		return nil, err
	}

	if err := add("effects",
		param.RateParameter(ParamChorusRate, "fx_chorus_rate", 0.05, 10, float64(d.FX.ChorusRate)).Build(),
		param.AmountParameter(ParamChorusDepth, "fx_chorus_depth", float64(d.FX.ChorusDepth)).Build(),
		param.AmountParameter(ParamChorusMix, "fx_chorus_mix", float64(d.FX.ChorusMix)).Build(),
		param.TimeParameter(ParamDelayTime, "fx_delay_time", 0.001, 2, float64(d.FX.DelayTime)).Build(),
		param.New(ParamDelayFeedback, "fx_delay_feedback").Range(0, 0.95).Default(float64(d.FX.DelayFeedback)).
			Formatter(param.PercentFormatter, param.PercentParser).Build(),
		param.AmountParameter(ParamDelayMix, "fx_delay_mix", float64(d.FX.DelayMix)).Build(),
		param.AmountParameter(ParamReverbSize, "fx_reverb_size", float64(d.FX.ReverbSize)).Build(),
		param.AmountParameter(ParamReverbDamp, "fx_reverb_damp", float64(d.FX.ReverbDamp)).Build(),
		param.AmountParameter(ParamReverbMix, "fx_reverb_mix", float64(d.FX.ReverbMix)).Build(),
		param.AmountParameter(ParamMasterVolume, "master_volume", d.MasterVolume).Name("Master Volume").Build(),
	); err != nil {
		return nil, err
	}

	return r, nil
}

type envelopeHandles struct {
	attack, decay, sustain, release, curve param.FloatHandle
}

func (h *envelopeHandles) read(e *EnvelopeParams) {
	e.Attack = h.attack.Value()
	e.Decay = h.decay.Value()
	e.Sustain = h.sustain.Value()
	e.Release = h.release.Value()
	e.Curve = h.curve.Value()
}

type lfoHandles struct {
	rate, delay param.FloatHandle
	shape       param.ChoiceHandle
}

type slotHandles struct {
	src, dst param.ChoiceHandle
	amount   param.FloatHandle
}

// handles resolves every parameter once. Unregistered IDs read as the
// values in DefaultParams.
type handles struct {
	pulseWidth, sawLevel, pulseLevel, osc2Pitch, osc2Level param.FloatHandle

	filterType                                       param.ChoiceHandle
	cutoff, resonance, drive, filterEnvAmt, keyTrack param.FloatHandle

	ampEnv, filterEnv, modEnv envelopeHandles
	velSens                   param.FloatHandle

	lfo   [2]lfoHandles
	slots [modulation.NumSlots]slotHandles

	mode          param.ChoiceHandle
	detune, drift param.FloatHandle
	legato        param.BoolHandle

	seqRate, seqSlew, seqSwing, seqLength param.FloatHandle
	seqSteps                              [sequencer.MaxSteps]param.FloatHandle

	arpOn                param.BoolHandle
	arpMode, arpPattern  param.ChoiceHandle
	arpRate, arpOctaves  param.FloatHandle
	chorusRate           param.FloatHandle
	chorusDepth          param.FloatHandle
	chorusMix            param.FloatHandle
	delayTime, delayFb   param.FloatHandle
	delayMix             param.FloatHandle
	reverbSize, reverbDp param.FloatHandle
	reverbMix            param.FloatHandle
	master               param.FloatHandle
}

func resolveHandles(r *param.Registry) *handles {
	d := DefaultParams()
	h := &handles{
		pulseWidth: r.Float(ParamDCO1PWM, d.PulseWidth),
		sawLevel:   r.Float(ParamDCO1Saw, float64(d.SawLevel)),
		pulseLevel: r.Float(ParamDCO1Pulse, float64(d.PulseLevel)),
		osc2Pitch:  r.Float(ParamDCO2Pitch, d.Osc2Semitones),
		osc2Level:  r.Float(ParamDCO2Level, float64(d.Osc2Level)),

		filterType:   r.Choice(ParamVCFType, int(d.FilterType)),
		cutoff:       r.Float(ParamVCFFreq, d.Cutoff),
		resonance:    r.Float(ParamVCFRes, d.Resonance),
		drive:        r.Float(ParamVCFDrive, d.Drive),
		filterEnvAmt: r.Float(ParamVCFEnvAmt, d.FilterEnvAmount),
		keyTrack:     r.Float(ParamVCFKybd, d.KeyTrack),

		ampEnv:    resolveEnvelope(r, ParamVCAAttack, d.AmpEnv),
		filterEnv: resolveEnvelope(r, ParamVCFAttack, d.FilterEnv),
		modEnv:    resolveEnvelope(r, ParamModAttack, d.ModEnv),
		velSens:   r.Float(ParamVCAVelSens, float64(d.VelocitySens)),

		mode:   r.Choice(ParamPolyphonyMode, int(d.Mode)),
		detune: r.Float(ParamUnisonDetune, d.Detune),
		drift:  r.Float(ParamDrift, d.Drift),
		legato: r.Bool(ParamLegato, d.Legato),

		seqRate:   r.Float(ParamSeqRate, d.Seq.Rate),
		seqSlew:   r.Float(ParamSeqSlew, d.Seq.Slew),
		seqSwing:  r.Float(ParamSeqSwing, d.Seq.Swing),
		seqLength: r.Float(ParamSeqLength, float64(d.Seq.Length)),

		arpOn:      r.Bool(ParamArpOn, d.Arp.Enabled),
		arpMode:    r.Choice(ParamArpMode, int(d.Arp.Mode)),
		arpRate:    r.Float(ParamArpRate, defaultArpRate),
		arpOctaves: r.Float(ParamArpOctaves, float64(d.Arp.Octaves)),
		arpPattern: r.Choice(ParamArpPattern, d.Arp.Pattern),

		chorusRate:  r.Float(ParamChorusRate, float64(d.FX.ChorusRate)),
		chorusDepth: r.Float(ParamChorusDepth, float64(d.FX.ChorusDepth)),
		chorusMix:   r.Float(ParamChorusMix, float64(d.FX.ChorusMix)),
		delayTime:   r.Float(ParamDelayTime, float64(d.FX.DelayTime)),
		delayFb:     r.Float(ParamDelayFeedback, float64(d.FX.DelayFeedback)),
		delayMix:    r.Float(ParamDelayMix, float64(d.FX.DelayMix)),
		reverbSize:  r.Float(ParamReverbSize, float64(d.FX.ReverbSize)),
		reverbDp:    r.Float(ParamReverbDamp, float64(d.FX.ReverbDamp)),
		reverbMix:   r.Float(ParamReverbMix, float64(d.FX.ReverbMix)),
		master:      r.Float(ParamMasterVolume, d.MasterVolume),
	}
	for i, first := range []uint32{ParamLFO1Rate, ParamLFO2Rate} {
		h.lfo[i] = lfoHandles{
			rate:  r.Float(first, d.LFO[i].Rate),
			delay: r.Float(first+1, d.LFO[i].Delay),
			shape: r.Choice(first+2, int(d.LFO[i].Shape)),
		}
	}
	for i := range h.slots {
		h.slots[i] = slotHandles{
			src:    r.Choice(ModSlotParamID(i, ModSlotSource), int(modulation.SourceNone)),
			dst:    r.Choice(ModSlotParamID(i, ModSlotDestination), int(modulation.DestNone)),
			amount: r.Float(ModSlotParamID(i, ModSlotAmount), 0),
		}
	}
	for i := range h.seqSteps {
		h.seqSteps[i] = r.Float(SeqStepParamID(i), 0)
	}
	return h
}

func resolveEnvelope(r *param.Registry, first uint32, d EnvelopeParams) envelopeHandles {
	return envelopeHandles{
		attack:  r.Float(first, d.Attack),
		decay:   r.Float(first+1, d.Decay),
		sustain: r.Float(first+2, d.Sustain),
		release: r.Float(first+3, d.Release),
		curve:   r.Float(first+4, d.Curve),
	}
}

// read fills p with the current value of every parameter.
func (h *handles) read(p *Params) {
	p.PulseWidth = h.pulseWidth.Value()
	p.SawLevel = float32(h.sawLevel.Value())
	p.PulseLevel = float32(h.pulseLevel.Value())
	p.Osc2Semitones = h.osc2Pitch.Value()
	p.Osc2Level = float32(h.osc2Level.Value())

	p.FilterType = filter.Model(h.filterType.Value())
	p.Cutoff = h.cutoff.Value()
	p.Resonance = h.resonance.Value()
	p.Drive = h.drive.Value()
	p.FilterEnvAmount = h.filterEnvAmt.Value()
	p.KeyTrack = h.keyTrack.Value()

	h.ampEnv.read(&p.AmpEnv)
	h.filterEnv.read(&p.FilterEnv)
	h.modEnv.read(&p.ModEnv)
	p.VelocitySens = float32(h.velSens.Value())

	for i := range h.lfo {
		p.LFO[i] = LFOParams{
			Rate:  h.lfo[i].rate.Value(),
			Delay: h.lfo[i].delay.Value(),
			Shape: modulation.Shape(h.lfo[i].shape.Value()),
		}
	}
	for i := range h.slots {
		p.Slots[i] = modulation.Slot{
			Source:      modulation.Source(h.slots[i].src.Value()),
			Destination: modulation.Destination(h.slots[i].dst.Value()),
			Amount:      float32(h.slots[i].amount.Value()),
		}
	}

	p.Mode = PolyphonyMode(h.mode.Value())
	p.Detune = h.detune.Value()
	p.Drift = h.drift.Value()
	p.Legato = h.legato.Value()

	p.Seq.Rate = h.seqRate.Value()
	p.Seq.Slew = h.seqSlew.Value()
	p.Seq.Swing = h.seqSwing.Value()
	p.Seq.Length = int(h.seqLength.Value() + 0.5)
	for i := range h.seqSteps {
		p.Seq.Steps[i] = float32(h.seqSteps[i].Value())
	}

	p.Arp = ArpParams{
		Enabled: h.arpOn.Value(),
		Mode:    arp.Mode(h.arpMode.Value()),
		Rate:    arp.RateFromControl(h.arpRate.Value()),
		Octaves: int(h.arpOctaves.Value() + 0.5),
		Pattern: h.arpPattern.Value(),
	}

	p.FX = fx.Params{
		ChorusRate:    float32(h.chorusRate.Value()),
		ChorusDepth:   float32(h.chorusDepth.Value()),
		ChorusMix:     float32(h.chorusMix.Value()),
		DelayTime:     float32(h.delayTime.Value()),
		DelayFeedback: float32(h.delayFb.Value()),
		DelayMix:      float32(h.delayMix.Value()),
		ReverbSize:    float32(h.reverbSize.Value()),
		ReverbDamp:    float32(h.reverbDp.Value()),
		ReverbMix:     float32(h.reverbMix.Value()),
	}
	p.MasterVolume = h.master.Value()
}
