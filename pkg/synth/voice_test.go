package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/justyntemme/polysynth/pkg/dsp/filter"
	"github.com/justyntemme/polysynth/pkg/dsp/modulation"
)

const (
	testRate  = 48000.0
	testBlock = 256
)

func newTestVoice(t testing.TB, p *Params) *Voice {
	t.Helper()
	v := NewVoice(1)
	if err := v.Prepare(testRate, testBlock); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	v.UpdateParameters(p)
	return v
}

func peak(buf []float32) float64 {
	var m float64
	for _, x := range buf {
		m = math.Max(m, math.Abs(float64(x)))
	}
	return m
}

func TestVoiceStateMachine(t *testing.T) {
	p := DefaultParams()
	v := newTestVoice(t, &p)
	if v.State() != VoiceFree || v.IsActive() {
		t.Fatalf("new voice state = %v", v.State())
	}

	v.StartNote(60, 100, 0)
	if v.State() != VoiceSounding || v.Note() != 60 {
		t.Fatalf("after StartNote: state %v, note %d", v.State(), v.Note())
	}
	out := make([]float32, testBlock)
	v.RenderBlock(out, 0, testBlock)

	v.StopNote(0, true)
	if v.State() != VoiceReleasing {
		t.Fatalf("after StopNote: state %v, want Releasing", v.State())
	}

	// release is 0.3 s
	for i := 0; i < 200 && v.IsActive(); i++ {
		v.RenderBlock(out, 0, testBlock)
	}
	if v.State() != VoiceFree {
		t.Errorf("voice still %v after the release time", v.State())
	}
}

func TestStopWithoutTailOff(t *testing.T) {
	p := DefaultParams()
	v := newTestVoice(t, &p)
	v.StartNote(60, 100, 0)
	v.StopNote(0, false)
	if v.State() != VoiceFree {
		t.Fatalf("state = %v, want Free", v.State())
	}

	out := make([]float32, testBlock)
	v.RenderBlock(out, 0, testBlock)
	if peak(out) != 0 {
		t.Error("a free voice wrote output")
	}
}

func TestRenderBlockWritesOnlyItsRange(t *testing.T) {
	p := DefaultParams()
	v := newTestVoice(t, &p)
	v.StartNote(69, 127, 0)

	out := make([]float32, 512)
	v.RenderBlock(out, 100, 200)
	if peak(out[:100]) != 0 || peak(out[300:]) != 0 {
		t.Error("samples outside [100, 300) were touched")
	}
	if peak(out[100:300]) == 0 {
		t.Error("no output inside the rendered range")
	}
	if v.Elapsed() != 200 {
		t.Errorf("Elapsed() = %d, want 200", v.Elapsed())
	}
}

func TestRenderBlockAdds(t *testing.T) {
	p := DefaultParams()
	a := newTestVoice(t, &p)
	b := newTestVoice(t, &p)
	a.StartNote(64, 100, 0)
	b.StartNote(64, 100, 0)

	outA := make([]float32, testBlock)
	outB := make([]float32, testBlock)
	for i := range outB {
		outB[i] = 1
	}
	a.RenderBlock(outA, 0, testBlock)
	b.RenderBlock(outB, 0, testBlock)
	for i := range outA {
		if math.Abs(float64(outB[i]-1-outA[i])) > 1e-6 {
			t.Fatalf("sample %d: %v over 1 vs %v over 0", i, outB[i], outA[i])
		}
	}
}

func TestUnisonCountAppliesAtNextStart(t *testing.T) {
	p := DefaultParams()
	v := newTestVoice(t, &p)
	v.StartNote(60, 100, 0)

	p.Mode = ModeUnison4
	v.UpdateParameters(&p)
	if v.Unison() != 1 {
		t.Errorf("unison changed mid-note to %d", v.Unison())
	}
	v.StartNote(62, 100, 0)
	if v.Unison() != 4 {
		t.Errorf("Unison() = %d after restart, want 4", v.Unison())
	}
}

func relClose(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol*want
}

func TestVoicePitch(t *testing.T) {
	out := make([]float32, testBlock)

	t.Run("Note", func(t *testing.T) {
		p := DefaultParams()
		v := newTestVoice(t, &p)
		v.StartNote(69, 100, 0)
		v.RenderBlock(out, 0, testBlock)
		if f := v.slots[0].osc1.Frequency(); !relClose(f, 440, 1e-3) {
			t.Errorf("osc1 = %v Hz, want 440", f)
		}
	})

	t.Run("PitchBend", func(t *testing.T) {
		p := DefaultParams()
		v := newTestVoice(t, &p)
		v.StartNote(69, 100, 1)
		v.RenderBlock(out, 0, testBlock)
		want := 440 * math.Exp2(PitchBendRange/12)
		if f := v.slots[0].osc1.Frequency(); !relClose(f, want, 1e-3) {
			t.Errorf("osc1 = %v Hz, want %v", f, want)
		}
	})

	t.Run("Osc2Interval", func(t *testing.T) {
		p := DefaultParams()
		p.Osc2Level = 0.5
		p.Osc2Semitones = 12
		v := newTestVoice(t, &p)
		v.StartNote(69, 100, 0)
		v.RenderBlock(out, 0, testBlock)
		if f := v.slots[0].osc2.Frequency(); !relClose(f, 880, 1e-3) {
			t.Errorf("osc2 = %v Hz, want 880", f)
		}
	})

	t.Run("UnisonSpread", func(t *testing.T) {
		p := DefaultParams()
		p.Mode = ModeUnison4
		p.Detune = 1
		v := newTestVoice(t, &p)
		v.StartNote(69, 100, 0)
		v.RenderBlock(out, 0, testBlock)
		low := 440 * math.Exp2(-MaxDetuneSemitones/12)
		high := 440 * math.Exp2(MaxDetuneSemitones/12)
		if f := v.slots[0].osc1.Frequency(); !relClose(f, low, 1e-3) {
			t.Errorf("lowest slot = %v Hz, want %v", f, low)
		}
		if f := v.slots[3].osc1.Frequency(); !relClose(f, high, 1e-3) {
			t.Errorf("highest slot = %v Hz, want %v", f, high)
		}
	})

	t.Run("MatrixOctave", func(t *testing.T) {
		p := DefaultParams()
		p.Slots[0] = modulation.Slot{Source: modulation.SourceVelocity, Destination: modulation.DestOsc1Pitch, Amount: 1}
		v := newTestVoice(t, &p)
		v.StartNote(57, 127, 0)
		v.RenderBlock(out, 0, testBlock)
		if f := v.slots[0].osc1.Frequency(); !relClose(f, 440, 1e-3) {
			t.Errorf("osc1 = %v Hz, want one octave above 220", f)
		}
	})
}

func TestMatrixMovesCutoff(t *testing.T) {
	p := DefaultParams()
	p.Slots[0] = modulation.Slot{Source: modulation.SourceVelocity, Destination: modulation.DestFilterCutoff, Amount: 1}
	v := newTestVoice(t, &p)
	v.StartNote(60, 127, 0)
	v.RenderBlock(make([]float32, testBlock), 0, testBlock)

	want := p.Cutoff + filterModRange
	if got := v.filter.Cutoff(); !relClose(got, want, 1e-3) {
		t.Errorf("cutoff = %v, want %v", got, want)
	}
}

func TestVelocitySensitivity(t *testing.T) {
	render := func(sens float32, velocity uint8) []float32 {
		p := DefaultParams()
		p.VelocitySens = sens
		v := newTestVoice(t, &p)
		v.StartNote(60, velocity, 0)
		out := make([]float32, testBlock)
		v.RenderBlock(out, 0, testBlock)
		return out
	}

	loud, soft := render(1, 127), render(1, 32)
	ratio := float32(32) / 127
	for i := range loud {
		if math.Abs(float64(soft[i]-loud[i]*ratio)) > 1e-5 {
			t.Fatalf("sample %d: soft %v, want %v", i, soft[i], loud[i]*ratio)
		}
	}

	flat, flatSoft := render(0, 127), render(0, 32)
	for i := range flat {
		if flat[i] != flatSoft[i] {
			t.Fatalf("sample %d differs with sensitivity off", i)
		}
	}
}

func TestChangeNoteKeepsEnvelope(t *testing.T) {
	p := DefaultParams()
	v := newTestVoice(t, &p)
	v.StartNote(60, 100, 0)
	out := make([]float32, testBlock)
	for i := 0; i < 4; i++ {
		v.RenderBlock(out, 0, testBlock)
	}
	level := v.Level()
	v.ChangeNote(67, 90)
	if v.Note() != 67 || v.State() != VoiceSounding {
		t.Errorf("note %d, state %v", v.Note(), v.State())
	}
	if v.Level() != level {
		t.Errorf("level %v, want %v", v.Level(), level)
	}
}

func TestVoicePrepareErrors(t *testing.T) {
	v := NewVoice(1)
	if err := v.Prepare(0, testBlock); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("Prepare(0) error = %v", err)
	}
	if err := v.Prepare(testRate, 0); err == nil {
		t.Error("Prepare with block 0 succeeded")
	}

	// an unprepared voice renders nothing
	v.StartNote(60, 100, 0)
	out := make([]float32, 16)
	v.RenderBlock(out, 0, 16)
	if peak(out) != 0 {
		t.Error("unprepared voice wrote output")
	}
}

func TestVoiceRenderDoesNotAllocate(t *testing.T) {
	for _, model := range []filter.Model{filter.ModelA, filter.ModelB, filter.ModelC} {
		t.Run(model.String(), func(t *testing.T) {
			p := DefaultParams()
			p.FilterType = model
			p.Mode = ModeUnison6
			p.Osc2Level = 0.3
			p.Drift = 0.5
			p.LFO[0].Rate = 5
			p.Slots[0] = modulation.Slot{Source: modulation.SourceLFO1, Destination: modulation.DestOsc1PulseWidth, Amount: 0.3}
			p.Slots[1] = modulation.Slot{Source: modulation.SourceLFO1, Destination: modulation.DestFilterResonance, Amount: 0.5}
			p.Slots[2] = modulation.Slot{Source: modulation.SourceFilterEnvelope, Destination: modulation.DestFilterResonance, Amount: 0.2}
			v := newTestVoice(t, &p)
			v.StartNote(60, 100, 0)

			out := make([]float32, testBlock)
			allocs := testing.AllocsPerRun(100, func() {
				v.RenderBlock(out, 0, testBlock)
			})
			if allocs != 0 {
				t.Errorf("RenderBlock allocated %v times", allocs)
			}
		})
	}
}

func BenchmarkVoiceRender(b *testing.B) {
	for _, mode := range []PolyphonyMode{ModePoly, ModeUnison12} {
		b.Run(mode.String(), func(b *testing.B) {
			p := DefaultParams()
			p.Mode = mode
			v := newTestVoice(b, &p)
			v.StartNote(60, 100, 0)
			out := make([]float32, testBlock)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v.RenderBlock(out, 0, testBlock)
			}
		})
	}
}
