package modulation

import "testing"

func TestMatrixRoutesAndSums(t *testing.T) {
	var m Matrix
	m.SetSlot(0, SourceLFO1, DestFilterCutoff, 0.5)
	m.SetSlot(1, SourceVelocity, DestFilterCutoff, 0.25)
	m.SetSlot(2, SourceModEnvelope, DestOsc2Pitch, -1)

	var src Sources
	src[SourceLFO1] = 1
	src[SourceVelocity] = 0.8
	src[SourceModEnvelope] = 0.5

	var dst Destinations
	m.Process(&src, &dst)

	if got, want := dst[DestFilterCutoff], float32(0.7); abs32(got-want) > 1e-6 {
		t.Errorf("cutoff = %f, want %f", got, want)
	}
	if got := dst[DestOsc2Pitch]; got != -0.5 {
		t.Errorf("osc2 pitch = %f, want -0.5", got)
	}
	if dst[DestOsc1Pitch] != 0 || dst[DestFilterResonance] != 0 {
		t.Errorf("unrouted destinations should be zero: %v", dst)
	}
}

func TestMatrixResetsDestinationsEachPass(t *testing.T) {
	var m Matrix
	m.SetSlot(3, SourceModWheel, DestFilterResonance, 1)

	var src Sources
	src[SourceModWheel] = 0.5
	dst := Destinations{1, 1, 1, 1, 1, 1}
	m.Process(&src, &dst)
	m.Process(&src, &dst)

	if dst[DestFilterResonance] != 0.5 {
		t.Errorf("resonance = %f, want 0.5 after two passes", dst[DestFilterResonance])
	}
	if dst[DestOsc1Pitch] != 0 {
		t.Errorf("stale value left in osc1 pitch: %f", dst[DestOsc1Pitch])
	}
}

func TestMatrixSkipsUnroutedSlots(t *testing.T) {
	var m Matrix
	m.SetSlot(0, SourceNone, DestFilterCutoff, 1)
	m.SetSlot(1, SourceLFO2, DestNone, 1)
	m.SetSlot(2, Source(99), DestOsc1Pitch, 1)
	m.SetSlot(3, SourceLFO1, Destination(-4), 1)
	m.SetSlot(4, SourceLFO1, DestOsc1Pitch, 0)

	if n := m.ActiveSlots(); n != 0 {
		t.Errorf("active slots = %d, want 0", n)
	}
	if s := m.Slot(2); s.Source != SourceNone {
		t.Errorf("unknown source stored as %v", s.Source)
	}

	src := Sources{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	var dst Destinations
	m.Process(&src, &dst)
	if dst != (Destinations{}) {
		t.Errorf("unrouted slots contributed: %v", dst)
	}
}

func TestMatrixSlotBounds(t *testing.T) {
	var m Matrix
	m.SetSlot(-1, SourceLFO1, DestOsc1Pitch, 1)
	m.SetSlot(NumSlots, SourceLFO1, DestOsc1Pitch, 1)
	if m.ActiveSlots() != 0 {
		t.Error("out of range slot indices should be ignored")
	}

	m.SetSlot(7, SourceKeyTrack, DestOsc1PulseWidth, 3)
	if s := m.Slot(7); s.Amount != 1 {
		t.Errorf("amount not clamped: %f", s.Amount)
	}
	if s := m.Slot(42); s != (Slot{}) {
		t.Errorf("out of range Slot() = %+v", s)
	}
}

func TestMatrixProcessDoesNotAllocate(t *testing.T) {
	var m Matrix
	for i := 0; i < NumSlots; i++ {
		m.SetSlot(i, Source(i%int(NumSources-1)+1), Destination(i%int(NumDestinations-1)+1), 0.1)
	}
	var src Sources
	var dst Destinations
	allocs := testing.AllocsPerRun(100, func() {
		m.Process(&src, &dst)
	})
	if allocs != 0 {
		t.Errorf("Process allocated %.1f times", allocs)
	}
}

func TestEnumNames(t *testing.T) {
	if SourceControlSequencer.String() != "Sequencer" {
		t.Errorf("got %q", SourceControlSequencer.String())
	}
	if Destination(12).String() != "Unknown" {
		t.Errorf("got %q", Destination(12).String())
	}
	if len(SourceNames()) != int(NumSources) || len(DestinationNames()) != int(NumDestinations) {
		t.Error("name tables out of sync with enums")
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
