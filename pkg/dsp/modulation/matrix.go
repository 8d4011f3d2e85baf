package modulation

// Source enumerates modulation sources. Envelopes, velocity, mod wheel and
// key track are unipolar [0,1]; LFOs and the sequencer are bipolar.
type Source int

const (
	SourceNone Source = iota
	SourceLFO1
	SourceLFO2
	SourceFilterEnvelope
	SourceAmplitudeEnvelope
	SourceModEnvelope
	SourceVelocity
	SourceModWheel
	SourceKeyTrack
	SourceControlSequencer

	NumSources
)

var sourceNames = [NumSources]string{
	"None", "LFO 1", "LFO 2", "Filter Env", "Amp Env", "Mod Env",
	"Velocity", "Mod Wheel", "Key Track", "Sequencer",
}

func (s Source) String() string {
	if s < 0 || s >= NumSources {
		return "Unknown"
	}
	return sourceNames[s]
}

func SourceNames() []string {
	return sourceNames[:]
}

// Destination enumerates modulation targets
type Destination int

const (
	DestNone Destination = iota
	DestOsc1Pitch
	DestOsc1PulseWidth
	DestOsc2Pitch
	DestFilterCutoff
	DestFilterResonance

	NumDestinations
)

var destinationNames = [NumDestinations]string{
	"None", "Osc 1 Pitch", "Osc 1 PW", "Osc 2 Pitch", "Cutoff", "Resonance",
}

func (d Destination) String() string {
	if d < 0 || d >= NumDestinations {
		return "Unknown"
	}
	return destinationNames[d]
}

func DestinationNames() []string {
	return destinationNames[:]
}

// Sources holds one control-rate value per source. Index SourceNone is
// never read.
type Sources [NumSources]float32

// Destinations accumulates the summed modulation per destination
type Destinations [NumDestinations]float32

// Slot routes one source to one destination
type Slot struct {
	Source      Source
	Destination Destination
	Amount      float32
}

// Routed reports whether the slot contributes anything
func (s Slot) Routed() bool {
	return s.Source > SourceNone && s.Source < NumSources &&
		s.Destination > DestNone && s.Destination < NumDestinations
}

const NumSlots = 8

// Matrix is a fixed 8-slot router. Unrouted slots are kept out of the
// active list so Process only visits slots that contribute.
type Matrix struct {
	slots   [NumSlots]Slot
	active  [NumSlots]uint8
	nActive int
}

// SetSlot configures slot index. Out-of-range indices are ignored, unknown
// enum values become None and amount is clamped to [-1, 1].
func (m *Matrix) SetSlot(index int, src Source, dst Destination, amount float32) {
	if index < 0 || index >= NumSlots {
		return
	}
	if src < SourceNone || src >= NumSources {
		src = SourceNone
	}
	if dst < DestNone || dst >= NumDestinations {
		dst = DestNone
	}
	if amount > 1 {
		amount = 1
	} else if amount < -1 {
		amount = -1
	}
	if m.slots[index] == (Slot{src, dst, amount}) {
		return
	}
	m.slots[index] = Slot{Source: src, Destination: dst, Amount: amount}
	m.rebuild()
}

func (m *Matrix) Slot(index int) Slot {
	if index < 0 || index >= NumSlots {
		return Slot{}
	}
	return m.slots[index]
}

// ActiveSlots returns how many slots are routed
func (m *Matrix) ActiveSlots() int {
	return m.nActive
}

func (m *Matrix) Clear() {
	m.slots = [NumSlots]Slot{}
	m.nActive = 0
}

func (m *Matrix) rebuild() {
	m.nActive = 0
	for i, s := range m.slots {
		if s.Routed() && s.Amount != 0 {
			m.active[m.nActive] = uint8(i)
			m.nActive++
		}
	}
}

// Process zeroes dst and adds src[source]*amount for every routed slot.
func (m *Matrix) Process(src *Sources, dst *Destinations) {
	*dst = Destinations{}
	for i := 0; i < m.nActive; i++ {
		s := &m.slots[m.active[i]]
		dst[s.Destination] += src[s.Source] * s.Amount
	}
}
