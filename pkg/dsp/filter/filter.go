// Package filter provides the voice filter: three resonant lowpass models
// behind a common Topology so a voice can switch character per patch.
package filter

import (
	"fmt"
	"math"
)

const (
	MinCutoff = 20.0
	MaxCutoff = 20000.0
)

// Model selects the filter character
type Model int

const (
	// ModelA is a clean 24 dB ladder
	ModelA Model = iota
	// ModelB is a saturated 12 dB state variable filter
	ModelB
	// ModelC is a saturated 24 dB ladder
	ModelC

	NumModels
)

var modelNames = [NumModels]string{"Ladder", "SVF", "Driven Ladder"}

func (m Model) String() string {
	if m < 0 || m >= NumModels {
		return "Unknown"
	}
	return modelNames[m]
}

func ModelNames() []string {
	return modelNames[:]
}

// Topology is one filter model. Resonance is the tapered 0-1 control and
// drive the linear input gain; each topology maps them to its own range.
type Topology interface {
	Prepare(sampleRate float64) error
	Reset()
	SetCutoff(hz float64)
	SetResonance(r float64)
	SetDrive(gain float64)
	// Resonance returns the model-specific value derived from the control
	Resonance() float64
	Process(buffer []float32)
}

// MultiFilter owns one instance of every model and routes audio through
// the selected one.
type MultiFilter struct {
	sampleRate float64
	model      Model
	models     [NumModels]Topology
	active     Topology

	cutoff    float64
	resonance float64
	drive     float64
}

func NewMultiFilter() *MultiFilter {
	m := &MultiFilter{
		cutoff: 1000,
	}
	m.models[ModelA] = newLadder(false, false)
	m.models[ModelB] = NewSaturatedSVF()
	m.models[ModelC] = newLadder(true, true)
	m.active = m.models[ModelA]
	return m
}

// Prepare configures every model for sampleRate
func (m *MultiFilter) Prepare(sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("filter: invalid sample rate %v", sampleRate)
	}
	m.sampleRate = sampleRate
	for i, t := range m.models {
		t.SetCutoff(m.cutoff)
		t.SetResonance(m.resonance)
		t.SetDrive(driveGain(m.drive))
		if err := t.Prepare(sampleRate); err != nil {
			return fmt.Errorf("filter: preparing %s: %w", Model(i), err)
		}
	}
	return nil
}

func (m *MultiFilter) Reset() {
	m.active.Reset()
}

// SetType switches model and resets the newly selected state. Unknown
// models fall back to ModelA.
func (m *MultiFilter) SetType(model Model) {
	if model < 0 || model >= NumModels {
		model = ModelA
	}
	if model == m.model {
		return
	}
	m.model = model
	m.active = m.models[model]
	m.active.SetCutoff(m.cutoff)
	m.active.SetResonance(m.resonance)
	m.active.SetDrive(driveGain(m.drive))
	m.active.Reset()
}

func (m *MultiFilter) Type() Model {
	return m.model
}

// SetCutoff sets the cutoff in Hz, clamped to 20-20000 Hz
func (m *MultiFilter) SetCutoff(hz float64) {
	if math.IsNaN(hz) {
		hz = MinCutoff
	}
	m.cutoff = math.Max(MinCutoff, math.Min(MaxCutoff, hz))
	m.active.SetCutoff(m.cutoff)
}

func (m *MultiFilter) Cutoff() float64 {
	return m.cutoff
}

// SetResonance sets the resonance control, clamped to 0-1
func (m *MultiFilter) SetResonance(r float64) {
	m.resonance = math.Max(0, math.Min(1, r))
	m.active.SetResonance(m.resonance)
}

// Resonance returns the active model's mapped resonance
func (m *MultiFilter) Resonance() float64 {
	return m.active.Resonance()
}

// SetDrive sets the drive control, clamped to 0-1
func (m *MultiFilter) SetDrive(drive float64) {
	m.drive = math.Max(0, math.Min(1, drive))
	m.active.SetDrive(driveGain(m.drive))
}

func (m *MultiFilter) Process(buffer []float32) {
	if m.sampleRate <= 0 {
		return
	}
	m.active.Process(buffer)
}

func driveGain(drive float64) float64 {
	return 1 + drive*2
}
