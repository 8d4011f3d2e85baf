// Package oscillator provides the saw/pulse oscillator pair used by each
// unison slot of a voice.
package oscillator

// Renderer adds one block of signal into a buffer. A band-limited pair can
// replace Pair behind this interface.
type Renderer interface {
	SetFrequency(hz float64)
	SetPulseWidth(width float64)
	RenderAdd(buf []float32)
	Reset()
}

const (
	MinPulseWidth = 0.01
	MaxPulseWidth = 0.99
)

// Pair is a sawtooth and a pulse wave sharing one phase accumulator, so
// both stay phase locked without a second oscillator.
type Pair struct {
	sampleRate float64
	frequency  float64
	phase      float64 // 0-1
	phaseInc   float64
	width      float64
	sawLevel   float32
	pulseLevel float32
}

func NewPair(sampleRate float64) *Pair {
	p := &Pair{
		frequency:  440,
		width:      0.5,
		sawLevel:   0.5,
		pulseLevel: 0.5,
	}
	p.SetSampleRate(sampleRate)
	return p
}

// SetSampleRate updates the phase increment. A non-positive rate leaves
// the oscillator silent at a frozen phase.
func (p *Pair) SetSampleRate(sampleRate float64) {
	p.sampleRate = sampleRate
	p.SetFrequency(p.frequency)
}

func (p *Pair) SetFrequency(hz float64) {
	if hz < 0 {
		hz = 0
	}
	p.frequency = hz
	if p.sampleRate <= 0 {
		p.phaseInc = 0
		return
	}
	p.phaseInc = hz / p.sampleRate
	if p.phaseInc > 0.5 {
		p.phaseInc = 0.5
	}
}

func (p *Pair) Frequency() float64 {
	return p.frequency
}

// SetPulseWidth sets the duty cycle, clamped to [0.01, 0.99]
func (p *Pair) SetPulseWidth(width float64) {
	if width < MinPulseWidth {
		width = MinPulseWidth
	} else if width > MaxPulseWidth {
		width = MaxPulseWidth
	}
	p.width = width
}

func (p *Pair) PulseWidth() float64 {
	return p.width
}

func (p *Pair) SetLevels(saw, pulse float32) {
	p.sawLevel = saw
	p.pulseLevel = pulse
}

// SetPhase sets the phase (0-1), used to decorrelate unison slots
func (p *Pair) SetPhase(phase float64) {
	p.phase = phase - float64(int(phase))
	if p.phase < 0 {
		p.phase += 1
	}
}

func (p *Pair) Reset() {
	p.phase = 0
}

// RenderAdd adds saw*sawLevel + pulse*pulseLevel into buf.
func (p *Pair) RenderAdd(buf []float32) {
	if p.sampleRate <= 0 {
		return
	}
	threshold := float32(2*p.width - 1)
	phase := p.phase
	inc := p.phaseInc
	for i := range buf {
		saw := float32(2*phase - 1)
		pulse := float32(-1)
		if saw > threshold {
			pulse = 1
		}
		buf[i] += saw*p.sawLevel + pulse*p.pulseLevel

		phase += inc
		if phase >= 1 {
			phase -= 1
		}
	}
	p.phase = phase
}
