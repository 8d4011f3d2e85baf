package filter

import "math"

// Biquad is a mono second-order IIR section in direct form I
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// NewBiquad returns a pass-through section
func NewBiquad() *Biquad {
	return &Biquad{b0: 1}
}

func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

// SetCoefficients sets raw coefficients, normalized by a0
func (b *Biquad) SetCoefficients(b0, b1, b2, a0, a1, a2 float32) {
	inv := 1 / a0
	b.b0 = b0 * inv
	b.b1 = b1 * inv
	b.b2 = b2 * inv
	b.a1 = a1 * inv
	b.a2 = a2 * inv
}

// SetLowpass configures an RBJ lowpass
func (b *Biquad) SetLowpass(sampleRate, frequency, q float64) {
	cosw, alpha := rbj(sampleRate, frequency, q)
	b.SetCoefficients(
		float32((1-cosw)/2), float32(1-cosw), float32((1-cosw)/2),
		float32(1+alpha), float32(-2*cosw), float32(1-alpha),
	)
}

// SetHighpass configures an RBJ highpass
func (b *Biquad) SetHighpass(sampleRate, frequency, q float64) {
	cosw, alpha := rbj(sampleRate, frequency, q)
	b.SetCoefficients(
		float32((1+cosw)/2), float32(-(1 + cosw)), float32((1+cosw)/2),
		float32(1+alpha), float32(-2*cosw), float32(1-alpha),
	)
}

func rbj(sampleRate, frequency, q float64) (cosw, alpha float64) {
	frequency = math.Max(1, math.Min(frequency, 0.49*sampleRate))
	w := 2 * math.Pi * frequency / sampleRate
	return math.Cos(w), math.Sin(w) / (2 * q)
}

func (b *Biquad) ProcessSample(x float32) float32 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	y = flush(y)
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// Process filters buffer in place
func (b *Biquad) Process(buffer []float32) {
	for i, x := range buffer {
		buffer[i] = b.ProcessSample(x)
	}
}
