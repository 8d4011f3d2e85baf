// Package utility holds small sample-level building blocks shared by the
// modulation sources and the engine bus.
package utility

import "math/rand/v2"

// NoiseGenerator produces uniform white noise in [-1, 1). Reseeding does
// not allocate.
type NoiseGenerator struct {
	seed int64
	src  *rand.PCG
}

func NewNoiseGenerator(seed int64) *NoiseGenerator {
	n := &NoiseGenerator{src: rand.NewPCG(0, 0)}
	n.SetSeed(seed)
	return n
}

// SetSeed restarts the sequence. Equal seeds give equal sequences.
func (n *NoiseGenerator) SetSeed(seed int64) {
	n.seed = seed
	n.src.Seed(uint64(seed), 0x9e3779b97f4a7c15)
}

func (n *NoiseGenerator) Seed() int64 {
	return n.seed
}

func (n *NoiseGenerator) Next() float32 {
	// top 24 bits give every float32 step in [0, 1)
	return float32(n.src.Uint64()>>40)/(1<<24)*2 - 1
}

// Generate fills buffer with noise.
func (n *NoiseGenerator) Generate(buffer []float32) {
	for i := range buffer {
		buffer[i] = n.Next()
	}
}

// Reset rewinds to the start of the current seed's sequence.
func (n *NoiseGenerator) Reset() {
	n.SetSeed(n.seed)
}
