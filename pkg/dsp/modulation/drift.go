package modulation

import (
	"math"

	"github.com/justyntemme/polysynth/pkg/dsp/utility"
)

const (
	// DriftCutoff is the corner of the low-pass applied to the noise
	DriftCutoff = 0.5
	// largest change per update as a fraction of the drift amount
	driftMaxStep = 0.05
)

// Drift is a slow random wander emulating analog component instability:
// white noise through a one-pole low-pass, normalized to roughly unit
// deviation and slew limited so consecutive updates never jump.
type Drift struct {
	sampleRate float64
	amount     float64
	state      float64
	value      float64
	noise      *utility.NoiseGenerator
}

func NewDrift(sampleRate float64, seed int64) *Drift {
	return &Drift{
		sampleRate: sampleRate,
		noise:      utility.NewNoiseGenerator(seed),
	}
}

func (d *Drift) SetSampleRate(sampleRate float64) {
	d.sampleRate = sampleRate
}

// SetAmount sets the depth, clamped to 0-1
func (d *Drift) SetAmount(amount float64) {
	d.amount = math.Max(0, math.Min(1, amount))
}

func (d *Drift) Amount() float64 {
	return d.amount
}

func (d *Drift) SetSeed(seed int64) {
	d.noise.SetSeed(seed)
}

func (d *Drift) Reset() {
	d.state = 0
	d.value = 0
}

// Value returns the last output without advancing
func (d *Drift) Value() float32 {
	return float32(d.value)
}

// Advance moves the generator numSamples forward and returns the new value
// in [-amount, amount].
func (d *Drift) Advance(numSamples int) float32 {
	if d.sampleRate <= 0 || numSamples <= 0 {
		return float32(d.value)
	}

	a := 1 - math.Exp(-2*math.Pi*DriftCutoff*float64(numSamples)/d.sampleRate)
	d.state += a * (float64(d.noise.Next()) - d.state)

	// uniform noise has variance 1/3; the one-pole scales it by a/(2-a)
	std := math.Sqrt(a / (2 - a) / 3)
	target := d.amount * math.Max(-1, math.Min(1, 0.5*d.state/std))

	maxStep := d.amount * driftMaxStep
	delta := math.Max(-maxStep, math.Min(maxStep, target-d.value))
	d.value += delta
	return float32(d.value)
}

// PitchRatio converts a drift value to a frequency ratio (±20 cents)
func PitchRatio(drift float32) float64 {
	return math.Exp2(float64(drift) * 0.2 / 12)
}

// CutoffMultiplier converts a drift value to a cutoff scale (±5%)
func CutoffMultiplier(drift float32) float64 {
	return 1 + float64(drift)*0.05
}
