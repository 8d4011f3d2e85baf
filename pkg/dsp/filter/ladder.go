package filter

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/moog"
)

// moog resonance reaches self oscillation near 4
const ladderResonanceScale = 4.0

// ladder is a 24 dB moog ladder. The classic variant is preceded by tanh
// saturation fed by the drive gain; the plain variant hands the drive to
// the ladder itself.
type ladder struct {
	classic     bool
	preSaturate bool

	sampleRate float64
	cutoff     float64
	control    float64 // tapered resonance control 0-1
	drive      float64

	f *moog.Filter
}

func newLadder(classic, preSaturate bool) *ladder {
	return &ladder{
		classic:     classic,
		preSaturate: preSaturate,
		cutoff:      1000,
		drive:       1,
	}
}

// Prepare builds the ladder. Later changes are applied to it in place.
func (l *ladder) Prepare(sampleRate float64) error {
	l.sampleRate = sampleRate
	variant := moog.VariantHuovilainen
	if l.classic {
		variant = moog.VariantClassic
	}
	f, err := moog.New(sampleRate,
		moog.WithVariant(variant),
		moog.WithCutoffHz(l.clampToNyquist(l.cutoff)),
		moog.WithResonance(l.Resonance()*ladderResonanceScale),
		moog.WithDrive(l.ladderDrive()),
	)
	if err != nil {
		return err
	}
	l.f = f
	return nil
}

// Resonance returns 0.99*r², the fraction of the self-oscillation point
func (l *ladder) Resonance() float64 {
	return 0.99 * l.control * l.control
}

func (l *ladder) SetResonance(r float64) {
	l.control = r
	if l.f != nil {
		l.f.SetResonance(l.Resonance() * ladderResonanceScale)
	}
}

func (l *ladder) SetDrive(gain float64) {
	l.drive = gain
	if l.f != nil {
		l.f.SetDrive(l.ladderDrive())
	}
}

func (l *ladder) SetCutoff(hz float64) {
	l.cutoff = hz
	if l.f != nil {
		l.f.SetCutoffHz(l.clampToNyquist(hz))
	}
}

func (l *ladder) Reset() {
	if l.f != nil {
		l.f.Reset()
	}
}

// ladderDrive is the drive handed to the ladder: unity when the drive
// already went into the tanh stage.
func (l *ladder) ladderDrive() float64 {
	if l.preSaturate {
		return 1
	}
	return l.drive
}

func (l *ladder) clampToNyquist(hz float64) float64 {
	return math.Min(hz, 0.45*l.sampleRate)
}

func (l *ladder) Process(buffer []float32) {
	if l.f == nil {
		return
	}
	if l.preSaturate {
		saturate(buffer, float32(l.drive))
	}
	for i, x := range buffer {
		y := l.f.ProcessSample(float64(x))
		buffer[i] = float32(dspcore.FlushDenormals(y))
	}
}
