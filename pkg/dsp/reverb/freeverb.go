package reverb

// Freeverb tuning, in samples at 44.1 kHz.
const (
	numCombs     = 8
	numAllpasses = 4
	fixedGain    = 0.015
	scaleDamping = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	stereoSpread = 23
	tuningRate   = 44100.0

	DefaultRoomSize = 0.5
	DefaultDamping  = 0.5
)

var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

// Freeverb is Jezar's Freeverb: eight parallel lowpass combs into four
// series allpasses per channel, right channel offset by stereoSpread.
// Mix sets wet to mix and dry to 1-mix.
type Freeverb struct {
	sampleRate float64

	combL    [numCombs]Comb
	combR    [numCombs]Comb
	allpassL [numAllpasses]Allpass
	allpassR [numAllpasses]Allpass

	roomSize float32
	damping  float32
	width    float32
	mix      float32
	frozen   bool

	wet1, wet2, dry float32
}

func NewFreeverb(sampleRate float64) *Freeverb {
	f := &Freeverb{
		roomSize: DefaultRoomSize,
		damping:  DefaultDamping,
		width:    1,
	}
	f.SetSampleRate(sampleRate)
	return f
}

// SetSampleRate rescales every delay length and clears the tail. It
// allocates and must not be called from the render path.
func (f *Freeverb) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		sampleRate = tuningRate
	}
	f.sampleRate = sampleRate
	scale := sampleRate / tuningRate
	for i := range f.combL {
		f.combL[i].Resize(int(float64(combTuning[i]) * scale))
		f.combR[i].Resize(int(float64(combTuning[i]+stereoSpread) * scale))
	}
	for i := range f.allpassL {
		f.allpassL[i].Resize(int(float64(allpassTuning[i]) * scale))
		f.allpassR[i].Resize(int(float64(allpassTuning[i]+stereoSpread) * scale))
		f.allpassL[i].SetFeedback(0.5)
		f.allpassR[i].SetFeedback(0.5)
	}
	f.update()
}

func (f *Freeverb) SampleRate() float64 { return f.sampleRate }

func (f *Freeverb) SetRoomSize(size float32) {
	f.roomSize = clamp01(size)
	f.update()
}

func (f *Freeverb) RoomSize() float32 { return f.roomSize }

func (f *Freeverb) SetDamping(damping float32) {
	f.damping = clamp01(damping)
	f.update()
}

func (f *Freeverb) Damping() float32 { return f.damping }

func (f *Freeverb) SetWidth(width float32) {
	f.width = clamp01(width)
	f.update()
}

func (f *Freeverb) SetMix(mix float32) {
	f.mix = clamp01(mix)
	f.update()
}

func (f *Freeverb) Mix() float32 { return f.mix }

// SetFreeze holds the current tail indefinitely.
func (f *Freeverb) SetFreeze(frozen bool) {
	f.frozen = frozen
	f.update()
}

// Bypassed reports whether the reverb is fully dry.
func (f *Freeverb) Bypassed() bool {
	return f.mix == 0
}

func (f *Freeverb) update() {
	f.wet1 = f.mix * (f.width/2 + 0.5)
	f.wet2 = f.mix * ((1 - f.width) / 2)
	f.dry = 1 - f.mix

	room, damp := f.roomSize, f.damping
	if f.frozen {
		room, damp = 1, 0
	}
	feedback := room*scaleRoom + offsetRoom
	if f.frozen {
		feedback = 1
	}
	for i := range f.combL {
		f.combL[i].SetFeedback(feedback)
		f.combR[i].SetFeedback(feedback)
		f.combL[i].SetDamping(damp * scaleDamping)
		f.combR[i].SetDamping(damp * scaleDamping)
	}
}

// Tick processes one stereo frame.
func (f *Freeverb) Tick(inL, inR float32) (float32, float32) {
	in := (inL + inR) * fixedGain
	if f.frozen {
		in = 0
	}
	var outL, outR float32
	for i := range f.combL {
		outL += f.combL[i].Process(in)
		outR += f.combR[i].Process(in)
	}
	for i := range f.allpassL {
		outL = f.allpassL[i].Process(outL)
		outR = f.allpassR[i].Process(outR)
	}
	l := outL*f.wet1 + outR*f.wet2 + inL*f.dry
	r := outR*f.wet1 + outL*f.wet2 + inR*f.dry
	return l, r
}

// ProcessStereo processes equally sized buffers in place.
func (f *Freeverb) ProcessStereo(left, right []float32) {
	right = right[:len(left)]
	for i := range left {
		left[i], right[i] = f.Tick(left[i], right[i])
	}
}

func (f *Freeverb) Reset() {
	for i := range f.combL {
		f.combL[i].Reset()
		f.combR[i].Reset()
	}
	for i := range f.allpassL {
		f.allpassL[i].Reset()
		f.allpassR[i].Reset()
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
