package synth

// StealMode picks the voice to take over when every voice is busy
type StealMode int

const (
	StealOldest StealMode = iota
	StealQuietest
	StealHighest
	StealLowest
	StealNone
)

const numNotes = 128

// Pool owns a fixed set of voices and routes note events to them. Poly
// modes search free voices round robin and steal when full; mono modes
// play voice 0 with last-note priority. No method allocates.
type Pool struct {
	voices []*Voice
	limit  int
	mono   bool
	legato bool
	steal  StealMode

	last  int    // index of the most recently started voice
	clock uint64 // start order stamp

	sustain   bool
	sustained [numNotes]bool

	// held notes in press order for mono note priority
	held     [numNotes]uint8
	heldVel  [numNotes]uint8
	heldLen  int
	bend     float64
	modWheel float32
}

// NewPool creates n voices, clamped to 1-MaxVoices.
func NewPool(n int) *Pool {
	n = max(1, min(MaxVoices, n))
	p := &Pool{
		voices: make([]*Voice, n),
		limit:  n,
		last:   -1,
	}
	for i := range p.voices {
		p.voices[i] = NewVoice(int64(i + 1))
	}
	return p
}

func (p *Pool) Prepare(sampleRate float64, maxBlock int) error {
	for _, v := range p.voices {
		if err := v.Prepare(sampleRate, maxBlock); err != nil {
			return err
		}
	}
	p.Reset()
	return nil
}

// Reset silences every voice and forgets held and sustained notes.
func (p *Pool) Reset() {
	for _, v := range p.voices {
		v.Reset()
	}
	p.sustain = false
	p.sustained = [numNotes]bool{}
	p.heldLen = 0
	p.last = -1
}

func (p *Pool) Voices() []*Voice { return p.voices }
func (p *Pool) Size() int        { return len(p.voices) }
func (p *Pool) Limit() int       { return p.limit }
func (p *Pool) IsMono() bool     { return p.mono }

// SetMode applies a polyphony mode. Voices above the new limit are
// released with their tail.
func (p *Pool) SetMode(mode PolyphonyMode, legato bool) {
	p.mono = mode.IsMono()
	p.legato = legato
	p.SetLimit(mode.VoiceLimit())
}

// SetLimit caps how many voices may sound, clamped to the pool size.
func (p *Pool) SetLimit(n int) {
	p.limit = max(1, min(len(p.voices), n))
	for _, v := range p.voices[p.limit:] {
		v.StopNote(0, true)
	}
	if p.last >= p.limit {
		p.last = -1
	}
}

func (p *Pool) SetStealMode(mode StealMode) {
	p.steal = mode
}

// UpdateParameters hands the block's snapshot to every voice.
func (p *Pool) UpdateParameters(params *Params) {
	for _, v := range p.voices {
		v.UpdateParameters(params)
	}
}

func (p *Pool) NoteOn(note, velocity uint8) {
	note &= 0x7F
	if velocity == 0 {
		p.NoteOff(note, 0)
		return
	}
	p.sustained[note] = false
	if p.mono {
		p.noteOnMono(note, velocity)
		return
	}

	if i := p.sounding(note); i >= 0 {
		p.start(i, note, velocity)
		return
	}
	i := p.findFree()
	if i < 0 {
		i = p.findSteal()
	}
	if i < 0 {
		return
	}
	p.start(i, note, velocity)
}

func (p *Pool) NoteOff(note, velocity uint8) {
	note &= 0x7F
	if p.sustain {
		p.sustained[note] = true
		return
	}
	if p.mono {
		p.noteOffMono(note, velocity)
		return
	}
	for _, v := range p.voices {
		if v.State() == VoiceSounding && v.Note() == note {
			v.StopNote(velocity, true)
		}
	}
}

// SetSustain holds releases while on. Turning it off releases every note
// whose key came up in the meantime.
func (p *Pool) SetSustain(on bool) {
	if p.sustain == on {
		return
	}
	p.sustain = on
	if on {
		return
	}
	for note := range p.sustained {
		if p.sustained[note] {
			p.sustained[note] = false
			p.NoteOff(uint8(note), 0)
		}
	}
}

func (p *Pool) Sustain() bool {
	return p.sustain
}

// AllNotesOff releases everything. Without tail-off voices stop at once.
func (p *Pool) AllNotesOff(allowTailOff bool) {
	p.sustain = false
	p.sustained = [numNotes]bool{}
	p.heldLen = 0
	for _, v := range p.voices {
		v.StopNote(0, allowTailOff)
	}
}

// SetPitchBend sets the wheel position, -1 to 1, on every voice.
func (p *Pool) SetPitchBend(bend float64) {
	p.bend = bend
	for _, v := range p.voices {
		v.SetPitchBend(bend)
	}
}

func (p *Pool) SetModWheel(value float32) {
	p.modWheel = value
	for _, v := range p.voices {
		v.SetModWheel(value)
	}
}

// Render adds n samples of every active voice into out at start.
func (p *Pool) Render(out []float32, start, n int) {
	for _, v := range p.voices {
		if v.IsActive() {
			v.RenderBlock(out, start, n)
		}
	}
}

func (p *Pool) ActiveCount() int {
	count := 0
	for _, v := range p.voices {
		if v.IsActive() {
			count++
		}
	}
	return count
}

// VoiceFor returns the sounding voice playing note, or nil.
func (p *Pool) VoiceFor(note uint8) *Voice {
	if i := p.sounding(note & 0x7F); i >= 0 {
		return p.voices[i]
	}
	return nil
}

func (p *Pool) start(i int, note, velocity uint8) {
	v := p.voices[i]
	v.SetModWheel(p.modWheel)
	v.StartNote(note, velocity, p.bend)
	p.clock++
	v.age = p.clock
	p.last = i
}

func (p *Pool) sounding(note uint8) int {
	for i, v := range p.voices[:p.limit] {
		if v.State() == VoiceSounding && v.Note() == note {
			return i
		}
	}
	return -1
}

func (p *Pool) findFree() int {
	for k := 1; k <= p.limit; k++ {
		i := (p.last + k) % p.limit
		if i < 0 {
			i += p.limit
		}
		if !p.voices[i].IsActive() {
			return i
		}
	}
	return -1
}

func (p *Pool) findSteal() int {
	if p.steal == StealNone {
		return -1
	}
	best := -1
	for i, v := range p.voices[:p.limit] {
		if best < 0 {
			best = i
			continue
		}
		b := p.voices[best]
		switch p.steal {
		case StealQuietest:
			if v.Level() < b.Level() {
				best = i
			}
		case StealHighest:
			if v.Note() > b.Note() {
				best = i
			}
		case StealLowest:
			if v.Note() < b.Note() {
				best = i
			}
		default:
			if v.Age() < b.Age() {
				best = i
			}
		}
	}
	return best
}

func (p *Pool) noteOnMono(note, velocity uint8) {
	p.removeHeld(note)
	if p.heldLen < numNotes {
		p.held[p.heldLen] = note
		p.heldVel[p.heldLen] = velocity
		p.heldLen++
	}
	v := p.voices[0]
	if p.legato && v.State() == VoiceSounding {
		v.ChangeNote(note, velocity)
		return
	}
	p.start(0, note, velocity)
}

func (p *Pool) noteOffMono(note, velocity uint8) {
	p.removeHeld(note)
	v := p.voices[0]
	if v.State() != VoiceSounding || v.Note() != note {
		return
	}
	if p.heldLen == 0 {
		v.StopNote(velocity, true)
		return
	}
	// fall back to the most recent key still down
	prev, vel := p.held[p.heldLen-1], p.heldVel[p.heldLen-1]
	if p.legato {
		v.ChangeNote(prev, vel)
		return
	}
	p.start(0, prev, vel)
}

func (p *Pool) removeHeld(note uint8) {
	for i := 0; i < p.heldLen; i++ {
		if p.held[i] != note {
			continue
		}
		copy(p.held[i:p.heldLen], p.held[i+1:p.heldLen])
		copy(p.heldVel[i:p.heldLen], p.heldVel[i+1:p.heldLen])
		p.heldLen--
		return
	}
}
