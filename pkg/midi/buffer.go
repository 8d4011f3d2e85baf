package midi

// Buffer is a fixed-capacity list of events for one processing block. It
// never grows after construction; events added past capacity are counted
// as dropped so the caller can report them outside the audio path.
type Buffer struct {
	events  []Event
	dropped int
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{events: make([]Event, 0, capacity)}
}

// Add appends an event and reports whether it fit.
func (b *Buffer) Add(e Event) bool {
	if len(b.events) == cap(b.events) {
		b.dropped++
		return false
	}
	b.events = append(b.events, e)
	return true
}

func (b *Buffer) Len() int {
	return len(b.events)
}

func (b *Buffer) Cap() int {
	return cap(b.events)
}

func (b *Buffer) At(i int) Event {
	return b.events[i]
}

func (b *Buffer) Set(i int, e Event) {
	b.events[i] = e
}

// Events returns the backing slice. It is only valid until the next
// mutation of the buffer.
func (b *Buffer) Events() []Event {
	return b.events
}

// Truncate keeps the first n events.
func (b *Buffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(b.events) {
		b.events = b.events[:n]
	}
}

func (b *Buffer) Clear() {
	b.events = b.events[:0]
}

// Dropped returns and resets the overflow counter.
func (b *Buffer) Dropped() int {
	n := b.dropped
	b.dropped = 0
	return n
}

// SortByOffset orders events by sample offset, keeping the relative order
// of events that share an offset. Insertion sort: blocks hold few events
// and it does not allocate.
func (b *Buffer) SortByOffset() {
	ev := b.events
	for i := 1; i < len(ev); i++ {
		e := ev[i]
		j := i - 1
		for j >= 0 && ev[j].Offset > e.Offset {
			ev[j+1] = ev[j]
			j--
		}
		ev[j+1] = e
	}
}

// ShiftOffsets moves every event by delta samples, used when a host block
// is split into smaller engine blocks.
func (b *Buffer) ShiftOffsets(delta int32) {
	for i := range b.events {
		b.events[i].Offset += delta
	}
}
