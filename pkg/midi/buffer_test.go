package midi

import "testing"

func TestBufferCapacity(t *testing.T) {
	b := NewBuffer(2)
	if !b.Add(NoteOn(0, 60, 100, 0)) || !b.Add(NoteOn(0, 62, 100, 1)) {
		t.Fatal("Expected first two events to fit")
	}
	if b.Add(NoteOn(0, 64, 100, 2)) {
		t.Error("Expected third event to be dropped")
	}
	if b.Len() != 2 {
		t.Errorf("Expected 2 events, got %d", b.Len())
	}
	if d := b.Dropped(); d != 1 {
		t.Errorf("Expected 1 dropped, got %d", d)
	}
	if d := b.Dropped(); d != 0 {
		t.Errorf("Expected dropped counter reset, got %d", d)
	}
}

func TestBufferSortByOffsetStable(t *testing.T) {
	b := NewBuffer(8)
	b.Add(NoteOn(0, 60, 100, 30))
	b.Add(NoteOff(0, 61, 0, 10))
	b.Add(NoteOn(0, 62, 100, 10))
	b.Add(NoteOn(0, 63, 100, 0))
	b.SortByOffset()

	want := []uint8{63, 61, 62, 60}
	for i, n := range want {
		if b.At(i).Note() != n {
			t.Errorf("event %d: got note %d, want %d", i, b.At(i).Note(), n)
		}
	}
}

func TestBufferTruncateAndShift(t *testing.T) {
	b := NewBuffer(4)
	b.Add(NoteOn(0, 60, 100, 5))
	b.Add(NoteOn(0, 61, 100, 6))
	b.ShiftOffsets(-5)
	if b.At(0).Offset != 0 || b.At(1).Offset != 1 {
		t.Errorf("unexpected offsets %d %d", b.At(0).Offset, b.At(1).Offset)
	}
	b.Truncate(1)
	if b.Len() != 1 {
		t.Errorf("Expected 1 event after truncate, got %d", b.Len())
	}
	b.Clear()
	if b.Len() != 0 || b.Cap() != 4 {
		t.Errorf("Clear should keep capacity: len %d cap %d", b.Len(), b.Cap())
	}
}

func TestBufferAddDoesNotAllocate(t *testing.T) {
	b := NewBuffer(16)
	allocs := testing.AllocsPerRun(100, func() {
		b.Clear()
		for i := 0; i < 16; i++ {
			b.Add(NoteOn(0, uint8(60+i), 100, int32(16-i)))
		}
		b.SortByOffset()
	})
	if allocs != 0 {
		t.Errorf("Expected no allocations, got %f", allocs)
	}
}
