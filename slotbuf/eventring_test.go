package slotbuf

import "testing"

func newTestRing(t *testing.T, capacity int) *EventRing {
	t.Helper()
	buf, err := NewBuffer(1, 64, capacity)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf.Ring()
}

func TestEventRingPushPopRoundTripsInOrder(t *testing.T) {
	ring := newTestRing(t, 4)
	if err := ring.Push(Event{Type: EventKey, A: 1}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := ring.Push(Event{Type: EventKey, A: 2}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	ev, ok := ring.Pop()
	if !ok || ev.Type != EventKey || ev.A != 1 {
		t.Fatalf("expected the first-pushed event back first, got %+v ok=%v", ev, ok)
	}
	ev, ok = ring.Pop()
	if !ok || ev.A != 2 {
		t.Fatalf("expected the second event next, got %+v ok=%v", ev, ok)
	}
}

func TestEventRingPopOnEmptyReturnsFalse(t *testing.T) {
	ring := newTestRing(t, 4)
	if _, ok := ring.Pop(); ok {
		t.Fatal("expected Pop on an empty ring to report false")
	}
}

func TestEventRingPushReturnsErrWhenFull(t *testing.T) {
	ring := newTestRing(t, 2)
	if err := ring.Push(Event{Type: EventKey}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := ring.Push(Event{Type: EventKey}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := ring.Push(Event{Type: EventKey}); err != ErrEventRingFull {
		t.Fatalf("expected ErrEventRingFull once capacity is exceeded, got %v", err)
	}
}

func TestEventRingLenTracksUnreadCount(t *testing.T) {
	ring := newTestRing(t, 4)
	if ring.Len() != 0 {
		t.Fatalf("expected a fresh ring to have Len 0, got %d", ring.Len())
	}
	ring.Push(Event{Type: EventKey})
	ring.Push(Event{Type: EventKey})
	if ring.Len() != 2 {
		t.Fatalf("expected Len 2 after two pushes, got %d", ring.Len())
	}
	ring.Pop()
	if ring.Len() != 1 {
		t.Fatalf("expected Len 1 after one pop, got %d", ring.Len())
	}
}

func TestEventRingPreservesAllPayloadFields(t *testing.T) {
	ring := newTestRing(t, 4)
	want := Event{Type: EventMouseDown, ComponentIndex: 7, A: 10, B: 20, C: 30}
	if err := ring.Push(want); err != nil {
		t.Fatalf("Push: %v", err)
	}
	got, ok := ring.Pop()
	if !ok {
		t.Fatal("expected a poppable event")
	}
	if got != want {
		t.Fatalf("expected round-tripped event to equal %+v, got %+v", want, got)
	}
}
