package slotbuf

import (
	"testing"
	"time"
)

func TestWakeWordStoreLoadRoundTrips(t *testing.T) {
	var w WakeWord
	if w.Load() != 0 {
		t.Fatalf("expected a fresh WakeWord to read 0, got %d", w.Load())
	}
	w.Store(7)
	if got := w.Load(); got != 7 {
		t.Fatalf("expected Load to return the stored value 7, got %d", got)
	}
}

func TestWakeWordClearResetsToZero(t *testing.T) {
	var w WakeWord
	w.Store(42)
	w.Clear()
	if got := w.Load(); got != 0 {
		t.Fatalf("expected Clear to reset to 0, got %d", got)
	}
}

func TestWakeWordWaitChangedReturnsImmediatelyOnChange(t *testing.T) {
	var w WakeWord
	w.Store(5)
	value, changed := w.WaitChanged(0, time.Second)
	if !changed || value != 5 {
		t.Fatalf("expected an already-different value to report changed immediately, got value=%d changed=%v", value, changed)
	}
}

func TestWakeWordWaitChangedTimesOutWhenValueNeverChanges(t *testing.T) {
	var w WakeWord
	w.Store(3)
	start := time.Now()
	value, changed := w.WaitChanged(3, 10*time.Millisecond)
	if changed {
		t.Fatal("expected no change to be reported when the value never moves")
	}
	if value != 3 {
		t.Fatalf("expected the unchanged value 3 to be returned, got %d", value)
	}
	if elapsed := time.Since(start); elapsed < 9*time.Millisecond {
		t.Fatalf("expected WaitChanged to honor the timeout, returned after %v", elapsed)
	}
}

func TestWakeWordWaitChangedObservesConcurrentStore(t *testing.T) {
	var w WakeWord
	w.Store(1)
	go func() {
		time.Sleep(2 * time.Millisecond)
		w.Store(2)
	}()
	value, changed := w.WaitChanged(1, time.Second)
	if !changed || value != 2 {
		t.Fatalf("expected to observe the concurrent store of 2, got value=%d changed=%v", value, changed)
	}
}
