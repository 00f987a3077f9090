package vtcore

import (
	"fmt"
	"sync"
)

// CreateRepeater forwards a reactive source's current value into target
// every time that value changes, running inline — synchronously, as
// part of the write that changed it — rather than deferred to an
// effect flush. This is the one computation kind a Batch never defers,
// which is what lets layout, the framebuffer, and the render writer
// stay pure lazy Deriveds with no explicit "sync the shared buffer now"
// call anywhere in the graph: by the time any code outside the batch
// observes the change, a Repeater watching that state has already
// mirrored it into its target.
//
// source is read inside a tracking context exactly like an Effect body,
// so it may read any number of signals or deriveds; target is called
// with the freshly computed value on every re-run.
func CreateRepeater[T any](source func() T, target func(T)) DisposeFunc {
	return createRepeaterInternal(Global, source, target)
}

func createRepeaterInternal[T any](rt *Runtime, source func() T, target func(T)) DisposeFunc {
	var disposed bool
	var mu sync.Mutex

	comp := &computation{kind: kindRepeater}

	// reread re-evaluates source and forwards the result to target
	// without opening a tracking context: a Repeater wires its
	// dependency exactly once, at creation, and every later
	// invocation (driven by that one dependency notifying comp) is
	// just a plain call through the already-established edge. No
	// unsubscribe/resubscribe happens here, unlike Effect/Derived.
	reread := func() {
		mu.Lock()
		if disposed {
			mu.Unlock()
			return
		}
		mu.Unlock()

		value, err := safeRepeaterRead(source)
		if err != nil {
			reportDiagnostic(rt, LevelError, err)
			return
		}
		target(value)
	}
	comp.execute = reread

	// The one and only tracked read: this establishes the permanent
	// subscription edge from whatever signals/deriveds source touches
	// to comp. Subsequent runs reuse that edge and never re-track.
	prev := rt.getCurrentComputation()
	rt.setCurrentComputation(comp)
	value, err := safeRepeaterRead(source)
	rt.setCurrentComputation(prev)
	if err != nil {
		reportDiagnostic(rt, LevelError, err)
	} else {
		target(value)
	}

	dispose := func() {
		mu.Lock()
		if disposed {
			mu.Unlock()
			return
		}
		disposed = true
		mu.Unlock()

		comp.mu.Lock()
		for _, sub := range comp.subscriptions {
			sub.unsubscribe(comp)
		}
		comp.subscriptions = nil
		comp.mu.Unlock()
	}

	registerWithCurrentScope(rt, dispose)
	return dispose
}

func safeRepeaterRead[T any](source func() T) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%w: %v", ErrReactivePanic, r)
		}
	}()
	result = source()
	return
}
