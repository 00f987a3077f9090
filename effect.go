package vtcore

import (
	"fmt"
	"sync"
)

// CleanupFunc is returned by an effect body to run before the next
// re-execution, and when the effect is disposed.
type CleanupFunc func()

// DisposeFunc stops an effect (or a repeater, or a control-flow
// primitive) and releases everything it registered.
type DisposeFunc func()

// CreateEffect creates a reactive effect: it runs once immediately, and
// re-runs whenever one of the signals or deriveds it read last time
// changes. Inside an open Batch, re-runs are deferred until the batch
// closes, and an effect runs at most once per batch regardless of how
// many of its dependencies changed.
func CreateEffect(fn func() CleanupFunc) DisposeFunc {
	return createEffectInternal(Global, fn)
}

func createEffectInternal(rt *Runtime, fn func() CleanupFunc) DisposeFunc {
	var cleanup CleanupFunc
	var disposed bool
	var mu sync.Mutex

	comp := &computation{kind: kindEffect}

	comp.execute = func() {
		mu.Lock()
		if disposed {
			mu.Unlock()
			return
		}

		if cleanup != nil {
			cleanupFn := cleanup
			cleanup = nil
			mu.Unlock()
			cleanupFn()
			mu.Lock()
		}

		comp.mu.Lock()
		for _, sub := range comp.subscriptions {
			sub.unsubscribe(comp)
		}
		comp.subscriptions = comp.subscriptions[:0]
		comp.mu.Unlock()

		mu.Unlock()

		prevComputation := rt.getCurrentComputation()
		rt.setCurrentComputation(comp)

		newCleanup, err := runEffectBody(fn)

		rt.setCurrentComputation(prevComputation)

		if err != nil {
			reportDiagnostic(rt, LevelError, err)
		}

		mu.Lock()
		cleanup = newCleanup
		mu.Unlock()
	}

	comp.execute()

	dispose := func() {
		mu.Lock()
		if disposed {
			mu.Unlock()
			return
		}
		disposed = true
		cleanupFn := cleanup
		cleanup = nil

		comp.mu.Lock()
		for _, sub := range comp.subscriptions {
			sub.unsubscribe(comp)
		}
		comp.subscriptions = nil
		comp.mu.Unlock()

		mu.Unlock()

		if cleanupFn != nil {
			cleanupFn()
		}
	}

	registerWithCurrentScope(rt, dispose)

	return dispose
}

// runEffectBody recovers a panicking effect body into a Diagnostic
// rather than letting it take down the whole render loop.
func runEffectBody(fn func() CleanupFunc) (cleanup CleanupFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrReactivePanic, r)
		}
	}()
	cleanup = fn()
	return
}

// CreateEffectSimple creates an effect with no cleanup function.
func CreateEffectSimple(fn func()) DisposeFunc {
	return CreateEffect(func() CleanupFunc {
		fn()
		return nil
	})
}
