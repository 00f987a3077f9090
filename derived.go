package vtcore

import (
	"fmt"
	"sync"
)

// derivedState is the explicit Clean/Dirty/Computing/Error state
// machine a Derived moves through.
type derivedState uint8

const (
	stateDirty derivedState = iota
	stateClean
	stateComputing
	stateErrored
)

// Derived is a lazily, pull-based recomputed reactive value. Unlike an
// Effect, a Derived never runs on its own when a dependency changes —
// the dependency change only flips it to Dirty. Recomputation happens
// the next time Get is called, on whichever goroutine calls it.
type Derived[T any] struct {
	rt      *Runtime
	mu      sync.Mutex
	compute func() T
	value   T
	err     error
	state   derivedState
	comp    *computation
	subs    map[*computation]struct{}
}

// NewDerived creates a derived value on the global runtime. It starts
// Dirty: the first Get triggers the initial computation.
func NewDerived[T any](compute func() T) *Derived[T] {
	return newDerivedInternal(Global, compute)
}

func newDerivedInternal[T any](rt *Runtime, compute func() T) *Derived[T] {
	d := &Derived[T]{
		rt:      rt,
		compute: compute,
		state:   stateDirty,
		subs:    make(map[*computation]struct{}),
	}
	d.comp = &computation{kind: kindDerived}
	d.comp.execute = func() {
		d.mu.Lock()
		if d.state == stateDirty {
			d.mu.Unlock()
			return
		}
		d.state = stateDirty
		subs := d.snapshotSubs()
		d.mu.Unlock()
		rt.notify(subs)
	}
	return d
}

func (d *Derived[T]) snapshotSubs() []*computation {
	out := make([]*computation, 0, len(d.subs))
	for c := range d.subs {
		out = append(out, c)
	}
	return out
}

// unsubscribe implements subscriber, so a computation that depended on
// this Derived can stop tracking it before re-running.
func (d *Derived[T]) unsubscribe(comp *computation) {
	d.mu.Lock()
	delete(d.subs, comp)
	d.mu.Unlock()
}

// Get returns the current value, recomputing first if the Derived is
// Dirty. A cyclic read (a Derived whose computation reads itself,
// directly or transitively, before finishing) is reported as a
// reactive-cycle Diagnostic and leaves the Derived Dirty for a future
// retry once the cycle is broken.
func (d *Derived[T]) Get() T {
	d.mu.Lock()
	switch d.state {
	case stateComputing:
		d.err = ErrReactiveCycle
		d.mu.Unlock()
		reportDiagnostic(d.rt, LevelError, ErrReactiveCycle)
		var zero T
		return zero
	case stateClean, stateErrored:
		val := d.value
		d.mu.Unlock()
		d.trackSelf()
		return val
	}

	d.state = stateComputing
	d.err = nil
	d.mu.Unlock()

	prevComp := d.rt.getCurrentComputation()
	d.rt.setCurrentComputation(d.comp)

	d.comp.mu.Lock()
	for _, sub := range d.comp.subscriptions {
		sub.unsubscribe(d.comp)
	}
	d.comp.subscriptions = d.comp.subscriptions[:0]
	d.comp.mu.Unlock()

	value, err := d.safeCompute()

	d.rt.setCurrentComputation(prevComp)

	d.mu.Lock()
	cycled := err == nil && d.err == ErrReactiveCycle
	d.value = value
	d.err = err
	if err != nil {
		d.state = stateErrored
	} else if cycled {
		d.state = stateDirty
	} else {
		d.state = stateClean
	}
	d.mu.Unlock()

	if err != nil {
		reportDiagnostic(d.rt, LevelError, err)
	}

	d.trackSelf()
	return value
}

func (d *Derived[T]) safeCompute() (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%w: %v", ErrReactivePanic, r)
		}
	}()
	result = d.compute()
	return result, nil
}

func (d *Derived[T]) trackSelf() {
	comp := d.rt.getCurrentComputation()
	if comp == nil {
		return
	}
	d.mu.Lock()
	d.subs[comp] = struct{}{}
	d.mu.Unlock()
	comp.mu.Lock()
	comp.subscriptions = append(comp.subscriptions, d)
	comp.mu.Unlock()
}

// Err returns the error from the most recent failed computation, if
// the Derived's last state transition was to Errored.
func (d *Derived[T]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
