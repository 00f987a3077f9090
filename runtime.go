// Package vtcore implements a fine-grained reactive graph, a dense
// component index space, a shared slot buffer contract, a layout and
// framebuffer pipeline, and the input dispatch rules for a terminal UI
// engine.
//
// Key principles carried from the reactive model this package builds
// on: components run once (setup phase), signals are just values with
// no rules-of-hooks, and only the computations that actually depend on
// a change re-run.
package vtcore

import "sync"

// computationKind distinguishes how a computation is scheduled when one
// of its dependencies changes.
type computationKind uint8

const (
	// kindEffect computations run once at creation and re-run at most
	// once per batch; inside an open batch they are deferred to the
	// end-of-batch flush.
	kindEffect computationKind = iota
	// kindDerived computations never run eagerly: a dependency change
	// only marks them dirty. Recomputation happens lazily on the next
	// Get(), regardless of batch depth.
	kindDerived
	// kindRepeater computations always run synchronously inline when a
	// dependency changes, even inside an open batch.
	kindRepeater
)

// computation tracks a reactive computation (effect, derived, or repeater).
type computation struct {
	kind          computationKind
	execute       func()
	subscriptions []subscriber // signals/deriveds this computation depends on
	mu            sync.Mutex
}

// subscriber is implemented by anything a computation can depend on, so
// the computation can unsubscribe before re-tracking.
type subscriber interface {
	unsubscribe(comp *computation)
}

// Scope tracks disposables for structured cleanup. Disposal runs in
// LIFO order: the most recently registered cleanup runs first, so a
// child created after a resource is acquired is torn down before the
// resource itself.
type Scope struct {
	disposables []func()
}

// Runtime holds all mutable reactive state. Isolating it in a struct
// lets tests reset cleanly via Reset.
type Runtime struct {
	mu sync.Mutex

	currentComputation *computation
	currentScope        *Scope
	batchDepth          int
	pendingComputations map[*computation]struct{}

	focusManager *FocusManager
	registry     *Registry
}

// Global is the package-level runtime instance used by the top-level
// CreateSignal/CreateEffect/etc. helpers.
var Global *Runtime

func init() {
	Global = NewRuntime()
}

// NewRuntime creates a new, empty Runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		pendingComputations: make(map[*computation]struct{}),
	}
}

// Reset clears and reinitializes the global runtime. Call at the start
// of tests for isolation.
func Reset() {
	Global = NewRuntime()
}

// FocusManager returns the runtime's focus manager, creating it lazily.
func (rt *Runtime) FocusManager() *FocusManager {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.focusManager == nil {
		rt.focusManager = newFocusManager(rt)
	}
	return rt.focusManager
}

// Registry returns the runtime's component index registry, creating it
// lazily with DefaultMaxNodes capacity on first use.
func (rt *Runtime) Registry() *Registry {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.registry == nil {
		rt.registry = NewRegistry(DefaultMaxNodes)
	}
	return rt.registry
}

func (rt *Runtime) getCurrentComputation() *computation {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.currentComputation
}

func (rt *Runtime) setCurrentComputation(comp *computation) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.currentComputation = comp
}

func (rt *Runtime) getCurrentScope() *Scope {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.currentScope
}

func (rt *Runtime) setCurrentScope(s *Scope) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.currentScope = s
}

func (rt *Runtime) getBatchDepth() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.batchDepth
}

func (rt *Runtime) incrementBatchDepth() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.batchDepth++
}

func (rt *Runtime) decrementBatchDepth() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.batchDepth--
	return rt.batchDepth == 0
}

func (rt *Runtime) addPendingComputation(comp *computation) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pendingComputations[comp] = struct{}{}
}

// flushPending runs every effect queued during a batch and clears the
// queue. Called once, when the outermost batch closes.
func (rt *Runtime) flushPending() {
	rt.mu.Lock()
	toRun := make([]*computation, 0, len(rt.pendingComputations))
	for comp := range rt.pendingComputations {
		toRun = append(toRun, comp)
	}
	rt.pendingComputations = make(map[*computation]struct{})
	rt.mu.Unlock()

	for _, comp := range toRun {
		comp.execute()
	}
}

// notify delivers a dependency-changed signal to each subscriber,
// respecting each computation's scheduling kind: repeaters and
// deriveds always run inline; effects defer to the batch flush when a
// batch is open.
func (rt *Runtime) notify(subs []*computation) {
	inBatch := rt.getBatchDepth() > 0
	for _, comp := range subs {
		switch comp.kind {
		case kindRepeater, kindDerived:
			comp.execute()
		default:
			if inBatch {
				rt.addPendingComputation(comp)
			} else {
				comp.execute()
			}
		}
	}
}
