package vtcore

import "sync"

// Accessor reads a signal's current value, establishing a dependency
// edge on the currently tracked computation.
type Accessor[T any] func() T

// Setter updates a signal's value.
type Setter[T any] func(T)

// SetterFunc computes a new value from the previous one.
type SetterFunc[T any] func(prev T) T

// signalValue is the internal signal implementation.
type signalValue[T any] struct {
	rt          *Runtime
	value       T
	subscribers map[*computation]struct{}
	equals      func(a, b T) bool
	mu          sync.RWMutex
}

// unsubscribe implements subscriber.
func (s *signalValue[T]) unsubscribe(comp *computation) {
	s.mu.Lock()
	delete(s.subscribers, comp)
	s.mu.Unlock()
}

// CreateSignal creates a reactive signal on the global runtime.
//
//	count, setCount := CreateSignal(0)
//	setCount(count() + 1)
func CreateSignal[T any](initialValue T) (Accessor[T], Setter[T]) {
	return createSignalInternal(Global, initialValue, nil)
}

// CreateSignalWithEquals creates a signal with a custom equality
// function. When the new value equals the old one, subscribers are not
// notified and no field is marked dirty.
func CreateSignalWithEquals[T any](initialValue T, equals func(a, b T) bool) (Accessor[T], Setter[T]) {
	return createSignalInternal(Global, initialValue, equals)
}

// createSignalInternal creates a signal against a specific runtime,
// used internally and by Scope-scoped helpers to avoid depending on
// the package-global Runtime.
func createSignalInternal[T any](rt *Runtime, initialValue T, equals func(a, b T) bool) (Accessor[T], Setter[T]) {
	s := &signalValue[T]{
		rt:          rt,
		value:       initialValue,
		subscribers: make(map[*computation]struct{}),
		equals:      equals,
	}

	read := func() T {
		s.mu.RLock()
		val := s.value
		s.mu.RUnlock()

		comp := rt.getCurrentComputation()
		if comp != nil {
			s.mu.Lock()
			s.subscribers[comp] = struct{}{}
			s.mu.Unlock()

			comp.mu.Lock()
			comp.subscriptions = append(comp.subscriptions, s)
			comp.mu.Unlock()
		}

		return val
	}

	write := func(newValue T) {
		s.mu.Lock()
		if s.equals != nil && s.equals(s.value, newValue) {
			s.mu.Unlock()
			return
		}
		s.value = newValue

		subs := make([]*computation, 0, len(s.subscribers))
		for comp := range s.subscribers {
			subs = append(subs, comp)
		}
		s.mu.Unlock()

		rt.notify(subs)
	}

	return read, write
}

// SetWith updates a signal using a function of its previous value.
func SetWith[T any](setter Setter[T], fn SetterFunc[T], getter Accessor[T]) {
	setter(fn(getter()))
}
