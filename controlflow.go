package vtcore

import "sync"

// Show/Each/When are control-flow primitives with no virtual-DOM
// reconciliation helper to draw from directly: a tree built once per
// render pass has nothing that needs conditional remounting. They are
// built from the same idiom used elsewhere in the reactive graph: an
// Effect watches the thing that decides whether to mount, a child Scope
// captured at mount time is disposed before the next mount (or on final
// teardown), and the parent-context stack is pushed/popped around the
// render callback exactly the way CreateRoot pushes/pops the owner
// stack.

// Show mounts render's result only while when() is true, disposing the
// previous mount's Scope before (re-)evaluating. The returned Accessor
// yields a pointer to the current value, or nil while when() is false.
func Show[T any](when Accessor[bool], render func() T) Accessor[*T] {
	result, setResult := CreateSignal[*T](nil)

	CreateEffect(func() CleanupFunc {
		if !when() {
			setResult(nil)
			return nil
		}

		var value T
		var dispose DisposeFunc
		Untrack(func() struct{} {
			CreateRoot(func(d DisposeFunc) struct{} {
				dispose = d
				value = render()
				return struct{}{}
			})
			return struct{}{}
		})
		setResult(&value)

		return func() { dispose() }
	})

	return result
}

// When remounts render whenever trigger's value changes (by ==), not
// only when it flips between two states — useful for switch-style
// rendering over more than two cases. The returned Accessor yields a
// pointer to the current value, or nil before the first evaluation.
func When[K comparable, R any](trigger Accessor[K], render func(K) R) Accessor[*R] {
	result, setResult := CreateSignal[*R](nil)
	first := true
	var lastKey K

	CreateEffect(func() CleanupFunc {
		key := trigger()
		if !first && key == lastKey {
			return nil
		}
		first = false
		lastKey = key

		var value R
		var dispose DisposeFunc
		Untrack(func() struct{} {
			CreateRoot(func(d DisposeFunc) struct{} {
				dispose = d
				value = render(key)
				return struct{}{}
			})
			return struct{}{}
		})
		setResult(&value)

		return func() { dispose() }
	})

	return result
}

// Promise settles exactly once, to either a value or an error, from
// whatever goroutine finishes the work it represents — it carries no
// notion of how that work runs, only its eventual outcome. Signals
// already tolerate a setter called from any goroutine (see
// signal.go's mutex-guarded write), and Promise follows the same
// discipline so WhenAsync can settle one from outside the reactive
// graph's own call stack.
type Promise[T any] struct {
	mu       sync.Mutex
	done     bool
	value    T
	err      error
	watchers []func()
}

// NewPromise returns an unsettled Promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// Resolve settles p successfully. A second call (Resolve or Reject)
// on an already-settled Promise is a no-op, matching a JS Promise's
// settle-once contract.
func (p *Promise[T]) Resolve(value T) {
	p.settle(value, nil)
}

// Reject settles p with an error.
func (p *Promise[T]) Reject(err error) {
	var zero T
	p.settle(zero, err)
}

func (p *Promise[T]) settle(value T, err error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.value, p.err = value, err
	watchers := p.watchers
	p.watchers = nil
	p.mu.Unlock()

	for _, w := range watchers {
		w()
	}
}

// Watch calls fn once p settles — immediately, inline, if it already
// has.
func (p *Promise[T]) Watch(fn func()) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		fn()
		return
	}
	p.watchers = append(p.watchers, fn)
	p.mu.Unlock()
}

func (p *Promise[T]) outcome() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// WhenHandlers are the three renders WhenAsync chooses between: exactly
// one of them backs the result at any time, matching a Promise's three
// mutually exclusive states.
type WhenHandlers[T, R any] struct {
	Pending func() R
	Then    func(T) R
	Catch   func(err error) R
}

// WhenAsync remounts render whenever trigger's key changes, the same
// as When, but what it remounts comes from a Promise rather than a
// plain function: Pending renders immediately on every key change,
// and Then/Catch render once getPromise(key)'s Promise settles.
//
// A Promise that settles after its key has already been superseded by
// a newer trigger value is dropped instead of overwriting the newer
// key's render — WhenAsync tracks a generation counter bumped on every
// key change, and a settled watcher that fires against a stale
// generation returns ErrStaleResult through onStale (if non-nil)
// rather than calling setResult.
func WhenAsync[K comparable, T, R any](trigger Accessor[K], getPromise func(K) *Promise[T], handlers WhenHandlers[T, R], onStale func(error)) Accessor[*R] {
	result, setResult := CreateSignal[*R](nil)

	var mu sync.Mutex
	var generation uint64

	CreateEffectSimple(func() {
		key := trigger()

		mu.Lock()
		generation++
		gen := generation
		mu.Unlock()

		pending := handlers.Pending()
		setResult(&pending)

		promise := getPromise(key)
		promise.Watch(func() {
			mu.Lock()
			current := generation
			mu.Unlock()
			if gen != current {
				if onStale != nil {
					onStale(ErrStaleResult)
				}
				return
			}

			value, err := promise.outcome()
			var rendered R
			if err != nil {
				rendered = handlers.Catch(err)
			} else {
				rendered = handlers.Then(value)
			}
			setResult(&rendered)
		})
	})

	return result
}

// eachItem holds the per-item Scope, the per-item Signal backing that
// item's Accessor, and the last rendered result for a key Each is
// currently tracking.
type eachItem[T any, R any] struct {
	dispose  DisposeFunc
	setValue Setter[T]
	result   R
}

// Each keeps one child Scope per key, reusing it across re-renders of
// items: only keys that appear for the first time are rendered, and
// only keys that disappear are disposed. key must return a value
// stable across re-renders of the same logical item (not its index,
// unless the list is never reordered).
//
// A persisting key's item accessor is backed by a real per-item
// Signal, not a closure snapshot: when the same key's underlying value
// changes across a re-render, Each calls that item's setter instead of
// re-rendering, so only the fine-grained subscribers of item() inside
// render re-derive — render itself runs exactly once per key, matching
// the "only recompute what changed" discipline the rest of this
// package follows.
func Each[T any, K comparable, R any](items Accessor[[]T], key func(T) K, render func(item Accessor[T], index int) R) Accessor[[]R] {
	result, setResult := CreateSignal[[]R](nil)
	cache := make(map[K]*eachItem[T, R])

	OnCleanup(func() {
		for _, it := range cache {
			it.dispose()
		}
	})

	CreateEffectSimple(func() {
		list := items()
		newCache := make(map[K]*eachItem[T, R], len(list))
		outResults := make([]R, len(list))

		for i, it := range list {
			k := key(it)
			index, itemValue := i, it

			if existing, ok := cache[k]; ok {
				delete(cache, k)
				newCache[k] = existing
				outResults[index] = existing.result
				existing.setValue(itemValue)
				continue
			}

			var res R
			var dispose DisposeFunc
			var setValue Setter[T]
			Untrack(func() struct{} {
				CreateRoot(func(d DisposeFunc) struct{} {
					dispose = d
					itemAccessor, itemSetter := CreateSignal(itemValue)
					setValue = itemSetter
					res = render(itemAccessor, index)
					return struct{}{}
				})
				return struct{}{}
			})
			newCache[k] = &eachItem[T, R]{dispose: dispose, setValue: setValue, result: res}
			outResults[index] = res
		}

		for _, leftover := range cache {
			leftover.dispose()
		}

		cache = newCache
		setResult(outResults)
	})

	return result
}
