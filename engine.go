package vtcore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veltui/vtcore/internal/termio"
	"github.com/veltui/vtcore/slotbuf"
)

// ErrAlreadyMounted is returned by Mount when an Engine is mounted a
// second time without an intervening Unmount.
var ErrAlreadyMounted = errors.New("vtcore: engine is already mounted")

// EngineOptions configures Mount. Buf/Reg/Root are the component tree
// to drive; Mode/CursorShape/MouseCapture become the RenderWriter's
// WriterOptions.
type EngineOptions struct {
	Buf          *slotbuf.Buffer
	Reg          *Registry
	Root         int32
	Mode         RenderMode
	CursorShape  CursorShape
	MouseCapture bool
}

// Engine owns the global, process-wide state a mounted terminal UI
// needs: the registry, the shared buffer, the handler maps, and the
// terminal writer, following a mount → run → unmount lifecycle — mount
// rejects re-entry, and unmount restores every piece of terminal state
// on every exit path (normal return, panic, or context cancellation).
// This follows the same dispose-in-LIFO-order discipline CreateRoot
// already uses in scope.go, scaled up to own the terminal and the
// render/dispatch pair instead of just reactive cleanups.
type Engine struct {
	rt *Runtime

	mu      sync.Mutex
	mounted bool

	buf      *slotbuf.Buffer
	reg      *Registry
	focus    *FocusManager
	dispatch *Dispatcher
	writer   *RenderWriter
	wake     *slotbuf.WakeWord

	termFD    int
	termState *termio.State

	dispose DisposeFunc
}

// NewEngine creates an unmounted engine against a fresh Runtime, so
// multiple engines (for example, one per test) never share reactive
// state.
func NewEngine() *Engine {
	return &Engine{rt: NewRuntime()}
}

// Wake returns the word a host (or any engine-side effect) stores a
// nonzero value into to break Run's wait loop early. It is the
// mounted buffer's WakeToEngine word, so a host process reading the
// shared buffer's header bytes directly can wake the engine without
// sharing this process's atomic.
func (e *Engine) Wake() *slotbuf.WakeWord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wake
}

// Dispatcher returns the mounted dispatcher, for a host wiring up
// handlers before calling Run.
func (e *Engine) Dispatcher() *Dispatcher {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatch
}

// Writer returns the mounted render writer, for a host that wants to
// call RegisterInput directly.
func (e *Engine) Writer() *RenderWriter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writer
}

// Mount acquires the terminal (raw mode, optional alternate screen,
// optional mouse capture) and wires the registry/buffer into a
// dispatcher and render writer. Calling Mount twice without an
// intervening Unmount returns ErrAlreadyMounted and touches nothing.
func (e *Engine) Mount(opts EngineOptions) error {
	e.mu.Lock()
	if e.mounted {
		e.mu.Unlock()
		return ErrAlreadyMounted
	}
	e.mu.Unlock()

	var dispose DisposeFunc
	createRootInternal(e.rt, func(d DisposeFunc) struct{} {
		dispose = d
		return struct{}{}
	})

	fd := termio.Stdin()
	var termState *termio.State
	if termio.IsTerminal(fd) {
		state, err := termio.MakeRaw(fd)
		if err != nil {
			dispose()
			return err
		}
		termState = state
	}

	width, height, err := termio.GetSize(termio.Stdout())
	if err != nil {
		width, height = 80, 24
	}
	widthAcc, setWidth := createSignalInternal(e.rt, width, nil)
	heightAcc, setHeight := createSignalInternal(e.rt, height, nil)

	layout := NewLayoutContext(opts.Buf, opts.Reg, opts.Root, widthAcc, heightAcc)
	focus := e.rt.FocusManager()
	grid := NewHitGrid(width, height)
	dispatcher := NewDispatcher(opts.Buf, opts.Reg, focus, grid)

	buf, reg := opts.Buf, opts.Reg
	focus.OnScrollIntoView(func(index int32) {
		scrollAncestorsIntoView(buf, reg, layout, index)
	})

	writerOpts := WriterOptions{
		Mode:         opts.Mode,
		CursorShape:  opts.CursorShape,
		MouseCapture: opts.MouseCapture,
	}
	writer := NewRenderWriter(writerOpts, opts.Buf, opts.Reg, layout, focus, opts.Root, setWidth, setHeight)
	dispatcher.OnResize(writer.HandleResize)
	writer.Begin()

	e.mu.Lock()
	e.buf, e.reg, e.focus = opts.Buf, opts.Reg, focus
	e.dispatch, e.writer = dispatcher, writer
	e.wake = opts.Buf.WakeToEngine()
	e.termFD, e.termState = fd, termState
	e.dispose = dispose
	e.mounted = true
	e.mu.Unlock()

	return nil
}

// Run drains and dispatches events, solves layout, and repaints once
// per wake — either the shared WakeWord changing (a host store, or an
// engine-side effect requesting a repaint) or ctx being cancelled.
// Returns when ctx is done, when the dispatcher sees EventExit, or when
// the engine is not mounted.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return errors.New("vtcore: engine is not mounted")
	}
	dispatcher, writer, wake := e.dispatch, e.writer, e.wake
	e.mu.Unlock()

	var last uint32
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		v, changed := wake.WaitChanged(last, 4*time.Millisecond)
		if changed {
			last = v
			wake.Clear()
		}

		dispatcher.Drain()
		if dispatcher.ExitRequested() {
			return nil
		}
		writer.Render()
	}
}

// Unmount disposes the root scope (LIFO: every effect/signal/derived
// created while mounted is torn down first) and restores the terminal
// to exactly the state Mount found it in, running on every call —
// including after Run returned an error — so a panic recovered by the
// host still leaves the terminal usable.
func (e *Engine) Unmount() error {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return nil
	}
	writer, fd, state, dispose := e.writer, e.termFD, e.termState, e.dispose
	e.mounted = false
	e.buf, e.reg, e.focus, e.dispatch, e.writer, e.wake = nil, nil, nil, nil, nil, nil
	e.termFD, e.termState, e.dispose = 0, nil, nil
	e.mu.Unlock()

	if writer != nil {
		writer.End()
	}
	if dispose != nil {
		dispose()
	}
	if state != nil {
		return termio.Restore(fd, state)
	}
	return nil
}
