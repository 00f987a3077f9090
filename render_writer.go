package vtcore

import (
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/veltui/vtcore/internal/text"
	"github.com/veltui/vtcore/slotbuf"
)

// RenderMode selects one of the writer's three output disciplines.
type RenderMode uint8

const (
	// Fullscreen uses the terminal's alternate screen and repaints only
	// the cells a per-frame diff against the previous frame found
	// changed.
	Fullscreen RenderMode = iota
	// Inline repaints a fixed region of the primary screen in place,
	// moving the cursor back to the region's top-left before every
	// frame instead of diffing against the previous one.
	Inline
	// Append treats every frame as new scrollback: prior output is
	// never overwritten, each frame is emitted sequentially below the
	// last.
	Append
)

// WriterOptions configures a RenderWriter.
type WriterOptions struct {
	Mode        RenderMode
	Output      io.Writer
	CursorShape CursorShape
	MouseCapture bool
}

// RenderWriter is the terminal output stage of the layout → framebuffer
// → terminal pipeline: it reads a LayoutContext's current solution,
// paints a Framebuffer, rebuilds the HitGrid dispatch reads from, and
// emits the minimal ANSI bytes that bring the terminal's visible
// contents in line with the new frame. Each Render runs layout, paint
// and output one after another rather than as a goroutine-pipelined
// stage set — the reactive core is single-threaded cooperative, so
// there is no frame-rate-driven backlog for a concurrent pipeline to
// smooth over (see DESIGN.md); only the hit-grid rebuild and the
// diff/encode pass, which touch disjoint state, run side by side
// within one Render. Built around a slotbuf.Buffer-backed
// LayoutContext/Framebuffer pair, with cursor positioning and hit-grid
// maintenance layered on top.
type RenderWriter struct {
	mode   RenderMode
	output io.Writer
	buf    *slotbuf.Buffer
	reg    *Registry
	layout *LayoutContext
	focus  *FocusManager
	root   int32

	setWidth  Setter[int]
	setHeight Setter[int]

	cursorShape  CursorShape
	mouseCapture bool
	blink        Accessor[bool]

	mu     sync.Mutex
	inputs map[int32]*InputEditor

	hitGrid      *HitGrid
	current      *CellBuffer
	firstRender  bool
	cursorHidden bool
}

// NewRenderWriter creates a writer painting root's subtree. width/height
// are the same accessors layout was built from; the writer owns their
// setters so a host can feed it EventResize updates (see
// Dispatcher.OnResize) without reaching into the LayoutContext
// directly.
func NewRenderWriter(opts WriterOptions, buf *slotbuf.Buffer, reg *Registry, layout *LayoutContext, focus *FocusManager, root int32, setWidth Setter[int], setHeight Setter[int]) *RenderWriter {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	blink, _ := CreateSignal(false)
	buf.SetRenderMode(uint32(opts.Mode))
	buf.SetCursorConfig(cursorConfigOf(opts.CursorShape, false))
	return &RenderWriter{
		mode:         opts.Mode,
		output:       output,
		buf:          buf,
		reg:          reg,
		layout:       layout,
		focus:        focus,
		root:         root,
		setWidth:     setWidth,
		setHeight:    setHeight,
		cursorShape:  opts.CursorShape,
		mouseCapture: opts.MouseCapture,
		blink:        blink,
		inputs:       make(map[int32]*InputEditor),
		firstRender:  true,
	}
}

// RegisterInput associates index's focused cursor rendering with
// editor, so Render can position and color the terminal cursor over
// its display column. UnregisterInput removes it (released indices
// must call this, since the registry's release doesn't reach here).
func (w *RenderWriter) RegisterInput(index int32, editor *InputEditor) {
	w.mu.Lock()
	w.inputs[index] = editor
	w.mu.Unlock()
}

func (w *RenderWriter) UnregisterInput(index int32) {
	w.mu.Lock()
	delete(w.inputs, index)
	w.mu.Unlock()
}

// SetBlink overrides the shared blink-clock accessor a host drives to
// toggle cursor visibility — a host-cycled signal rather than a
// real-time timer, so render output stays deterministic in tests.
func (w *RenderWriter) SetBlink(blink Accessor[bool]) {
	w.blink = blink
}

// HandleResize updates the layout context's terminal dimensions; wire
// this as a Dispatcher.OnResize callback.
func (w *RenderWriter) HandleResize(width, height int) {
	w.setWidth(width)
	w.setHeight(height)
	w.firstRender = true
}

// Begin performs first-frame terminal setup: entering the alternate
// screen (Fullscreen only) and hiding the cursor.
func (w *RenderWriter) Begin() {
	if w.mode == Fullscreen {
		io.WriteString(w.output, EnterAltScreen())
	}
	io.WriteString(w.output, HideCursor())
	if w.mouseCapture {
		io.WriteString(w.output, EnableMouse())
	}
}

// End restores the terminal: disables mouse capture, shows the cursor,
// and (Fullscreen only) exits the alternate screen. Called on unmount,
// on every exit path, so terminal state is always restored.
func (w *RenderWriter) End() {
	if w.mouseCapture {
		io.WriteString(w.output, DisableMouse())
	}
	io.WriteString(w.output, ShowCursor())
	if w.mode == Fullscreen {
		io.WriteString(w.output, ExitAltScreen())
	}
}

// Render solves layout if dirty, paints a fresh framebuffer, rebuilds
// the hit grid, diffs/emits ANSI per the configured mode, and
// positions the terminal cursor last.
func (w *RenderWriter) Render() {
	result := w.layout.Current()
	width, height := result.TerminalWidth, result.TerminalHeight
	if width <= 0 || height <= 0 {
		return
	}

	fb := RenderFramebuffer(w.buf, w.reg, result, w.root, width, height)

	// The hit-grid rebuild (from fb.Regions) and the mode-specific
	// diff/ANSI-encode pass (from fb.Cells) touch disjoint state, so an
	// errgroup runs them concurrently instead of back to back.
	var grid *HitGrid
	var sb strings.Builder
	var g errgroup.Group
	g.Go(func() error {
		grid = NewHitGrid(width, height)
		for _, region := range fb.Regions {
			grid.FillRect(region)
		}
		return nil
	})
	g.Go(func() error {
		switch w.mode {
		case Fullscreen:
			w.renderFullscreen(fb.Cells, &sb)
		case Inline:
			w.renderInline(fb.Cells, &sb)
		case Append:
			w.renderAppend(fb.Cells, &sb)
		}
		return nil
	})
	g.Wait()
	w.hitGrid = grid

	w.positionCursor(result, &sb, width, height)
	w.buf.IncrementRenderCount()

	if sb.Len() > 0 {
		io.WriteString(w.output, sb.String())
	}
}

// cursorConfigOf packs a cursor shape and its blink state into the
// header's single cursor_config word: the shape in the low byte, the
// blink flag in bit 8.
func cursorConfigOf(shape CursorShape, blink bool) uint32 {
	v := uint32(shape)
	if blink {
		v |= 1 << 8
	}
	return v
}

// HitGrid returns the hit grid built by the most recent Render call,
// for a Dispatcher constructed (or rebound) after the first frame.
func (w *RenderWriter) HitGrid() *HitGrid {
	return w.hitGrid
}

func (w *RenderWriter) renderFullscreen(next *CellBuffer, sb *strings.Builder) {
	if w.firstRender || w.current == nil {
		sb.WriteString(ClearScreen())
		blank := NewCellBuffer(next.Width(), next.Height())
		changes := DiffBuffers(blank, next)
		if len(changes) > 0 {
			RunsToAnsiBuilder(FindRuns(changes), sb)
		}
		w.firstRender = false
	} else {
		changes := DiffBuffers(w.current, next)
		if len(changes) > 0 {
			RunsToAnsiBuilder(FindRuns(changes), sb)
		}
	}
	w.current = next
}

// renderInline repaints the whole region every frame without a diff —
// cursor positioning alone (rather than run detection) keeps the write
// volume down in the common case of a small fixed-height region.
func (w *RenderWriter) renderInline(next *CellBuffer, sb *strings.Builder) {
	if !w.firstRender {
		sb.WriteString(MoveCursor(0, 0))
	}
	w.firstRender = false
	var current *Style
	for y := 0; y < next.Height(); y++ {
		if y > 0 {
			if current != nil {
				sb.WriteString(resetStr)
				current = nil
			}
			sb.WriteString("\r\n")
		}
		sb.WriteString(ClearLine())
		for x := 0; x < next.Width(); x++ {
			c := next.Get(x, y)
			if current == nil || *current != c.Style {
				sb.WriteString(resetStr)
				styleToAnsi(c.Style, sb)
				styleCopy := c.Style
				current = &styleCopy
			}
			sb.WriteRune(c.Char)
		}
	}
	sb.WriteString(resetStr)
	w.current = next
}

// renderAppend emits the new frame's content below whatever has
// already scrolled into history, never repainting prior output.
func (w *RenderWriter) renderAppend(next *CellBuffer, sb *strings.Builder) {
	sb.WriteString(BufferToSequentialAnsi(next))
	sb.WriteString("\r\n")
	w.current = next
}

// positionCursor moves the real terminal cursor over the focused
// input's display column and shows it each frame, or hides it when
// nothing focused is a registered input.
func (w *RenderWriter) positionCursor(result *LayoutResult, sb *strings.Builder, width, height int) {
	focused := w.focus.Current()
	w.mu.Lock()
	editor, ok := w.inputs[focused]
	w.mu.Unlock()

	if !ok {
		if !w.cursorHidden {
			sb.WriteString(HideCursor())
			w.cursorHidden = true
		}
		return
	}

	box, ok := result.Box(focused)
	if !ok || !box.Visible {
		return
	}

	innerWidth := int(box.Inner.W)
	editor.SetViewport(innerWidth)
	graphemes := text.Graphemes(editor.DisplayValue())
	col := columnOf(graphemes, editor.State().CursorPos) - editor.ScrollX()
	if col < 0 {
		col = 0
	}
	if col >= innerWidth {
		col = innerWidth - 1
	}
	x := int(box.Inner.X) + col
	y := int(box.Inner.Y)
	if x < 0 || x >= width || y < 0 || y >= height {
		return
	}

	blink := w.blink()
	sb.WriteString(SetCursorShape(w.cursorShape, blink))
	sb.WriteString(MoveCursor(x, y))
	sb.WriteString(ShowCursor())
	w.buf.SetCursorConfig(cursorConfigOf(w.cursorShape, blink))
	w.cursorHidden = false
}
