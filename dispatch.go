package vtcore

import (
	"sync"

	"github.com/veltui/vtcore/slotbuf"
)

// Dispatcher drains a buffer's event ring and routes each decoded event
// to the handler registries components install via
// RegisterKeyHandler/RegisterMouseHandler/RegisterScrollHandler/
// RegisterValueHandler: key events bubble from the focused node to the
// root then to a global fallback; mouse events hit-test through a
// HitGrid and track enter/leave/hover/press state; scroll events
// hit-test and then chain up through scrollable ancestors; Tab/Shift+Tab
// navigate focus instead of reaching any handler. Generalizes
// focus.go's HandleKey bubble-to-global shape from a single key
// channel to the full key/mouse/scroll/value event surface the node
// record and event ring carry.
type Dispatcher struct {
	buf     *slotbuf.Buffer
	reg     *Registry
	focus   *FocusManager
	hitGrid *HitGrid

	mu             sync.Mutex
	nextID         int
	keyHandlers    map[int32]map[int]func(KeyEvent) bool
	mouseHandlers  map[int32]map[int]func(MouseEventKind, MouseEvent) bool
	scrollHandlers map[int32]map[int]func(ScrollEvent) bool
	valueHandlers  map[int32]map[int]func(Event)
	globalKey      map[int]func(KeyEvent) bool

	hovered       int32
	pressed       int32
	lastX         int
	lastY         int
	exitRequested bool
	onResize      func(width, height int)
}

// OnResize registers fn to be called whenever an EventResize arrives,
// so a render writer can update the width/height signal its
// LayoutContext was built from without polling the ring itself.
func (d *Dispatcher) OnResize(fn func(width, height int)) {
	d.mu.Lock()
	d.onResize = fn
	d.mu.Unlock()
}

// MouseEventKind distinguishes which phase of a mouse interaction a
// dispatched call represents.
type MouseEventKind uint8

const (
	MouseDown MouseEventKind = iota
	MouseUp
	MouseClick
	MouseEnter
	MouseLeave
	MouseMove
)

// Event is the decoded, dispatch-facing form of a value-change,
// submit, cancel, focus, or blur occurrence (slotbuf event types
// Focus/Blur/ValueChange/Submit/Cancel); kept generic rather than one
// struct per type since these all carry at most "which component" —
// any payload (a new text value, say) a widget's own state (e.g.
// InputEditor) already tracks independently of the ring.
type Event struct {
	Kind           slotbuf.EventType
	ComponentIndex int32
}

// NewDispatcher creates a dispatcher bound to buf/reg. It binds the
// same buf/reg onto focus (Bind is idempotent, so sharing one
// FocusManager across dispatchers is safe).
func NewDispatcher(buf *slotbuf.Buffer, reg *Registry, focus *FocusManager, grid *HitGrid) *Dispatcher {
	focus.Bind(buf, reg)
	return &Dispatcher{
		buf: buf, reg: reg, focus: focus, hitGrid: grid,
		keyHandlers:    make(map[int32]map[int]func(KeyEvent) bool),
		mouseHandlers:  make(map[int32]map[int]func(MouseEventKind, MouseEvent) bool),
		scrollHandlers: make(map[int32]map[int]func(ScrollEvent) bool),
		valueHandlers:  make(map[int32]map[int]func(Event)),
		globalKey:      make(map[int]func(KeyEvent) bool),
		hovered:        -1,
		pressed:        -1,
	}
}

func (d *Dispatcher) allocID() int {
	id := d.nextID
	d.nextID++
	return id
}

// RegisterKeyHandler installs fn on index's bubble chain. Pass index
// -1 to install a global fallback handler, tried after the bubble
// reaches the root unconsumed.
func (d *Dispatcher) RegisterKeyHandler(index int32, fn func(KeyEvent) bool) DisposeFunc {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.allocID()
	if index < 0 {
		d.globalKey[id] = fn
		return func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.globalKey, id)
		}
	}
	if d.keyHandlers[index] == nil {
		d.keyHandlers[index] = make(map[int]func(KeyEvent) bool)
	}
	d.keyHandlers[index][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.keyHandlers[index], id)
	}
}

// RegisterMouseHandler installs fn for index, called for every mouse
// event kind targeting it; fn inspects kind to decide what to do.
func (d *Dispatcher) RegisterMouseHandler(index int32, fn func(MouseEventKind, MouseEvent) bool) DisposeFunc {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.allocID()
	if d.mouseHandlers[index] == nil {
		d.mouseHandlers[index] = make(map[int]func(MouseEventKind, MouseEvent) bool)
	}
	d.mouseHandlers[index][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.mouseHandlers[index], id)
	}
}

// RegisterScrollHandler installs fn on index, consulted before
// scroll-chaining walks further up the ancestor chain.
func (d *Dispatcher) RegisterScrollHandler(index int32, fn func(ScrollEvent) bool) DisposeFunc {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.allocID()
	if d.scrollHandlers[index] == nil {
		d.scrollHandlers[index] = make(map[int]func(ScrollEvent) bool)
	}
	d.scrollHandlers[index][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.scrollHandlers[index], id)
	}
}

// RegisterValueHandler installs fn for index's Focus/Blur/ValueChange/
// Submit/Cancel events.
func (d *Dispatcher) RegisterValueHandler(index int32, fn func(Event)) DisposeFunc {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.allocID()
	if d.valueHandlers[index] == nil {
		d.valueHandlers[index] = make(map[int]func(Event))
	}
	d.valueHandlers[index][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.valueHandlers[index], id)
	}
}

// ExitRequested reports whether an EventExit has been seen since the
// dispatcher was created (or since ClearExitRequest was last called).
func (d *Dispatcher) ExitRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exitRequested
}

// ClearExitRequest resets the exit flag, for a host that wants to
// cancel a pending shutdown.
func (d *Dispatcher) ClearExitRequest() {
	d.mu.Lock()
	d.exitRequested = false
	d.mu.Unlock()
	d.buf.SetExitRequested(false)
}

// Drain pops and dispatches every currently queued event. A host
// render loop calls this once per tick before re-solving layout.
func (d *Dispatcher) Drain() {
	ring := d.buf.Ring()
	for {
		ev, ok := ring.Pop()
		if !ok {
			return
		}
		d.dispatch(ev)
	}
}

func (d *Dispatcher) dispatch(raw slotbuf.Event) {
	switch raw.Type {
	case slotbuf.EventKey:
		d.dispatchKey(decodeKeyEvent(raw))
	case slotbuf.EventMouseDown, slotbuf.EventMouseUp, slotbuf.EventMouseMove:
		d.dispatchMouse(raw)
	case slotbuf.EventScroll:
		d.dispatchScroll(raw)
	case slotbuf.EventResize:
		d.mu.Lock()
		fn := d.onResize
		d.mu.Unlock()
		if fn != nil {
			fn(int(raw.A), int(raw.B))
		}
	case slotbuf.EventExit:
		d.mu.Lock()
		d.exitRequested = true
		d.mu.Unlock()
		d.buf.SetExitRequested(true)
	default:
		d.dispatchValue(raw)
	}
}

func decodeKeyEvent(raw slotbuf.Event) KeyEvent {
	return KeyEvent{
		Code:  Keycode(raw.A),
		Mods:  Modifier(raw.B & 0xFF),
		State: KeyState((raw.B >> 8) & 0xFF),
		Char:  rune(raw.C),
	}
}

// dispatchKey handles Tab/Shift+Tab as focus navigation (never
// reaching a handler), otherwise bubbles from the focused node up
// through Registry.Parent to the root, then to the global fallback
// chain, stopping at the first handler that returns true.
func (d *Dispatcher) dispatchKey(ev KeyEvent) {
	if ev.Code == KeyTab && ev.State != KeyRelease {
		if ev.Mods&ModShift != 0 {
			d.focus.Prev()
		} else {
			d.focus.Next()
		}
		return
	}

	index := d.focus.Current()
	for index >= 0 {
		if d.bubbleKey(index, ev) {
			return
		}
		index = d.reg.Parent(index)
	}

	if ev.State != KeyRelease && d.scrollFocusedByKey(ev) {
		return
	}

	d.mu.Lock()
	global := make([]func(KeyEvent) bool, 0, len(d.globalKey))
	for _, fn := range d.globalKey {
		global = append(global, fn)
	}
	d.mu.Unlock()
	for _, fn := range global {
		if fn(ev) {
			return
		}
	}
}

func (d *Dispatcher) bubbleKey(index int32, ev KeyEvent) bool {
	d.mu.Lock()
	handlers := make([]func(KeyEvent) bool, 0, len(d.keyHandlers[index]))
	for _, fn := range d.keyHandlers[index] {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()
	for _, fn := range handlers {
		if fn(ev) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) dispatchMouse(raw slotbuf.Event) {
	x, y := int(raw.A), int(raw.B)
	d.lastX, d.lastY = x, y
	d.buf.SetMousePosition(int32(x), int32(y))
	target := int32(-1)
	if d.hitGrid != nil {
		target = d.hitGrid.At(x, y)
	}

	switch raw.Type {
	case slotbuf.EventMouseMove:
		if target != d.hovered {
			if d.hovered >= 0 {
				d.setHoverFlag(d.hovered, false)
				d.fireMouse(d.hovered, MouseLeave, MouseEvent{X: x, Y: y})
			}
			d.hovered = target
			d.buf.SetHoveredIndex(target)
			if target >= 0 {
				d.setHoverFlag(target, true)
				d.fireMouse(target, MouseEnter, MouseEvent{X: x, Y: y})
			}
		}
		if target >= 0 {
			d.fireMouse(target, MouseMove, MouseEvent{X: x, Y: y})
		}
	case slotbuf.EventMouseDown:
		button := MouseButton(raw.C & 0xFF)
		mods := Modifier((raw.C >> 8) & 0xFF)
		d.pressed = target
		d.buf.SetPressedIndex(target)
		if target >= 0 {
			d.setPressedFlag(target, true)
			if d.buf.GetUint32(target, slotbuf.NodeOffFlags)&slotbuf.NodeFlagFocusable != 0 {
				d.focus.Focus(target)
			}
			d.fireMouse(target, MouseDown, MouseEvent{Button: button, X: x, Y: y, Mods: mods})
		}
	case slotbuf.EventMouseUp:
		button := MouseButton(raw.C & 0xFF)
		mods := Modifier((raw.C >> 8) & 0xFF)
		clickCount := uint8((raw.C >> 16) & 0xFF)
		wasPressed := d.pressed
		if wasPressed >= 0 {
			d.setPressedFlag(wasPressed, false)
		}
		if target >= 0 {
			d.fireMouse(target, MouseUp, MouseEvent{Button: button, X: x, Y: y, Mods: mods})
			if target == wasPressed {
				d.fireMouse(target, MouseClick, MouseEvent{Button: button, X: x, Y: y, Mods: mods, ClickCount: clickCount})
			}
		}
		d.pressed = -1
		d.buf.SetPressedIndex(-1)
	}
}

func (d *Dispatcher) setHoverFlag(index int32, on bool) {
	flags := d.buf.GetUint32(index, slotbuf.NodeOffFlags)
	if on {
		flags |= slotbuf.NodeFlagHovered
	} else {
		flags &^= slotbuf.NodeFlagHovered
	}
	d.buf.SetUint32(index, slotbuf.NodeOffFlags, flags, slotbuf.DirtyVisual)
}

func (d *Dispatcher) setPressedFlag(index int32, on bool) {
	flags := d.buf.GetUint32(index, slotbuf.NodeOffFlags)
	if on {
		flags |= slotbuf.NodeFlagPressed
	} else {
		flags &^= slotbuf.NodeFlagPressed
	}
	d.buf.SetUint32(index, slotbuf.NodeOffFlags, flags, slotbuf.DirtyVisual)
}

func (d *Dispatcher) fireMouse(index int32, kind MouseEventKind, ev MouseEvent) {
	d.mu.Lock()
	handlers := make([]func(MouseEventKind, MouseEvent) bool, 0, len(d.mouseHandlers[index]))
	for _, fn := range d.mouseHandlers[index] {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()
	for _, fn := range handlers {
		if fn(kind, ev) {
			return
		}
	}
}

// dispatchScroll hit-tests at the last known mouse position, then
// chains the scroll delta up through ancestors until one whose offset
// actually moves absorbs it (see scrollNode). Keyboard scrolling
// (Arrow/PageUp/PageDown/Home/End) never reaches here: dispatchKey
// applies it to the focused node through scrollFocusedByKey, which does
// not chain, so there is no separate "don't chain on keyboard scroll"
// branch to write.
func (d *Dispatcher) dispatchScroll(raw slotbuf.Event) {
	deltaX := int16(raw.A)
	deltaY := int16(raw.B)
	mods := Modifier(raw.C)
	ev := ScrollEvent{DeltaX: deltaX, DeltaY: deltaY, Mods: mods}

	index := int32(-1)
	if d.hitGrid != nil {
		index = d.hitGrid.At(d.lastX, d.lastY)
	}

	for index >= 0 {
		if d.bubbleScroll(index, ev) {
			return
		}
		if d.scrollNode(index, ev) {
			return
		}
		index = d.reg.Parent(index)
	}
}

func (d *Dispatcher) bubbleScroll(index int32, ev ScrollEvent) bool {
	d.mu.Lock()
	handlers := make([]func(ScrollEvent) bool, 0, len(d.scrollHandlers[index]))
	for _, fn := range d.scrollHandlers[index] {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()
	for _, fn := range handlers {
		if fn(ev) {
			return true
		}
	}
	return false
}

// scrollNode applies ev to index's own scroll offset, returning true
// only if it actually moved. A node already pinned at the boundary the
// delta pushes toward reports false so the caller chains the event to
// the next scrollable ancestor instead of swallowing it.
func (d *Dispatcher) scrollNode(index int32, ev ScrollEvent) bool {
	maxY := d.buf.GetInt32(index, slotbuf.NodeOffMaxScrollY)
	maxX := d.buf.GetInt32(index, slotbuf.NodeOffMaxScrollX)
	if maxY <= 0 && maxX <= 0 {
		return false
	}
	speed := int32(d.scrollSpeed())
	moved := false
	if maxY > 0 {
		cur := d.buf.GetInt32(index, slotbuf.NodeOffScrollY)
		next := clampInt32(cur+int32(ev.DeltaY)*speed, 0, maxY)
		if next != cur {
			d.buf.SetInt32(index, slotbuf.NodeOffScrollY, next, slotbuf.DirtyVisual)
			moved = true
		}
	}
	if maxX > 0 {
		cur := d.buf.GetInt32(index, slotbuf.NodeOffScrollX)
		next := clampInt32(cur+int32(ev.DeltaX)*speed, 0, maxX)
		if next != cur {
			d.buf.SetInt32(index, slotbuf.NodeOffScrollX, next, slotbuf.DirtyVisual)
			moved = true
		}
	}
	return moved
}

// scrollSpeed reads the header's scroll_speed field, falling back to
// WheelScrollDefault for a buffer that was never given one (the zero
// value would otherwise make every scroll a no-op).
func (d *Dispatcher) scrollSpeed() uint32 {
	if speed := d.buf.ScrollSpeed(); speed > 0 {
		return speed
	}
	return uint32(WheelScrollDefault)
}

// scrollFocusedByKey applies Arrow/PageUp/PageDown/Home/End directly
// to the currently focused node's own scroll offset, if it is
// scrollable and the key is unhandled by any registered key handler.
// Unlike wheel scrolling it never chains to an ancestor: a keyboard
// scroll key with nothing to move on the focused node itself is simply
// not consumed.
func (d *Dispatcher) scrollFocusedByKey(ev KeyEvent) bool {
	index := d.focus.Current()
	if index < 0 {
		return false
	}
	maxX := d.buf.GetInt32(index, slotbuf.NodeOffMaxScrollX)
	maxY := d.buf.GetInt32(index, slotbuf.NodeOffMaxScrollY)
	if maxX <= 0 && maxY <= 0 {
		return false
	}
	curX := d.buf.GetInt32(index, slotbuf.NodeOffScrollX)
	curY := d.buf.GetInt32(index, slotbuf.NodeOffScrollY)
	nextX, nextY := curX, curY
	speed := int32(d.scrollSpeed())

	pageSize := int32(d.buf.GetFloat32(index, slotbuf.NodeOffHeight))
	if pageSize <= 0 {
		pageSize = speed
	}

	switch ev.Code {
	case KeyArrowUp:
		nextY = curY - speed
	case KeyArrowDown:
		nextY = curY + speed
	case KeyArrowLeft:
		nextX = curX - speed
	case KeyArrowRight:
		nextX = curX + speed
	case KeyPageUp:
		nextY = curY - pageSize
	case KeyPageDown:
		nextY = curY + pageSize
	case KeyHome:
		nextY = 0
	case KeyEnd:
		nextY = maxY
	default:
		return false
	}

	nextX = clampInt32(nextX, 0, maxX)
	nextY = clampInt32(nextY, 0, maxY)

	moved := false
	if nextX != curX {
		d.buf.SetInt32(index, slotbuf.NodeOffScrollX, nextX, slotbuf.DirtyVisual)
		moved = true
	}
	if nextY != curY {
		d.buf.SetInt32(index, slotbuf.NodeOffScrollY, nextY, slotbuf.DirtyVisual)
		moved = true
	}
	return moved
}

func (d *Dispatcher) dispatchValue(raw slotbuf.Event) {
	d.mu.Lock()
	handlers := make([]func(Event), 0, len(d.valueHandlers[raw.ComponentIndex]))
	for _, fn := range d.valueHandlers[raw.ComponentIndex] {
		handlers = append(handlers, fn)
	}
	d.mu.Unlock()
	ev := Event{Kind: raw.Type, ComponentIndex: raw.ComponentIndex}
	for _, fn := range handlers {
		fn(ev)
	}
}
