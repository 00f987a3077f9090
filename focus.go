package vtcore

import (
	"sort"
	"sync"

	"github.com/veltui/vtcore/slotbuf"
)

// FocusManager tracks which component index currently holds keyboard
// focus and implements Tab/Shift+Tab navigation, ordered by
// (tab_index asc, index asc). Built around a buf+reg model:
// "focusable" and "focused" are node flag bits rather than an
// interface method set, and navigation order is recomputed from the
// registry's currently allocated, focusable nodes rather than a fixed
// registration list.
type FocusManager struct {
	rt  *Runtime
	buf *slotbuf.Buffer
	reg *Registry

	mu       sync.Mutex
	current  int32 // -1 = nothing focused
	handlers map[int32]map[int]func(focused bool)
	nextID   int

	// scrollIntoView is called whenever focus moves to a new index, so
	// a render loop can adjust ancestor scroll offsets to keep the
	// newly focused node visible.
	scrollIntoView func(index int32)
}

func newFocusManager(rt *Runtime) *FocusManager {
	return &FocusManager{rt: rt, current: -1, handlers: make(map[int32]map[int]func(bool))}
}

// Bind attaches the buffer and registry the manager reads tab order
// and focus flags from. Must be called once before Focus/Next/Prev are
// used meaningfully.
func (m *FocusManager) Bind(buf *slotbuf.Buffer, reg *Registry) {
	m.mu.Lock()
	m.buf, m.reg = buf, reg
	m.mu.Unlock()
}

// OnScrollIntoView registers the callback Focus calls after moving
// focus to a new index.
func (m *FocusManager) OnScrollIntoView(fn func(index int32)) {
	m.mu.Lock()
	m.scrollIntoView = fn
	m.mu.Unlock()
}

// Current returns the currently focused component index, or -1.
func (m *FocusManager) Current() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Focus moves focus to index, clearing NodeFlagFocused on the
// previously focused node (if any) and setting it on index, firing
// each side's registered focus handlers.
func (m *FocusManager) Focus(index int32) {
	m.mu.Lock()
	buf, reg := m.buf, m.reg
	prev := m.current
	if prev == index {
		m.mu.Unlock()
		return
	}
	m.current = index
	onSIV := m.scrollIntoView
	m.mu.Unlock()

	if buf == nil || reg == nil {
		return
	}
	buf.SetFocusedIndex(index)
	if prev >= 0 && reg.Allocated(prev) {
		m.setFocusedFlag(prev, false)
		m.fireHandlers(prev, false)
	}
	if index >= 0 && reg.Allocated(index) {
		m.setFocusedFlag(index, true)
		m.fireHandlers(index, true)
		if onSIV != nil {
			onSIV(index)
		}
	}
}

// Blur clears focus entirely (equivalent to Focus(-1)).
func (m *FocusManager) Blur() {
	m.Focus(-1)
}

func (m *FocusManager) setFocusedFlag(index int32, focused bool) {
	flags := m.buf.GetUint32(index, slotbuf.NodeOffFlags)
	if focused {
		flags |= slotbuf.NodeFlagFocused
	} else {
		flags &^= slotbuf.NodeFlagFocused
	}
	m.buf.SetUint32(index, slotbuf.NodeOffFlags, flags, slotbuf.DirtyVisual)
}

// OnFocusChange registers fn to be called whenever index gains or
// loses focus. Returns a disposer that removes it.
func (m *FocusManager) OnFocusChange(index int32, fn func(focused bool)) DisposeFunc {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	if m.handlers[index] == nil {
		m.handlers[index] = make(map[int]func(bool))
	}
	m.handlers[index][id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers[index], id)
	}
}

func (m *FocusManager) fireHandlers(index int32, focused bool) {
	m.mu.Lock()
	list := make([]func(bool), 0, len(m.handlers[index]))
	for _, fn := range m.handlers[index] {
		list = append(list, fn)
	}
	m.mu.Unlock()
	for _, fn := range list {
		fn(focused)
	}
}

// tabOrder returns every currently allocated, focusable node index in
// navigation order: ascending tab_index, ties broken by ascending
// component index.
func (m *FocusManager) tabOrder() []int32 {
	hw := m.reg.HighWaterMark()
	var order []int32
	for i := int32(0); i < hw; i++ {
		if !m.reg.Allocated(i) {
			continue
		}
		flags := m.buf.GetUint32(i, slotbuf.NodeOffFlags)
		if flags&slotbuf.NodeFlagFocusable == 0 {
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta := m.buf.GetInt32(order[a], slotbuf.NodeOffTabIndex)
		tb := m.buf.GetInt32(order[b], slotbuf.NodeOffTabIndex)
		if ta != tb {
			return ta < tb
		}
		return order[a] < order[b]
	})
	return order
}

// Next focuses the next focusable node in tab order, wrapping to the
// first after the last.
func (m *FocusManager) Next() {
	if m.buf == nil || m.reg == nil {
		return
	}
	order := m.tabOrder()
	if len(order) == 0 {
		return
	}
	cur := m.Current()
	pos := -1
	for i, idx := range order {
		if idx == cur {
			pos = i
			break
		}
	}
	m.Focus(order[(pos+1)%len(order)])
}

// Prev focuses the previous focusable node in tab order, wrapping to
// the last before the first.
func (m *FocusManager) Prev() {
	if m.buf == nil || m.reg == nil {
		return
	}
	order := m.tabOrder()
	if len(order) == 0 {
		return
	}
	cur := m.Current()
	pos := 0
	for i, idx := range order {
		if idx == cur {
			pos = i
			break
		}
	}
	m.Focus(order[(pos-1+len(order))%len(order)])
}
