package vtcore

import "github.com/veltui/vtcore/slotbuf"

// LayoutContext bridges a slotbuf.Buffer's push-style dirty
// notifications into a lazily-recomputed Derived, so a render loop
// (or any effect) can read the solved tree the same way it reads any
// other reactive value — call Current() — instead of re-running
// SolveLayout by hand on every frame. A synchronous layout pass run
// inline during a tree walk has no separate dirty-notification channel
// to bridge, so this wraps SolveLayout in a Derived that watches a
// generation signal the buffer's OnDirty callback bumps.
type LayoutContext struct {
	buf     *slotbuf.Buffer
	reg     *Registry
	root    int32
	width   Accessor[int]
	height  Accessor[int]
	gen     Accessor[int]
	setGen  Setter[int]
	derived *Derived[*LayoutResult]
}

// NewLayoutContext creates a context that recomputes SolveLayout
// whenever root's subtree reports a layout-affecting change or the
// terminal dimensions change. width/height are typically backed by a
// resize-event-driven Signal the render writer owns.
func NewLayoutContext(buf *slotbuf.Buffer, reg *Registry, root int32, width, height Accessor[int]) *LayoutContext {
	gen, setGen := CreateSignal(0)
	buf.OnDirty(func(index int32, bits uint32) {
		if bits&(slotbuf.DirtyLayout|slotbuf.DirtyHierarchy|slotbuf.DirtyText) != 0 {
			setGen(gen() + 1)
		}
	})

	ctx := &LayoutContext{buf: buf, reg: reg, root: root, width: width, height: height, gen: gen, setGen: setGen}
	ctx.derived = NewDerived(func() *LayoutResult {
		gen()
		w, h := width(), height()
		return SolveLayout(buf, reg, root, w, h)
	})
	return ctx
}

// Current returns the currently solved layout, recomputing first if
// anything tracked by the context changed since the last call.
func (c *LayoutContext) Current() *LayoutResult {
	return c.derived.Get()
}

// Invalidate forces the next Current call to recompute regardless of
// whether any tracked dependency actually changed — used after a
// structural edit (a node allocated/released) that the dirty-bit
// channel alone might not cover, since Registry mutations don't flow
// through Buffer.OnDirty.
func (c *LayoutContext) Invalidate() {
	c.setGen(c.gen() + 1)
}
