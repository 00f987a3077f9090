// Package vtcore's layout engine turns a buffer's node tree into solved
// boxes: flexbox for Direction row/column, a simplified equal-track grid
// for Direction grid, and out-of-flow absolute positioning for any
// node whose Position field is absolute. A flex solver reads node
// fields directly from slotbuf.Buffer offsets and a Registry child
// list rather than walking a virtual-DOM tree.
package vtcore

import (
	"math"

	"github.com/veltui/vtcore/internal/text"
	"github.com/veltui/vtcore/slotbuf"
)

// Direction selects a container's main axis: row and column behave like
// CSS flexbox; grid switches the container to the simplified
// equal-track grid algorithm below. fr/% track sizing has no
// separate track-list field in the node record, so every track gets an
// equal fr share instead (see DESIGN.md).
type Direction uint8

const (
	DirRow Direction = iota
	DirColumn
	DirGrid
)

// Wrap controls whether a flex container's children overflow onto
// additional cross-axis lines instead of shrinking to fit one line.
type Wrap uint8

const (
	WrapNone Wrap = iota
	WrapWrap
)

// Justify distributes free main-axis space among a container's
// children.
type Justify uint8

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
)

// Align positions a child along the cross axis, or stretches it to
// fill the line.
type Align uint8

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

// Overflow controls whether content exceeding a container's inner box
// is clipped, allowed to scroll, or left visible (painted outside the
// box — the default).
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

// Position controls whether a node participates in its parent's normal
// flow (static/relative) or is pulled out of flow and placed via its
// inset fields relative to its parent's outer box (absolute).
type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
)

// BorderStyle selects the box-drawing character set a bordered node
// paints with, extended with Dashed/Dotted/ASCII so every style the
// framebuffer's border step names has a table entry.
type BorderStyle uint8

const (
	BorderNone BorderStyle = iota
	BorderSingle
	BorderDouble
	BorderRounded
	BorderBold
	BorderDashed
	BorderDotted
	BorderASCII
)

// BorderChars holds the eight box-drawing glyphs (or ASCII fallbacks)
// one border style paints with.
type BorderChars struct {
	Horizontal, Vertical                        rune
	TopLeft, TopRight, BottomLeft, BottomRight   rune
}

// BorderCharSets maps each non-none BorderStyle to its glyph set, with
// Dashed/Dotted/ASCII entries added so every named style actually has
// one.
var BorderCharSets = map[BorderStyle]BorderChars{
	BorderSingle: {
		Horizontal: '─', Vertical: '│',
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
	},
	BorderDouble: {
		Horizontal: '═', Vertical: '║',
		TopLeft: '╔', TopRight: '╗', BottomLeft: '╚', BottomRight: '╝',
	},
	BorderRounded: {
		Horizontal: '─', Vertical: '│',
		TopLeft: '╭', TopRight: '╮', BottomLeft: '╰', BottomRight: '╯',
	},
	BorderBold: {
		Horizontal: '━', Vertical: '┃',
		TopLeft: '┏', TopRight: '┓', BottomLeft: '┗', BottomRight: '┛',
	},
	BorderDashed: {
		Horizontal: '╌', Vertical: '╎',
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
	},
	BorderDotted: {
		Horizontal: '·', Vertical: '·',
		TopLeft: '·', TopRight: '·', BottomLeft: '·', BottomRight: '·',
	},
	BorderASCII: {
		Horizontal: '-', Vertical: '|',
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
	},
}

// Spacing is a resolved four-side inset (padding or margin).
type Spacing struct {
	Top, Right, Bottom, Left float32
}

// Rect is an axis-aligned box in terminal cell coordinates.
type Rect struct {
	X, Y, W, H float32
}

// LayoutBox is one node's solved geometry: its outer box (border edge),
// its inner content box (outer minus border and padding), and its
// scroll state once overflowing content is measured against the inner
// box.
type LayoutBox struct {
	Outer      Rect
	Inner      Rect
	Visible    bool
	Scrollable bool
	ScrollX    int32
	ScrollY    int32
	MaxScrollX int32
	MaxScrollY int32
}

// LayoutResult is the solved tree a single SolveLayout call produces:
// one LayoutBox per node index that participated in the solve.
type LayoutResult struct {
	boxes          map[int32]*LayoutBox
	TerminalWidth  int
	TerminalHeight int
}

func newLayoutResult(w, h int) *LayoutResult {
	return &LayoutResult{boxes: make(map[int32]*LayoutBox), TerminalWidth: w, TerminalHeight: h}
}

// Box returns index's solved box, or (nil, false) if index was never
// visited by the solve (not allocated, or an unreachable descendant of
// an invisible ancestor).
func (r *LayoutResult) Box(index int32) (*LayoutBox, bool) {
	b, ok := r.boxes[index]
	return b, ok
}

type layoutEngine struct {
	buf    *slotbuf.Buffer
	reg    *Registry
	result *LayoutResult
}

// SolveLayout computes every visible node's geometry starting from
// root, which is assigned the full terminal width/height. Read-only
// input fields (Direction/Justify/Align/Grow/.../BorderStyle) come
// from buf; the solved outputs (X/Y/Width/Height/MaxScrollX/Y) are
// written back into buf so a host reading the shared buffer sees the
// same geometry this call computed, and ScrollX/Y are clamped in place
// to the newly solved MaxScrollX/Y.
func SolveLayout(buf *slotbuf.Buffer, reg *Registry, root int32, width, height int) *LayoutResult {
	result := newLayoutResult(width, height)
	if root < 0 || !reg.Allocated(root) {
		return result
	}
	eng := &layoutEngine{buf: buf, reg: reg, result: result}
	eng.layoutNode(root, 0, 0, float32(width), float32(height))
	buf.IncrementLayoutCount()
	return result
}

func (e *layoutEngine) flags(index int32) uint32 {
	return e.buf.GetUint32(index, slotbuf.NodeOffFlags)
}

func (e *layoutEngine) spacing(index int32, topOff, rightOff, bottomOff, leftOff int) Spacing {
	return Spacing{
		Top:    e.buf.GetFloat32(index, topOff),
		Right:  e.buf.GetFloat32(index, rightOff),
		Bottom: e.buf.GetFloat32(index, bottomOff),
		Left:   e.buf.GetFloat32(index, leftOff),
	}
}

func (e *layoutEngine) padding(index int32) Spacing {
	return e.spacing(index, slotbuf.NodeOffPaddingTop, slotbuf.NodeOffPaddingRight, slotbuf.NodeOffPaddingBottom, slotbuf.NodeOffPaddingLeft)
}

func (e *layoutEngine) margin(index int32) Spacing {
	return e.spacing(index, slotbuf.NodeOffMarginTop, slotbuf.NodeOffMarginRight, slotbuf.NodeOffMarginBottom, slotbuf.NodeOffMarginLeft)
}

func (e *layoutEngine) borderWidth(index int32) float32 {
	if BorderStyle(e.buf.GetUint8(index, slotbuf.NodeOffBorderStyle)) == BorderNone {
		return 0
	}
	return 1
}

// resolveSize returns the resolved size along one axis: an explicit
// ReqWidth/Height if set (not NaN), otherwise `avail`, clamped to
// [min, max] (max < 0 means "no max", matching the node record's
// sentinel).
func resolveSize(req, avail, min, max float32) float32 {
	size := avail
	if !math.IsNaN(float64(req)) {
		size = req
	}
	if size < min {
		size = min
	}
	if max >= 0 && size > max {
		size = max
	}
	return size
}

// layoutNode solves index's own box at (x, y) sized (w, h) — its
// parent has already decided this size, whether by flex distribution,
// grid track sizing, or simply "fill the terminal" at the root — then
// recurses into its in-flow children.
func (e *layoutEngine) layoutNode(index int32, x, y, w, h float32) {
	visible := e.flags(index)&slotbuf.NodeFlagVisible != 0
	box := &LayoutBox{Outer: Rect{X: x, Y: y, W: w, H: h}, Visible: visible}
	e.result.boxes[index] = box
	// The box published to the buffer is rounded to whole cells:
	// floor(x), and ceil(right)-floor(x) for the width (same for y/h).
	rx, ry := float32(math.Floor(float64(x))), float32(math.Floor(float64(y)))
	rw := float32(math.Ceil(float64(x+w))) - rx
	rh := float32(math.Ceil(float64(y+h))) - ry
	e.buf.SetFloat32(index, slotbuf.NodeOffX, rx, slotbuf.DirtyVisual)
	e.buf.SetFloat32(index, slotbuf.NodeOffY, ry, slotbuf.DirtyVisual)
	e.buf.SetFloat32(index, slotbuf.NodeOffWidth, rw, slotbuf.DirtyVisual)
	e.buf.SetFloat32(index, slotbuf.NodeOffHeight, rh, slotbuf.DirtyVisual)
	if !visible {
		return
	}

	pad := e.padding(index)
	border := e.borderWidth(index)
	innerX := x + border + pad.Left
	innerY := y + border + pad.Top
	innerW := w - 2*border - pad.Left - pad.Right
	innerH := h - 2*border - pad.Top - pad.Bottom
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}
	box.Inner = Rect{X: innerX, Y: innerY, W: innerW, H: innerH}

	children := e.reg.Children(index)
	inFlow := make([]int32, 0, len(children))
	var absolute []int32
	for _, c := range children {
		if Position(e.buf.GetUint8(c, slotbuf.NodeOffPosition)) == PositionAbsolute {
			absolute = append(absolute, c)
		} else {
			inFlow = append(inFlow, c)
		}
	}

	dir := Direction(e.buf.GetUint8(index, slotbuf.NodeOffDirection))
	var contentW, contentH float32
	switch dir {
	case DirGrid:
		contentW, contentH = e.layoutGridChildren(index, inFlow, innerX, innerY, innerW, innerH)
	default:
		contentW, contentH = e.layoutFlexChildren(index, inFlow, innerX, innerY, innerW, innerH, dir)
	}

	for _, c := range absolute {
		e.layoutAbsoluteChild(c, x, y, w, h)
	}

	e.resolveScroll(index, box, contentW, contentH)
}

// layoutFlexChildren distributes innerW/innerH among children along
// dir's main axis: total main-axis size of non-grow children (plus
// gaps) is computed first, free space is divided among grow children
// by share with any rounding remainder handed to the last grow child
// so the sum exactly accounts for all free space, then justify/align
// place each child and layoutNode recurses into it.
func (e *layoutEngine) layoutFlexChildren(container int32, children []int32, x, y, w, h float32, dir Direction) (float32, float32) {
	if len(children) == 0 {
		return 0, 0
	}

	row := dir == DirRow
	mainSize, crossSize := w, h
	if !row {
		mainSize, crossSize = h, w
	}

	gapMain := e.buf.GetFloat32(container, slotbuf.NodeOffGapColumn)
	if !row {
		gapMain = e.buf.GetFloat32(container, slotbuf.NodeOffGapRow)
	}
	if math.IsNaN(float64(gapMain)) {
		gapMain = 0
	}

	type childInfo struct {
		index           int32
		mainBase, cross float32
		grow, shrink    float32
		margin          Spacing
	}
	infos := make([]childInfo, len(children))
	var fixedMain float32
	var totalGrow, totalShrink float32

	for i, c := range children {
		m := e.margin(c)
		reqMain := e.buf.GetFloat32(c, slotbuf.NodeOffReqWidth)
		reqCross := e.buf.GetFloat32(c, slotbuf.NodeOffReqHeight)
		minMain := e.buf.GetFloat32(c, slotbuf.NodeOffMinWidth)
		maxMain := e.buf.GetFloat32(c, slotbuf.NodeOffMaxWidth)
		minCross := e.buf.GetFloat32(c, slotbuf.NodeOffMinHeight)
		maxCross := e.buf.GetFloat32(c, slotbuf.NodeOffMaxHeight)
		marginMain := m.Left + m.Right
		marginCross := m.Top + m.Bottom
		if !row {
			reqMain, reqCross = reqCross, reqMain
			minMain, minCross = minCross, minMain
			maxMain, maxCross = maxCross, maxMain
			marginMain, marginCross = marginCross, marginMain
		}

		basis := e.buf.GetFloat32(c, slotbuf.NodeOffBasis)
		grow := e.buf.GetFloat32(c, slotbuf.NodeOffGrow)
		shrink := e.buf.GetFloat32(c, slotbuf.NodeOffShrink)

		base := reqMain
		if math.IsNaN(float64(base)) {
			base = basis
		}
		// An explicit main-axis size takes the child out of grow
		// distribution entirely, before summing grow shares.
		if !math.IsNaN(float64(reqMain)) {
			grow = 0
		}
		if math.IsNaN(float64(base)) {
			base = 0
		}
		base = clampf(base, minMain, maxMain)

		cross := resolveSize(reqCross, crossSize-marginCross, minCross, maxCross)

		infos[i] = childInfo{index: c, mainBase: base + marginMain, cross: cross, grow: grow, shrink: shrink, margin: m}
		fixedMain += base + marginMain
		totalGrow += grow
		totalShrink += shrink
	}

	totalGaps := gapMain * float32(len(children)-1)
	free := mainSize - fixedMain - totalGaps

	// Distribute free space by grow share, giving any rounding leftover
	// to the last grow participant so nothing is lost to truncation.
	if free > 0 && totalGrow > 0 {
		var assigned float32
		lastGrow := -1
		for i := range infos {
			if infos[i].grow <= 0 {
				continue
			}
			lastGrow = i
			share := free * infos[i].grow / totalGrow
			infos[i].mainBase += share
			assigned += share
		}
		if lastGrow >= 0 {
			infos[lastGrow].mainBase += free - assigned
		}
		free = 0
	} else if free < 0 && totalShrink > 0 {
		deficit := -free
		var assigned float32
		lastShrink := -1
		for i := range infos {
			if infos[i].shrink <= 0 {
				continue
			}
			lastShrink = i
			share := deficit * infos[i].shrink / totalShrink
			infos[i].mainBase -= share
			assigned += share
		}
		if lastShrink >= 0 {
			infos[lastShrink].mainBase -= deficit - assigned
		}
		free = 0
	}

	justify := Justify(e.buf.GetUint8(container, slotbuf.NodeOffJustify))
	align := Align(e.buf.GetUint8(container, slotbuf.NodeOffAlign))

	mainPos, extraGap := justifyOffsets(justify, free, len(infos))

	var maxMain, maxCross float32
	for _, info := range infos {
		mainStart := mainPos
		crossStart := float32(0)
		crossAvail := crossSize - info.margin.Top - info.margin.Bottom
		if !row {
			crossAvail = crossSize - info.margin.Left - info.margin.Right
		}
		switch align {
		case AlignCenter:
			crossStart = (crossAvail - info.cross) / 2
		case AlignEnd:
			crossStart = crossAvail - info.cross
		}
		if crossStart < 0 {
			crossStart = 0
		}

		var cx, cy, cw, ch float32
		if row {
			cx = x + mainStart + info.margin.Left
			cy = y + crossStart + info.margin.Top
			cw = info.mainBase - info.margin.Left - info.margin.Right
			ch = info.cross
		} else {
			cy = y + mainStart + info.margin.Top
			cx = x + crossStart + info.margin.Left
			ch = info.mainBase - info.margin.Top - info.margin.Bottom
			cw = info.cross
		}
		if cw < 0 {
			cw = 0
		}
		if ch < 0 {
			ch = 0
		}

		e.layoutNode(info.index, cx, cy, cw, ch)

		mainPos += info.mainBase + gapMain + extraGap
		if row {
			if end := cx + cw - x; end > maxMain {
				maxMain = end
			}
			if end := cy + ch - y; end > maxCross {
				maxCross = end
			}
		} else {
			if end := cy + ch - y; end > maxMain {
				maxMain = end
			}
			if end := cx + cw - x; end > maxCross {
				maxCross = end
			}
		}
	}

	if row {
		return maxMain, maxCross
	}
	return maxCross, maxMain
}

func justifyOffsets(j Justify, free float32, n int) (start, extraGap float32) {
	if free <= 0 || n == 0 {
		return 0, 0
	}
	switch j {
	case JustifyCenter:
		return free / 2, 0
	case JustifyEnd:
		return free, 0
	case JustifySpaceBetween:
		if n <= 1 {
			return 0, 0
		}
		return 0, free / float32(n-1)
	case JustifySpaceAround:
		gap := free / float32(n)
		return gap / 2, gap
	default:
		return 0, 0
	}
}

func clampf(v, min, max float32) float32 {
	if !math.IsNaN(float64(min)) && v < min {
		v = min
	}
	if !math.IsNaN(float64(max)) && max >= 0 && v > max {
		v = max
	}
	return v
}

// layoutGridChildren places children into an equal-share track grid:
// the column count is the largest (GridColumnStart+GridColumnSpan-1)
// seen among explicitly placed children, or ceil(sqrt(n)) for an
// auto-placed set, and every track (row or column) gets an equal share
// of the inner box. This is the open-question resolution recorded in
// DESIGN.md: the node record carries no container-level track-size
// list (no field for a "1fr 2fr auto" style template), so fr/%
// interaction collapses to "every track is one fr" rather than CSS
// grid's independent per-track sizing.
func (e *layoutEngine) layoutGridChildren(container int32, children []int32, x, y, w, h float32) (float32, float32) {
	if len(children) == 0 {
		return 0, 0
	}

	cols := 0
	anyExplicit := false
	for _, c := range children {
		start := e.buf.GetInt32(c, slotbuf.NodeOffGridColumnStart)
		span := e.buf.GetInt32(c, slotbuf.NodeOffGridColumnSpan)
		if span <= 0 {
			span = 1
		}
		if start > 0 {
			anyExplicit = true
			if end := int(start) + int(span) - 1; end > cols {
				cols = end
			}
		}
	}
	if !anyExplicit || cols == 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(children)))))
		if cols == 0 {
			cols = 1
		}
	}
	rows := (len(children) + cols - 1) / cols

	gapCol := e.buf.GetFloat32(container, slotbuf.NodeOffGapColumn)
	gapRow := e.buf.GetFloat32(container, slotbuf.NodeOffGapRow)
	if math.IsNaN(float64(gapCol)) {
		gapCol = 0
	}
	if math.IsNaN(float64(gapRow)) {
		gapRow = 0
	}

	colW := (w - gapCol*float32(cols-1)) / float32(cols)
	rowH := (h - gapRow*float32(rows-1)) / float32(rows)
	if colW < 0 {
		colW = 0
	}
	if rowH < 0 {
		rowH = 0
	}

	autoCol, autoRow := 0, 0
	var maxX, maxY float32
	for _, c := range children {
		startCol := int(e.buf.GetInt32(c, slotbuf.NodeOffGridColumnStart))
		spanCol := int(e.buf.GetInt32(c, slotbuf.NodeOffGridColumnSpan))
		startRow := int(e.buf.GetInt32(c, slotbuf.NodeOffGridRowStart))
		spanRow := int(e.buf.GetInt32(c, slotbuf.NodeOffGridRowSpan))
		if spanCol <= 0 {
			spanCol = 1
		}
		if spanRow <= 0 {
			spanRow = 1
		}
		var col, rowIdx int
		if startCol > 0 {
			col, rowIdx = startCol-1, maxInt(startRow-1, 0)
		} else {
			col, rowIdx = autoCol, autoRow
			autoCol++
			if autoCol >= cols {
				autoCol = 0
				autoRow++
			}
		}

		cx := x + float32(col)*(colW+gapCol)
		cy := y + float32(rowIdx)*(rowH+gapRow)
		cw := colW*float32(spanCol) + gapCol*float32(spanCol-1)
		ch := rowH*float32(spanRow) + gapRow*float32(spanRow-1)

		e.layoutNode(c, cx, cy, cw, ch)
		if end := cx + cw - x; end > maxX {
			maxX = end
		}
		if end := cy + ch - y; end > maxY {
			maxY = end
		}
	}
	return maxX, maxY
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// layoutAbsoluteChild resolves index's box from its inset fields
// relative to containerX/Y/W/H (its parent's outer box): a
// negative inset on an axis means "unset" per the node record's
// sentinel, in which case that side falls back to the child's own
// requested size (or, when auto, the container's full extent on that
// axis, clamped to min/max) anchored at the opposite
// set side, or at the container's origin if neither side is set.
func (e *layoutEngine) layoutAbsoluteChild(index int32, containerX, containerY, containerW, containerH float32) {
	top := e.buf.GetFloat32(index, slotbuf.NodeOffInsetTop)
	right := e.buf.GetFloat32(index, slotbuf.NodeOffInsetRight)
	bottom := e.buf.GetFloat32(index, slotbuf.NodeOffInsetBottom)
	left := e.buf.GetFloat32(index, slotbuf.NodeOffInsetLeft)

	reqW := resolveSize(e.buf.GetFloat32(index, slotbuf.NodeOffReqWidth), containerW, e.buf.GetFloat32(index, slotbuf.NodeOffMinWidth), e.buf.GetFloat32(index, slotbuf.NodeOffMaxWidth))
	reqH := resolveSize(e.buf.GetFloat32(index, slotbuf.NodeOffReqHeight), containerH, e.buf.GetFloat32(index, slotbuf.NodeOffMinHeight), e.buf.GetFloat32(index, slotbuf.NodeOffMaxHeight))

	var x, y, w, h float32
	switch {
	case left >= 0 && right >= 0:
		x, w = containerX+left, containerW-left-right
	case left >= 0:
		x, w = containerX+left, reqW
	case right >= 0:
		w = reqW
		x = containerX + containerW - right - w
	default:
		x, w = containerX, reqW
	}
	switch {
	case top >= 0 && bottom >= 0:
		y, h = containerY+top, containerH-top-bottom
	case top >= 0:
		y, h = containerY+top, reqH
	case bottom >= 0:
		h = reqH
		y = containerY + containerH - bottom - h
	default:
		y, h = containerY, reqH
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	e.layoutNode(index, x, y, w, h)
}

func (e *layoutEngine) resolveScroll(index int32, box *LayoutBox, contentW, contentH float32) {
	overflowX := Overflow(e.buf.GetUint8(index, slotbuf.NodeOffOverflowX))
	overflowY := Overflow(e.buf.GetUint8(index, slotbuf.NodeOffOverflowY))

	oldMaxScrollY := e.buf.GetInt32(index, slotbuf.NodeOffMaxScrollY)
	oldScrollY := e.buf.GetInt32(index, slotbuf.NodeOffScrollY)
	stickyBottom := e.buf.GetUint32(index, slotbuf.NodeOffFlags)&slotbuf.NodeFlagStickyBottom != 0
	pinnedToBottom := stickyBottom && oldScrollY >= oldMaxScrollY

	maxScrollX := int32(0)
	if over := contentW - box.Inner.W; over > 0 && (overflowX == OverflowScroll || overflowX == OverflowAuto) {
		maxScrollX = int32(math.Ceil(float64(over)))
	}
	maxScrollY := int32(0)
	if over := contentH - box.Inner.H; over > 0 && (overflowY == OverflowScroll || overflowY == OverflowAuto) {
		maxScrollY = int32(math.Ceil(float64(over)))
	}

	box.MaxScrollX = maxScrollX
	box.MaxScrollY = maxScrollY
	box.Scrollable = maxScrollX > 0 || maxScrollY > 0

	e.buf.SetInt32(index, slotbuf.NodeOffMaxScrollX, maxScrollX, slotbuf.DirtyLayout)
	e.buf.SetInt32(index, slotbuf.NodeOffMaxScrollY, maxScrollY, slotbuf.DirtyLayout)

	scrollX := e.buf.GetInt32(index, slotbuf.NodeOffScrollX)
	scrollY := e.buf.GetInt32(index, slotbuf.NodeOffScrollY)
	if clamped := clampInt32(scrollX, 0, maxScrollX); clamped != scrollX {
		e.buf.SetInt32(index, slotbuf.NodeOffScrollX, clamped, slotbuf.DirtyVisual)
		scrollX = clamped
	}
	// A sticky-bottom node that was pinned at its old max offset follows
	// the new max offset as content grows, rather than staying anchored
	// to its old absolute scroll position.
	if pinnedToBottom {
		scrollY = maxScrollY
	} else if clamped := clampInt32(scrollY, 0, maxScrollY); clamped != scrollY {
		scrollY = clamped
	}
	if scrollY != oldScrollY {
		e.buf.SetInt32(index, slotbuf.NodeOffScrollY, scrollY, slotbuf.DirtyVisual)
	}
	box.ScrollX = scrollX
	box.ScrollY = scrollY
}

// scrollAncestorsIntoView walks index's ancestor chain in the most
// recently solved layout and nudges each scrollable ancestor's offset
// by the minimum amount needed to bring index's outer box fully within
// that ancestor's viewport, so a focus change never leaves the newly
// focused node scrolled out of sight. Ancestors that are already
// showing index are left untouched.
func scrollAncestorsIntoView(buf *slotbuf.Buffer, reg *Registry, layout *LayoutContext, index int32) {
	result := layout.Current()
	box, ok := result.Box(index)
	if !ok {
		return
	}
	top, left := box.Outer.Y, box.Outer.X
	bottom, right := top+box.Outer.H, left+box.Outer.W

	for anc := reg.Parent(index); anc >= 0; anc = reg.Parent(anc) {
		ancBox, ok := result.Box(anc)
		if !ok || !ancBox.Scrollable {
			continue
		}
		if ancBox.MaxScrollY > 0 {
			viewTop := ancBox.Inner.Y + float32(ancBox.ScrollY)
			viewBottom := viewTop + ancBox.Inner.H
			next := ancBox.ScrollY
			switch {
			case top < viewTop:
				next = ancBox.ScrollY - int32(math.Ceil(float64(viewTop-top)))
			case bottom > viewBottom:
				next = ancBox.ScrollY + int32(math.Ceil(float64(bottom-viewBottom)))
			}
			if next = clampInt32(next, 0, ancBox.MaxScrollY); next != ancBox.ScrollY {
				buf.SetInt32(anc, slotbuf.NodeOffScrollY, next, slotbuf.DirtyVisual)
			}
		}
		if ancBox.MaxScrollX > 0 {
			viewLeft := ancBox.Inner.X + float32(ancBox.ScrollX)
			viewRight := viewLeft + ancBox.Inner.W
			next := ancBox.ScrollX
			switch {
			case left < viewLeft:
				next = ancBox.ScrollX - int32(math.Ceil(float64(viewLeft-left)))
			case right > viewRight:
				next = ancBox.ScrollX + int32(math.Ceil(float64(right-viewRight)))
			}
			if next = clampInt32(next, 0, ancBox.MaxScrollX); next != ancBox.ScrollX {
				buf.SetInt32(anc, slotbuf.NodeOffScrollX, next, slotbuf.DirtyVisual)
			}
		}
	}
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CollectTextContent returns the text currently recorded for index,
// used by the framebuffer to paint a leaf text node's content and to
// measure its natural size during layout.
func CollectTextContent(buf *slotbuf.Buffer, index int32) string {
	return buf.GetText(index)
}

// WrapText wraps s into lines no wider than maxWidth display columns,
// delegating to internal/text.Wrap (uax29 word segmentation) for a
// word-boundary-preferring, mid-word-fallback heuristic.
func WrapText(s string, maxWidth int) []string {
	return text.Wrap(s, maxWidth)
}
