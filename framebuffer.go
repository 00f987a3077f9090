package vtcore

import (
	"math"
	"sort"

	"github.com/veltui/vtcore/internal/text"
	"github.com/veltui/vtcore/slotbuf"
)

// Framebuffer is one frame's painted output: the materialized cell
// grid and the hit regions a HitGrid is rebuilt from. Walks a solved
// LayoutResult plus slotbuf.Buffer reads rather than a virtual-DOM
// tree, and adds hit-region emission and opacity blending for mouse
// support.
type Framebuffer struct {
	Cells   *CellBuffer
	Regions []HitRegion
}

// RenderFramebuffer walks root's subtree in pre-order, z-sorted at
// each level, painting background, border, and content into a fresh
// width x height grid and collecting one HitRegion per
// mouse-interactive node in the same z order.
func RenderFramebuffer(buf *slotbuf.Buffer, reg *Registry, result *LayoutResult, root int32, width, height int) *Framebuffer {
	fb := &Framebuffer{Cells: NewCellBuffer(width, height)}
	if root < 0 {
		return fb
	}
	e := &framebufferEngine{buf: buf, reg: reg, result: result, fb: fb}
	screen := Rect{X: 0, Y: 0, W: float32(width), H: float32(height)}
	e.paint(root, paintCtx{clip: screen, fg: DefaultResolvedColor, bg: DefaultResolvedColor, opacity: 1})
	return fb
}

type paintCtx struct {
	clip         Rect
	dx, dy       float32
	fg, bg       uint32
	opacity      float32
}

type framebufferEngine struct {
	buf    *slotbuf.Buffer
	reg    *Registry
	result *LayoutResult
	fb     *Framebuffer
}

func (e *framebufferEngine) paint(index int32, ctx paintCtx) {
	box, ok := e.result.Box(index)
	if !ok || !box.Visible {
		return
	}

	screenOuter := Rect{X: box.Outer.X + ctx.dx, Y: box.Outer.Y + ctx.dy, W: box.Outer.W, H: box.Outer.H}
	clip := intersectRect(ctx.clip, screenOuter)

	nodeFg := e.buf.GetUint32(index, slotbuf.NodeOffForeground)
	nodeBg := e.buf.GetUint32(index, slotbuf.NodeOffBackground)
	resolvedFg := ResolveColor(nodeFg, ctx.fg)
	resolvedBg := ResolveColor(nodeBg, ctx.bg)

	nodeOpacity := e.buf.GetFloat32(index, slotbuf.NodeOffOpacity)
	if math.IsNaN(float64(nodeOpacity)) || nodeOpacity < 0 {
		nodeOpacity = 1
	}
	opacity := ctx.opacity * nodeOpacity

	if clip.W > 0 && clip.H > 0 {
		e.fillRect(clip, resolvedBg, opacity)
		e.paintBorder(index, screenOuter, clip, resolvedFg, opacity)
	}

	innerScreen := Rect{X: box.Inner.X + ctx.dx, Y: box.Inner.Y + ctx.dy, W: box.Inner.W, H: box.Inner.H}
	innerClip := intersectRect(clip, innerScreen)

	if innerClip.W > 0 && innerClip.H > 0 {
		e.paintContent(index, innerScreen, innerClip, resolvedFg, resolvedBg, opacity)
		if box.Scrollable {
			e.paintScrollbars(box, screenOuter, innerClip, resolvedFg, opacity)
		}
	}

	if clip.W > 0 && clip.H > 0 && e.isMouseInteractive(index) {
		e.fb.Regions = append(e.fb.Regions, HitRegion{
			X: int(clip.X), Y: int(clip.Y), W: int(math.Ceil(float64(clip.W))), H: int(math.Ceil(float64(clip.H))),
			ComponentIdx: index,
		})
	}

	children := e.reg.Children(index)
	sort.SliceStable(children, func(i, j int) bool {
		return e.buf.GetInt32(children[i], slotbuf.NodeOffZIndex) < e.buf.GetInt32(children[j], slotbuf.NodeOffZIndex)
	})

	childDx, childDy := ctx.dx, ctx.dy
	childClip := innerClip
	if box.Scrollable {
		childDx -= float32(box.ScrollX)
		childDy -= float32(box.ScrollY)
	}
	for _, c := range children {
		e.paint(c, paintCtx{clip: childClip, dx: childDx, dy: childDy, fg: resolvedFg, bg: resolvedBg, opacity: opacity})
	}
}

// isMouseInteractive treats Focusable as the proxy for "this node is a
// legitimate mouse target": the node record carries no separate
// "wants mouse events" bit, and every widget that registers a mouse
// handler in dispatch.go also marks itself focusable (click-to-focus),
// so the two sets coincide in practice.
func (e *framebufferEngine) isMouseInteractive(index int32) bool {
	return e.buf.GetUint32(index, slotbuf.NodeOffFlags)&slotbuf.NodeFlagFocusable != 0
}

func (e *framebufferEngine) fillRect(rect Rect, bg uint32, opacity float32) {
	if bg == 0 {
		return
	}
	x0, y0, x1, y1 := rectBounds(rect, e.fb.Cells.Width(), e.fb.Cells.Height())
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			existing := e.fb.Cells.Get(x, y)
			style := existing.Style
			style.Bg = blendColor(existing.Style.Bg, bg, opacity)
			e.fb.Cells.Set(x, y, Cell{Char: existing.Char, Style: style})
		}
	}
}

func (e *framebufferEngine) paintBorder(index int32, outer, clip Rect, fg uint32, opacity float32) {
	style := BorderStyle(e.buf.GetUint8(index, slotbuf.NodeOffBorderStyle))
	if style == BorderNone {
		return
	}
	chars, ok := BorderCharSets[style]
	if !ok {
		return
	}
	borderColor := ResolveColor(e.buf.GetUint32(index, slotbuf.NodeOffBorderColor), fg)

	x0 := int(math.Round(float64(outer.X)))
	y0 := int(math.Round(float64(outer.Y)))
	x1 := x0 + int(math.Round(float64(outer.W))) - 1
	y1 := y0 + int(math.Round(float64(outer.H))) - 1
	if x1 < x0 || y1 < y0 {
		return
	}

	put := func(x, y int, ch rune) {
		if float32(x) < clip.X || float32(x) >= clip.X+clip.W || float32(y) < clip.Y || float32(y) >= clip.Y+clip.H {
			return
		}
		e.fb.Cells.SetCharMerge(x, y, ch, Style{Fg: blendColor(0, borderColor, opacity)})
	}
	for x := x0; x <= x1; x++ {
		put(x, y0, chars.Horizontal)
		put(x, y1, chars.Horizontal)
	}
	for y := y0; y <= y1; y++ {
		put(x0, y, chars.Vertical)
		put(x1, y, chars.Vertical)
	}
	put(x0, y0, chars.TopLeft)
	put(x1, y0, chars.TopRight)
	put(x0, y1, chars.BottomLeft)
	put(x1, y1, chars.BottomRight)
}

// paintContent paints a leaf text node's content, wrapped to fit
// innerScreen's width and clipped to innerClip, one visual row per
// output line — the same CollectTextContent+WrapText pair layout.go
// exposes for measurement, reused here for painting.
func (e *framebufferEngine) paintContent(index int32, innerScreen, innerClip Rect, fg, bg uint32, opacity float32) {
	content := CollectTextContent(e.buf, index)
	if content == "" {
		return
	}
	width := int(math.Floor(float64(innerScreen.W)))
	if width <= 0 {
		return
	}
	lines := WrapText(content, width)
	style := Style{Fg: blendColor(0, fg, opacity), Bg: bg}

	baseX, baseY := int(math.Round(float64(innerScreen.X))), int(math.Round(float64(innerScreen.Y)))
	for i, line := range lines {
		y := baseY + i
		if float32(y) < innerClip.Y || float32(y) >= innerClip.Y+innerClip.H {
			continue
		}
		x := baseX
		for _, g := range text.Graphemes(line) {
			w := text.StringWidth(g)
			if float32(x) >= innerClip.X && float32(x) < innerClip.X+innerClip.W {
				e.fb.Cells.SetCharMerge(x, y, []rune(g)[0], style)
			}
			x += w
			if w == 0 {
				x++
			}
		}
	}
}

// paintScrollbars draws a one-cell-wide vertical thumb along outer's
// right edge and a one-cell-tall horizontal thumb along its bottom
// edge: thumb size = max(1, visible*visible/(visible+maxScroll)), thumb
// position = scroll*(visible-thumb)/maxScroll.
func (e *framebufferEngine) paintScrollbars(box *LayoutBox, outer, innerClip Rect, fg uint32, opacity float32) {
	thumbStyle := Style{Fg: blendColor(0, fg, opacity)}
	if box.MaxScrollY > 0 {
		trackH := int(math.Round(float64(outer.H)))
		thumb := maxInt(1, trackH*trackH/(trackH+int(box.MaxScrollY)))
		pos := 0
		if trackH-thumb > 0 {
			pos = int(box.ScrollY) * (trackH - thumb) / int(box.MaxScrollY)
		}
		x := int(math.Round(float64(outer.X + outer.W - 1)))
		y0 := int(math.Round(float64(outer.Y)))
		for i := 0; i < thumb; i++ {
			y := y0 + pos + i
			if float32(x) < innerClip.X-1 || float32(y) < innerClip.Y || float32(y) >= innerClip.Y+innerClip.H+1 {
				continue
			}
			e.fb.Cells.SetCharMerge(x, y, '█', thumbStyle)
		}
	}
	if box.MaxScrollX > 0 {
		trackW := int(math.Round(float64(outer.W)))
		thumb := maxInt(1, trackW*trackW/(trackW+int(box.MaxScrollX)))
		pos := 0
		if trackW-thumb > 0 {
			pos = int(box.ScrollX) * (trackW - thumb) / int(box.MaxScrollX)
		}
		y := int(math.Round(float64(outer.Y + outer.H - 1)))
		x0 := int(math.Round(float64(outer.X)))
		for i := 0; i < thumb; i++ {
			x := x0 + pos + i
			e.fb.Cells.SetCharMerge(x, y, '█', thumbStyle)
		}
	}
}

func rectBounds(r Rect, w, h int) (x0, y0, x1, y1 int) {
	x0 = int(math.Round(float64(r.X)))
	y0 = int(math.Round(float64(r.Y)))
	x1 = x0 + int(math.Round(float64(r.W)))
	y1 = y0 + int(math.Round(float64(r.H)))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	return
}

func intersectRect(a, b Rect) Rect {
	x0 := maxf32(a.X, b.X)
	y0 := maxf32(a.Y, b.Y)
	x1 := minf32(a.X+a.W, b.X+b.W)
	y1 := minf32(a.Y+a.H, b.Y+b.H)
	w, h := x1-x0, y1-y0
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: x0, Y: y0, W: w, H: h}
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// blendColor alpha-blends over atop base at alpha. A packed color
// using either reserved sentinel (terminal-default or palette-index,
// slotbuf.node.go) is returned as-is: those encodings aren't additive
// ARGB, so there is nothing to blend.
func blendColor(base, over uint32, alpha float32) uint32 {
	if alpha >= 0.999 || isSentinelColor(over) || isSentinelColor(base) || base == 0 {
		return over
	}
	if alpha <= 0 {
		return base
	}
	br, bgc, bb := colorRGB(base)
	or_, og, ob := colorRGB(over)
	r := uint8(float32(br)*(1-alpha) + float32(or_)*alpha)
	g := uint8(float32(bgc)*(1-alpha) + float32(og)*alpha)
	b := uint8(float32(bb)*(1-alpha) + float32(ob)*alpha)
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func isSentinelColor(c uint32) bool {
	if c == slotbuf.ColorTerminalDefault {
		return true
	}
	_, ok := slotbuf.UnpackPaletteColor(c)
	return ok
}

func colorRGB(c uint32) (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}
