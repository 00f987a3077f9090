package vtcore

// HitRegion is one rectangle emitted by the framebuffer traversal for
// a mouse-interactive node.
type HitRegion struct {
	X, Y         int
	W, H         int
	ComponentIdx int32
}

// HitGrid is a 2D array mapping a terminal cell to the component index
// that owns it, rebuilt whenever layout or visibility changes. Built
// on the general "last writer wins" raster-fill idiom, the same one
// the framebuffer's own z-order painting uses, rather than direct
// coordinate comparisons against every node at dispatch time.
type HitGrid struct {
	width, height int
	cells         []int32
}

// NewHitGrid allocates a grid pre-filled with -1 (no component).
func NewHitGrid(width, height int) *HitGrid {
	cells := make([]int32, width*height)
	for i := range cells {
		cells[i] = -1
	}
	return &HitGrid{width: width, height: height, cells: cells}
}

// Width and Height return the grid's dimensions.
func (g *HitGrid) Width() int  { return g.width }
func (g *HitGrid) Height() int { return g.height }

// Clear resets every cell to -1 without reallocating.
func (g *HitGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = -1
	}
}

// At returns the component index at (x, y), or -1 if out of bounds or
// uncovered.
func (g *HitGrid) At(x, y int) int32 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return -1
	}
	return g.cells[y*g.width+x]
}

// FillRect stamps region.ComponentIdx over its rectangle, clipped to
// the grid bounds. Regions must be applied in z-order (lowest first)
// for "last writer wins" to match the framebuffer's own paint order.
func (g *HitGrid) FillRect(region HitRegion) {
	x0, y0 := max(region.X, 0), max(region.Y, 0)
	x1, y1 := min(region.X+region.W, g.width), min(region.Y+region.H, g.height)
	for y := y0; y < y1; y++ {
		row := y * g.width
		for x := x0; x < x1; x++ {
			g.cells[row+x] = region.ComponentIdx
		}
	}
}

// Apply clears the grid and fills every region in order, the exact
// sequence the framebuffer's pre-order z-sorted traversal emits them
// in (so "emit order" already equals "z order").
func (g *HitGrid) Apply(regions []HitRegion) {
	g.Clear()
	for _, r := range regions {
		g.FillRect(r)
	}
}
