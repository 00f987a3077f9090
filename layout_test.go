package vtcore

import (
	"math"
	"testing"

	"github.com/veltui/vtcore/slotbuf"
)

func setAuto(buf *slotbuf.Buffer, index int32, offsets ...int) {
	nan := float32(math.NaN())
	for _, off := range offsets {
		buf.SetFloat32(index, off, nan, slotbuf.DirtyLayout)
	}
}

func TestSolveLayoutRootFillsTerminal(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)

	result := SolveLayout(buf, reg, root, 20, 6)
	box, ok := result.Box(root)
	if !ok {
		t.Fatal("expected the root to have a solved box")
	}
	if box.Outer.W != 20 || box.Outer.H != 6 {
		t.Fatalf("expected root to fill 20x6, got %+v", box.Outer)
	}
}

func TestSolveLayoutInvisibleNodeIsNotVisited(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	// NodeFlagVisible intentionally left unset.

	result := SolveLayout(buf, reg, root, 20, 6)
	box, ok := result.Box(root)
	if !ok {
		t.Fatal("expected the root's own box to be recorded even when invisible")
	}
	if box.Visible {
		t.Fatal("expected Visible to be false")
	}
}

func TestSolveLayoutFlexRowDistributesGrowEqually(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(root, slotbuf.NodeOffDirection, uint8(DirRow), slotbuf.DirtyLayout)
	setAuto(buf, root, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis,
		slotbuf.NodeOffGapColumn, slotbuf.NodeOffGapRow)

	reg.PushParent(root)
	left := allocFocusable(t, reg, 2)
	right := allocFocusable(t, reg, 3)
	reg.PopParent()

	for _, child := range []int32{left, right} {
		buf.SetUint32(child, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
		setAuto(buf, child, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
			slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis)
		buf.SetFloat32(child, slotbuf.NodeOffGrow, 1, slotbuf.DirtyLayout)
	}

	result := SolveLayout(buf, reg, root, 10, 1)
	leftBox, _ := result.Box(left)
	rightBox, _ := result.Box(right)

	if leftBox.Outer.W != 5 || rightBox.Outer.W != 5 {
		t.Fatalf("expected two equal-grow children to split 10 cols as 5/5, got %v and %v", leftBox.Outer.W, rightBox.Outer.W)
	}
	if rightBox.Outer.X != leftBox.Outer.X+leftBox.Outer.W {
		t.Fatalf("expected the right child to start where the left child ends, got left=%+v right=%+v", leftBox.Outer, rightBox.Outer)
	}
}

func TestSolveLayoutFlexRowHonorsExplicitWidth(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(root, slotbuf.NodeOffDirection, uint8(DirRow), slotbuf.DirtyLayout)
	setAuto(buf, root, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis,
		slotbuf.NodeOffGapColumn, slotbuf.NodeOffGapRow)

	reg.PushParent(root)
	fixed := allocFocusable(t, reg, 2)
	reg.PopParent()

	buf.SetUint32(fixed, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	setAuto(buf, fixed, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth, slotbuf.NodeOffMaxWidth,
		slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis)
	buf.SetFloat32(fixed, slotbuf.NodeOffReqWidth, 4, slotbuf.DirtyLayout)

	result := SolveLayout(buf, reg, root, 10, 1)
	box, _ := result.Box(fixed)
	if box.Outer.W != 4 {
		t.Fatalf("expected explicit ReqWidth=4 to be honored, got %v", box.Outer.W)
	}
}

func TestResolveSizeClampsToMinMax(t *testing.T) {
	nan := float32(math.NaN())
	if got := resolveSize(nan, 20, 2, 10); got != 10 {
		t.Fatalf("expected auto size clamped to max 10, got %v", got)
	}
	if got := resolveSize(nan, 1, 2, 10); got != 2 {
		t.Fatalf("expected auto size clamped to min 2, got %v", got)
	}
	if got := resolveSize(5, 20, 0, -1); got != 5 {
		t.Fatalf("expected an explicit request to win over avail, got %v", got)
	}
}

func TestSolveLayoutGridSplitsIntoEqualAutoPlacedTracks(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(root, slotbuf.NodeOffDirection, uint8(DirGrid), slotbuf.DirtyLayout)
	setAuto(buf, root, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis,
		slotbuf.NodeOffGapColumn, slotbuf.NodeOffGapRow)

	reg.PushParent(root)
	a := allocFocusable(t, reg, 2)
	b := allocFocusable(t, reg, 3)
	c := allocFocusable(t, reg, 4)
	d := allocFocusable(t, reg, 5)
	reg.PopParent()

	for _, child := range []int32{a, b, c, d} {
		buf.SetUint32(child, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	}

	result := SolveLayout(buf, reg, root, 10, 10)
	boxA, _ := result.Box(a)
	boxB, _ := result.Box(b)
	boxC, _ := result.Box(c)

	if boxA.Outer.W != 5 || boxA.Outer.H != 5 {
		t.Fatalf("expected a 2x2 auto-placed grid to give each cell 5x5, got %+v", boxA.Outer)
	}
	if boxB.Outer.X != boxA.Outer.X+5 || boxB.Outer.Y != boxA.Outer.Y {
		t.Fatalf("expected the second cell to sit to the right of the first, got a=%+v b=%+v", boxA.Outer, boxB.Outer)
	}
	if boxC.Outer.X != boxA.Outer.X || boxC.Outer.Y != boxA.Outer.Y+5 {
		t.Fatalf("expected the third cell to wrap to the next row, got a=%+v c=%+v", boxA.Outer, boxC.Outer)
	}
}

func TestSolveLayoutGridHonorsExplicitPlacement(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(root, slotbuf.NodeOffDirection, uint8(DirGrid), slotbuf.DirtyLayout)
	setAuto(buf, root, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis,
		slotbuf.NodeOffGapColumn, slotbuf.NodeOffGapRow)

	reg.PushParent(root)
	placed := allocFocusable(t, reg, 2)
	reg.PopParent()
	buf.SetUint32(placed, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetInt32(placed, slotbuf.NodeOffGridColumnStart, 2, slotbuf.DirtyLayout)
	buf.SetInt32(placed, slotbuf.NodeOffGridColumnSpan, 2, slotbuf.DirtyLayout)

	result := SolveLayout(buf, reg, root, 12, 4)
	box, _ := result.Box(placed)
	if box.Outer.X != 4 || box.Outer.W != 8 {
		t.Fatalf("expected the explicitly placed child to start at column 2 and span 2 cols (x=4,w=8), got %+v", box.Outer)
	}
}

func TestSolveLayoutAbsoluteChildUsesInsets(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	setAuto(buf, root, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis,
		slotbuf.NodeOffGapColumn, slotbuf.NodeOffGapRow)

	reg.PushParent(root)
	floater := allocFocusable(t, reg, 2)
	reg.PopParent()
	buf.SetUint32(floater, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(floater, slotbuf.NodeOffPosition, uint8(PositionAbsolute), slotbuf.DirtyLayout)
	setAuto(buf, floater, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis)
	buf.SetFloat32(floater, slotbuf.NodeOffInsetTop, 1, slotbuf.DirtyLayout)
	buf.SetFloat32(floater, slotbuf.NodeOffInsetRight, 2, slotbuf.DirtyLayout)
	buf.SetFloat32(floater, slotbuf.NodeOffInsetBottom, -1, slotbuf.DirtyLayout)
	buf.SetFloat32(floater, slotbuf.NodeOffInsetLeft, -1, slotbuf.DirtyLayout)

	result := SolveLayout(buf, reg, root, 10, 5)
	box, _ := result.Box(floater)
	if box.Outer.Y != 1 {
		t.Fatalf("expected InsetTop=1 to place the floater's top at y=1, got %v", box.Outer.Y)
	}
	if box.Outer.X+box.Outer.W != 8 {
		t.Fatalf("expected InsetRight=2 to pin the floater's right edge at x=8 (10-2), got x=%v w=%v", box.Outer.X, box.Outer.W)
	}
}

func TestSolveLayoutResolvesScrollWhenContentOverflows(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(root, slotbuf.NodeOffDirection, uint8(DirColumn), slotbuf.DirtyLayout)
	buf.SetUint8(root, slotbuf.NodeOffOverflowY, uint8(OverflowScroll), slotbuf.DirtyLayout)
	setAuto(buf, root, slotbuf.NodeOffReqWidth, slotbuf.NodeOffReqHeight, slotbuf.NodeOffMinWidth,
		slotbuf.NodeOffMaxWidth, slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis,
		slotbuf.NodeOffGapColumn, slotbuf.NodeOffGapRow)

	reg.PushParent(root)
	tall := allocFocusable(t, reg, 2)
	reg.PopParent()
	buf.SetUint32(tall, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	setAuto(buf, tall, slotbuf.NodeOffReqWidth, slotbuf.NodeOffMinWidth, slotbuf.NodeOffMaxWidth,
		slotbuf.NodeOffMinHeight, slotbuf.NodeOffMaxHeight, slotbuf.NodeOffBasis)
	buf.SetFloat32(tall, slotbuf.NodeOffReqHeight, 20, slotbuf.DirtyLayout)
	buf.SetFloat32(tall, slotbuf.NodeOffGrow, 0, slotbuf.DirtyLayout)

	result := SolveLayout(buf, reg, root, 10, 4)
	box, _ := result.Box(root)
	if !box.Scrollable {
		t.Fatal("expected the root to report Scrollable once content height exceeds its inner box")
	}
	if box.MaxScrollY <= 0 {
		t.Fatalf("expected a positive MaxScrollY, got %d", box.MaxScrollY)
	}

	buf.SetInt32(root, slotbuf.NodeOffScrollY, 999, slotbuf.DirtyVisual)
	result2 := SolveLayout(buf, reg, root, 10, 4)
	box2, _ := result2.Box(root)
	if box2.ScrollY != box2.MaxScrollY {
		t.Fatalf("expected an out-of-range ScrollY to be clamped to MaxScrollY, got scroll=%d max=%d", box2.ScrollY, box2.MaxScrollY)
	}
}
