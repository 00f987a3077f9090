package vtcore

import (
	"testing"

	"github.com/veltui/vtcore/slotbuf"
)

func TestRenderFramebufferPaintsBackgroundAndText(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint32(root, slotbuf.NodeOffBackground, 0xFF112233, slotbuf.DirtyVisual)
	buf.SetText(root, "hi")

	result := SolveLayout(buf, reg, root, 5, 1)
	fb := RenderFramebuffer(buf, reg, result, root, 5, 1)

	cell := fb.Cells.Get(0, 0)
	if cell.Style.Bg != 0xFF112233 {
		t.Fatalf("expected background fill 0xFF112233, got %#x", cell.Style.Bg)
	}
	if fb.Cells.Get(0, 0).Char != 'h' || fb.Cells.Get(1, 0).Char != 'i' {
		t.Fatalf("expected painted text 'hi', got %q%q", fb.Cells.Get(0, 0).Char, fb.Cells.Get(1, 0).Char)
	}
}

func TestRenderFramebufferPaintsSingleBorder(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	buf.SetUint8(root, slotbuf.NodeOffBorderStyle, uint8(BorderSingle), slotbuf.DirtyVisual)

	result := SolveLayout(buf, reg, root, 4, 3)
	fb := RenderFramebuffer(buf, reg, result, root, 4, 3)

	if got := fb.Cells.Get(0, 0).Char; got != '┌' {
		t.Fatalf("expected top-left corner '┌', got %q", got)
	}
	if got := fb.Cells.Get(3, 2).Char; got != '┘' {
		t.Fatalf("expected bottom-right corner '┘', got %q", got)
	}
}

func TestRenderFramebufferEmitsHitRegionForFocusableNode(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible|slotbuf.NodeFlagFocusable, slotbuf.DirtyVisual)

	result := SolveLayout(buf, reg, root, 5, 2)
	fb := RenderFramebuffer(buf, reg, result, root, 5, 2)

	if len(fb.Regions) != 1 {
		t.Fatalf("expected one hit region for the focusable root, got %d", len(fb.Regions))
	}
	if fb.Regions[0].ComponentIdx != root {
		t.Fatalf("expected the hit region to reference root, got %d", fb.Regions[0].ComponentIdx)
	}
}

func TestRenderFramebufferSkipsInvisibleSubtree(t *testing.T) {
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root := allocFocusable(t, reg, 1)
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)

	reg.PushParent(root)
	hidden := allocFocusable(t, reg, 2)
	reg.PopParent()
	buf.SetUint32(hidden, slotbuf.NodeOffFlags, slotbuf.NodeFlagFocusable, slotbuf.DirtyVisual)

	result := SolveLayout(buf, reg, root, 5, 2)
	fb := RenderFramebuffer(buf, reg, result, root, 5, 2)
	if len(fb.Regions) != 0 {
		t.Fatalf("expected the invisible child to contribute no hit region, got %d", len(fb.Regions))
	}
}

func TestBlendColorReturnsOverlayAtFullOpacity(t *testing.T) {
	if got := blendColor(0xFF000000, 0xFFFFFFFF, 1); got != 0xFFFFFFFF {
		t.Fatalf("expected full-opacity overlay to win outright, got %#x", got)
	}
}

func TestBlendColorReturnsBaseAtZeroOpacity(t *testing.T) {
	if got := blendColor(0xFF112233, 0xFFEEEEEE, 0); got != 0xFF112233 {
		t.Fatalf("expected zero-opacity to keep the base color, got %#x", got)
	}
}
