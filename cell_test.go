package vtcore

import "testing"

func TestCellEqualComparesCharAndStyle(t *testing.T) {
	a := New('x', Style{Fg: 1})
	b := New('x', Style{Fg: 1})
	c := New('x', Style{Fg: 2})
	if !a.Equal(b) {
		t.Fatal("expected identical char+style cells to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differing Fg to make cells unequal")
	}
}

func TestStyleHasColorAndHasBackground(t *testing.T) {
	plain := Style{}
	if plain.HasColor() || plain.HasBackground() {
		t.Fatal("expected a zero Style to have neither an explicit fg nor bg")
	}
	colored := Style{Fg: 0xFF00FF00, Bg: 0xFF0000FF}
	if !colored.HasColor() || !colored.HasBackground() {
		t.Fatal("expected non-zero Fg/Bg to report HasColor/HasBackground true")
	}
}

func TestStyleMergeOverlayWinsOnNonZeroFields(t *testing.T) {
	base := Style{Fg: 0xFF111111, Bg: 0xFF222222, Attrs: AttrBold}
	overlay := Style{Bg: 0xFF333333, Attrs: AttrUnderline}

	merged := base.Merge(overlay)
	if merged.Fg != base.Fg {
		t.Fatalf("expected Fg to survive from base when overlay leaves it zero, got %#x", merged.Fg)
	}
	if merged.Bg != overlay.Bg {
		t.Fatalf("expected overlay's Bg to win, got %#x", merged.Bg)
	}
	if !merged.Attrs.Has(AttrBold) || !merged.Attrs.Has(AttrUnderline) {
		t.Fatalf("expected attrs to union base and overlay, got %b", merged.Attrs)
	}
}

func TestResolveColorFallsBackToAncestorWhenOwnIsZero(t *testing.T) {
	if got := ResolveColor(0, 0xFF445566); got != 0xFF445566 {
		t.Fatalf("expected inherit-from-ancestor when own color is 0, got %#x", got)
	}
	if got := ResolveColor(0xFF111111, 0xFF445566); got != 0xFF111111 {
		t.Fatalf("expected own color to win over ancestor, got %#x", got)
	}
}

func TestAttrsHasRequiresAllWantedBits(t *testing.T) {
	a := AttrBold | AttrItalic
	if !a.Has(AttrBold) {
		t.Fatal("expected AttrBold to be reported present")
	}
	if a.Has(AttrUnderline) {
		t.Fatal("expected AttrUnderline to be reported absent")
	}
	if !a.Has(AttrBold | AttrItalic) {
		t.Fatal("expected Has to accept a combined want mask when both bits are set")
	}
}
