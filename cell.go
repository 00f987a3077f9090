// Package vtcore's Cell/Style model is the framebuffer's per-character
// unit: a codepoint plus packed-ARGB foreground/background and an attrs
// bitset, matching the wire encoding slotbuf uses for a node's color
// fields exactly (see slotbuf/node.go) so a Style can be built directly
// from buffer reads with no intermediate named-color translation.
package vtcore

import "github.com/veltui/vtcore/slotbuf"

// Attrs is a bitset of text attributes: BOLD, ITALIC, UNDERLINE,
// STRIKETHROUGH, DIM, BLINK, REVERSE, HIDDEN.
type Attrs uint8

const (
	AttrBold Attrs = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrikethrough
	AttrDim
	AttrBlink
	AttrReverse
	AttrHidden
)

// Has reports whether every bit in want is set in a.
func (a Attrs) Has(want Attrs) bool { return a&want == want }

// Style holds a cell's paint: packed-ARGB foreground/background
// (0 = inherit from an ancestor, see framebuffer.go's color-inherit
// walk; slotbuf.ColorTerminalDefault / slotbuf.PackPaletteColor are the
// two reserved sentinels) plus the attrs bitset.
type Style struct {
	Fg    uint32
	Bg    uint32
	Attrs Attrs
}

// Cell represents a single terminal character position: a codepoint
// and its style.
type Cell struct {
	Char  rune
	Style Style
}

// EmptyStyle is a Style with no attributes and inherited colors.
var EmptyStyle = Style{}

// EmptyCell is a Cell holding a space with EmptyStyle.
var EmptyCell = Cell{Char: ' ', Style: EmptyStyle}

// New creates a Cell with the given character and style.
func New(char rune, style Style) Cell {
	return Cell{Char: char, Style: style}
}

// Equal reports whether two Cells are identical.
func (a Cell) Equal(b Cell) bool {
	return a.Char == b.Char && a.Style == b.Style
}

// HasColor reports whether the style sets an explicit foreground.
func (s Style) HasColor() bool { return s.Fg != 0 }

// HasBackground reports whether the style sets an explicit background.
func (s Style) HasBackground() bool { return s.Bg != 0 }

// Merge returns a new Style combining base with overlay, overlay's
// non-zero/non-inherit fields taking precedence (last-writer-wins).
func (base Style) Merge(overlay Style) Style {
	result := base
	if overlay.Fg != 0 {
		result.Fg = overlay.Fg
	}
	if overlay.Bg != 0 {
		result.Bg = overlay.Bg
	}
	result.Attrs |= overlay.Attrs
	return result
}

// ResolveColor walks up from style's own color toward fallback when
// style doesn't set one, used by the framebuffer's inherited-color
// walk: colors with value 0 mean "inherit", so the first non-zero
// ancestor color (or slotbuf.ColorTerminalDefault if none) wins.
func ResolveColor(own uint32, ancestorResolved uint32) uint32 {
	if own != 0 {
		return own
	}
	return ancestorResolved
}

// DefaultResolvedColor is the terminal-default sentinel used as the
// root of the inherited-color walk when no ancestor sets a color.
const DefaultResolvedColor = slotbuf.ColorTerminalDefault
