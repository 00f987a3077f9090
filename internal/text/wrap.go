package text

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/clipperhouse/uax29/v2/words"
)

// Graphemes splits s into user-perceived characters (grapheme
// clusters) — the unit text-input cursor movement and selection
// operate on, rather than raw byte-index string slicing.
func Graphemes(s string) []string {
	var out []string
	seg := graphemes.FromString(s)
	for seg.Next() {
		out = append(out, seg.Value())
	}
	return out
}

// WordBoundaries returns the byte offsets of each Unicode word boundary
// in s, using uax29's word-segmentation algorithm rather than an
// ASCII-only scan, so Ctrl+Left/Right word movement and
// double-click-to-select-word work across scripts.
func WordBoundaries(s string) []int {
	var bounds []int
	seg := words.FromString(s)
	offset := 0
	for seg.Next() {
		offset += len(seg.Value())
		bounds = append(bounds, offset)
	}
	return bounds
}

// Wrap breaks s into lines of up to maxWidth columns, breaking at word
// boundaries. A single word wider than maxWidth is hard-broken grapheme
// by grapheme: it continues the current line, which is cut whenever the
// next grapheme would overflow a line that is already more than half
// full (a line at most half full takes the grapheme even if it then
// overflows, which only a wide grapheme can cause).
func Wrap(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{s}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		lines = append(lines, current.String())
		current.Reset()
		currentWidth = 0
	}

	seg := words.FromString(s)
	for seg.Next() {
		word := seg.Value()
		if word == "\n" {
			flush()
			continue
		}

		w := StringWidth(word)
		if w > maxWidth {
			// Hard-wrap a single overlong word grapheme by grapheme.
			for _, g := range Graphemes(word) {
				gw := Width([]rune(g)[0])
				if currentWidth+gw > maxWidth && currentWidth > maxWidth/2 {
					flush()
				}
				current.WriteString(g)
				currentWidth += gw
			}
			continue
		}

		if currentWidth+w > maxWidth && currentWidth > 0 {
			flush()
		}
		current.WriteString(word)
		currentWidth += w
	}

	if current.Len() > 0 || len(lines) == 0 {
		lines = append(lines, current.String())
	}
	return lines
}
