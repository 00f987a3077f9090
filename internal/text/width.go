// Package text provides the Unicode-aware width, wrapping, and
// word-boundary helpers the layout, input-editing, and framebuffer
// text-painting code share: go-runewidth for East-Asian-width-aware
// column counting, and uax29 for grapheme/word segmentation.
package text

import "github.com/mattn/go-runewidth"

// Width returns the terminal column width of a single rune.
func Width(r rune) int {
	return runewidth.RuneWidth(r)
}

// StringWidth returns the terminal column width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to fit within maxWidth columns, appending tail
// (for example "…") when truncation actually occurs.
func Truncate(s string, maxWidth int, tail string) string {
	if StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, tail)
}
