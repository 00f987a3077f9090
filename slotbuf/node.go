package slotbuf

import (
	"encoding/binary"
	"math"
)

// NodeStride is the fixed byte size of one node record. Using a fixed
// stride (an array-of-structs layout) instead of columnar
// struct-of-arrays is the simpler of the two encodings this format's
// design left open; both round-trip identically from a reader's point
// of view, and the fixed stride is easier to reason about when a host
// language has no zero-cost way to express a column-major layout.
const NodeStride = 512

// Per-node field byte offsets (relative to the start of the node's
// NodeStride-byte record).
const (
	NodeOffParent      = 0  // int32
	NodeOffFlags       = 4  // uint32, see NodeFlag*
	NodeOffZIndex      = 8  // int32
	NodeOffTabIndex    = 12 // int32

	NodeOffX      = 16 // float32, solved layout box, post-rounding
	NodeOffY      = 20 // float32
	NodeOffWidth  = 24 // float32
	NodeOffHeight = 28 // float32

	NodeOffMarginTop    = 32 // float32
	NodeOffMarginRight  = 36
	NodeOffMarginBottom = 40
	NodeOffMarginLeft   = 44

	NodeOffPaddingTop    = 48
	NodeOffPaddingRight  = 52
	NodeOffPaddingBottom = 56
	NodeOffPaddingLeft   = 60

	NodeOffGrow   = 64 // float32
	NodeOffShrink = 68 // float32
	NodeOffBasis  = 72 // float32, NaN = auto

	NodeOffInsetTop    = 76 // float32, negative = unset
	NodeOffInsetRight  = 80
	NodeOffInsetBottom = 84
	NodeOffInsetLeft   = 88

	NodeOffDirection = 92 // uint8
	NodeOffWrap      = 93 // uint8
	NodeOffJustify   = 94 // uint8
	NodeOffAlign     = 95 // uint8
	NodeOffOverflowX = 96 // uint8
	NodeOffOverflowY = 97 // uint8
	NodeOffPosition  = 98 // uint8 (static/relative/absolute)

	NodeOffGapRow    = 100 // float32
	NodeOffGapColumn = 104 // float32

	NodeOffForeground = 108 // uint32, packed ARGB (see Color sentinels)
	NodeOffBackground = 112 // uint32
	NodeOffOpacity    = 116 // float32, 0..1

	NodeOffScrollX    = 120 // int32
	NodeOffScrollY    = 124 // int32
	NodeOffMaxScrollX = 128 // int32
	NodeOffMaxScrollY = 132 // int32

	NodeOffTextOffset = 136 // uint32, byte offset into the text pool
	NodeOffTextLength = 140 // uint32, byte length in the text pool

	NodeOffDirtyBits = 144 // uint32, see DirtyLayout/DirtyVisual/...

	NodeOffReqWidth  = 148 // float32, NaN = auto (fill/measure)
	NodeOffReqHeight = 152
	NodeOffMinWidth  = 156 // float32
	NodeOffMinHeight = 160
	NodeOffMaxWidth  = 164 // float32, negative = none
	NodeOffMaxHeight = 168

	NodeOffGridColumnStart = 172 // int32, 0 = auto-placed
	NodeOffGridColumnSpan  = 176 // int32, default 1
	NodeOffGridRowStart    = 180 // int32
	NodeOffGridRowSpan     = 184 // int32

	NodeOffBorderStyle = 188 // uint8
	NodeOffBorderColor = 192 // uint32, packed ARGB
)

// Node flag bits packed into NodeOffFlags.
const (
	NodeFlagVisible    uint32 = 1 << 0
	NodeFlagFocusable  uint32 = 1 << 1
	NodeFlagScrollable uint32 = 1 << 2
	NodeFlagFocused    uint32 = 1 << 3
	NodeFlagHovered    uint32 = 1 << 4
	NodeFlagPressed    uint32 = 1 << 5
	// NodeFlagStickyBottom marks a scrollable node that should follow
	// its max scroll offset as content grows, as long as it was
	// scrolled all the way to the bottom before the growth — a chat
	// log or tail-following view, rather than a fixed document.
	NodeFlagStickyBottom uint32 = 1 << 6
)

// Dirty field classes packed into NodeOffDirtyBits. These let a reader
// skip whole subsystems (e.g. re-running layout) when only a
// visual-only field, like a color, changed.
const (
	DirtyLayout    uint32 = 1 << 0
	DirtyVisual    uint32 = 1 << 1
	DirtyText      uint32 = 1 << 2
	DirtyHierarchy uint32 = 1 << 3
)

// Color sentinels for the packed ARGB fields. A normal color is a
// 0xAARRGGBB word. The two reserved encodings let a node request
// "whatever the terminal's default is" or "this indexed ANSI palette
// entry" without a separate enum field.
const (
	// ColorTerminalDefault requests the host terminal's default
	// foreground/background rather than an explicit color.
	ColorTerminalDefault uint32 = 0xFFFFFFFF
	// colorPaletteSentinelByte marks the high alpha byte of a packed
	// color as "palette index", with the index in the red byte.
	colorPaletteSentinelByte uint32 = 0xFE
)

// PackPaletteColor encodes a 0-255 ANSI palette index as a sentinel
// packed color.
func PackPaletteColor(index uint8) uint32 {
	return colorPaletteSentinelByte<<24 | uint32(index)<<16
}

// UnpackPaletteColor returns (index, true) if c was encoded by
// PackPaletteColor, or (0, false) for a direct ARGB color or the
// terminal-default sentinel.
func UnpackPaletteColor(c uint32) (uint8, bool) {
	if c>>24 != colorPaletteSentinelByte {
		return 0, false
	}
	return uint8((c >> 16) & 0xFF), true
}

func nodeStart(index int32) int {
	return int(HeaderSize) + int(index)*NodeStride
}

func putFloat32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func getFloat32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}
