// Package slotbuf implements the shared, contiguous byte-buffer wire
// format a vtcore process publishes so an out-of-process host can read
// layout, paint, and input state without a serialization round trip:
// a fixed header, a fixed-stride node region, a bump-allocated text
// pool, and a single-producer/single-consumer event ring.
//
// Every offset in this package is a named constant rather than a
// computed one, so a reader compiled against a different version of
// this package can still detect a layout mismatch at the boundary
// instead of silently misreading bytes — the same discipline
// garaekz/tfx applies to its own config validation, of aggregating
// every mismatch into one reported error rather than stopping at the
// first (see Buffer.VerifyLayout).
package slotbuf

import "encoding/binary"

// Magic identifies a vtcore shared buffer at offset 0.
const Magic uint32 = 0x76745432 // "vtT2"

// Version is bumped whenever the header or node record layout changes
// in a way that is not purely additive.
const Version uint32 = 1

// HeaderSize is the fixed size, in bytes, of the buffer header.
const HeaderSize = 256

// Header field byte offsets, all little-endian.
const (
	offMagic            = 0
	offVersion          = 4
	offNodeCount        = 8
	offMaxNodes         = 12
	offNodeStride       = 16
	offNodeRegionOffset = 20
	offTextPoolOffset   = 24
	offTextPoolSize     = 28
	offTextPoolUsed     = 32
	offEventRingOffset  = 36
	offEventRingSize    = 40
	offTerminalWidth    = 44
	offTerminalHeight   = 48
	offConfigFlags      = 52
	// offWakeEngine/offWakeHost back the two WakeWord atomics a Buffer
	// owns (see wake.go's WakePair): Buffer.WakeToEngine/WakeToHost
	// bind onto these bytes at construction, so every Store mirrors
	// into the shared buffer and a second runtime polling these offsets
	// directly observes the same wake signal this process's atomics
	// serve to same-process waiters.
	offWakeEngine = 56
	offWakeHost   = 60
	offChecksum         = 64

	// Runtime-state fields below offChecksum are published on every
	// change by the owning subsystem (focus.go, dispatch.go,
	// render_writer.go, layout.go) rather than only once at
	// construction, so an out-of-process host can read current
	// focus/hover/press/mouse/render state directly off the header
	// without replaying the event ring. They are deliberately excluded
	// from the checksum (see checksumOf), which only covers the fields
	// that describe the buffer's static memory layout.
	offFocusedIndex  = 68 // int32, -1 = none
	offHoveredIndex  = 72 // int32, -1 = none
	offPressedIndex  = 76 // int32, -1 = none
	offMouseX        = 80 // int32
	offMouseY        = 84 // int32
	offRenderMode    = 88 // uint32, RenderMode
	offCursorConfig  = 92 // uint32, packed cursor shape (low byte) + blink bit
	offScrollSpeed   = 96 // uint32, cells per wheel tick / arrow key
	offExitRequested = 100 // uint32, 0/1
	offRenderCount   = 104 // uint32, frames rendered, wraps
	offLayoutCount   = 108 // uint32, layout passes solved, wraps
	offEventWriteIdx = 112 // uint32, mirrors the event ring's write cursor
	offEventReadIdx  = 116 // uint32, mirrors the event ring's read cursor
)

// DefaultScrollSpeed is the scroll_speed header field's value at
// construction: cells moved per wheel tick or arrow-key press, until a
// host or the engine calls Buffer.SetScrollSpeed with something else.
const DefaultScrollSpeed uint32 = 3

// Config flag bits, packed into the header's config_flags word.
const (
	ConfigDebugAssertions uint32 = 1 << 0
	ConfigMouseEnabled    uint32 = 1 << 1
	ConfigPaletteOnly     uint32 = 1 << 2
)

// Header is a decoded, convenience view of the buffer header. Layout
// is solved host-side against the raw bytes directly (see Buffer); this
// struct exists for inspection and for constructing a fresh header.
type Header struct {
	NodeCount       int32
	MaxNodes        int32
	NodeStride      int32
	NodeRegionOffset uint32
	TextPoolOffset  uint32
	TextPoolSize    uint32
	TextPoolUsed    uint32
	EventRingOffset uint32
	EventRingSize   uint32
	TerminalWidth   int32
	TerminalHeight  int32
	ConfigFlags     uint32

	FocusedIndex  int32
	HoveredIndex  int32
	PressedIndex  int32
	MouseX        int32
	MouseY        int32
	RenderMode    uint32
	CursorConfig  uint32
	ScrollSpeed   uint32
	ExitRequested uint32
	RenderCount   uint32
	LayoutCount   uint32
	EventWriteIdx uint32
	EventReadIdx  uint32
}

func writeHeader(buf []byte, h Header) {
	le := binary.LittleEndian
	le.PutUint32(buf[offMagic:], Magic)
	le.PutUint32(buf[offVersion:], Version)
	le.PutUint32(buf[offNodeCount:], uint32(h.NodeCount))
	le.PutUint32(buf[offMaxNodes:], uint32(h.MaxNodes))
	le.PutUint32(buf[offNodeStride:], uint32(h.NodeStride))
	le.PutUint32(buf[offNodeRegionOffset:], h.NodeRegionOffset)
	le.PutUint32(buf[offTextPoolOffset:], h.TextPoolOffset)
	le.PutUint32(buf[offTextPoolSize:], h.TextPoolSize)
	le.PutUint32(buf[offTextPoolUsed:], h.TextPoolUsed)
	le.PutUint32(buf[offEventRingOffset:], h.EventRingOffset)
	le.PutUint32(buf[offEventRingSize:], h.EventRingSize)
	le.PutUint32(buf[offTerminalWidth:], uint32(h.TerminalWidth))
	le.PutUint32(buf[offTerminalHeight:], uint32(h.TerminalHeight))
	le.PutUint32(buf[offConfigFlags:], h.ConfigFlags)
	le.PutUint32(buf[offChecksum:], checksumOf(buf))

	le.PutUint32(buf[offFocusedIndex:], uint32(h.FocusedIndex))
	le.PutUint32(buf[offHoveredIndex:], uint32(h.HoveredIndex))
	le.PutUint32(buf[offPressedIndex:], uint32(h.PressedIndex))
	le.PutUint32(buf[offMouseX:], uint32(h.MouseX))
	le.PutUint32(buf[offMouseY:], uint32(h.MouseY))
	le.PutUint32(buf[offRenderMode:], h.RenderMode)
	le.PutUint32(buf[offCursorConfig:], h.CursorConfig)
	le.PutUint32(buf[offScrollSpeed:], h.ScrollSpeed)
	le.PutUint32(buf[offExitRequested:], h.ExitRequested)
	le.PutUint32(buf[offRenderCount:], h.RenderCount)
	le.PutUint32(buf[offLayoutCount:], h.LayoutCount)
	le.PutUint32(buf[offEventWriteIdx:], h.EventWriteIdx)
	le.PutUint32(buf[offEventReadIdx:], h.EventReadIdx)
}

func readHeader(buf []byte) Header {
	le := binary.LittleEndian
	return Header{
		NodeCount:        int32(le.Uint32(buf[offNodeCount:])),
		MaxNodes:         int32(le.Uint32(buf[offMaxNodes:])),
		NodeStride:       int32(le.Uint32(buf[offNodeStride:])),
		NodeRegionOffset: le.Uint32(buf[offNodeRegionOffset:]),
		TextPoolOffset:   le.Uint32(buf[offTextPoolOffset:]),
		TextPoolSize:     le.Uint32(buf[offTextPoolSize:]),
		TextPoolUsed:     le.Uint32(buf[offTextPoolUsed:]),
		EventRingOffset:  le.Uint32(buf[offEventRingOffset:]),
		EventRingSize:    le.Uint32(buf[offEventRingSize:]),
		TerminalWidth:    int32(le.Uint32(buf[offTerminalWidth:])),
		TerminalHeight:   int32(le.Uint32(buf[offTerminalHeight:])),
		ConfigFlags:      le.Uint32(buf[offConfigFlags:]),

		FocusedIndex:  int32(le.Uint32(buf[offFocusedIndex:])),
		HoveredIndex:  int32(le.Uint32(buf[offHoveredIndex:])),
		PressedIndex:  int32(le.Uint32(buf[offPressedIndex:])),
		MouseX:        int32(le.Uint32(buf[offMouseX:])),
		MouseY:        int32(le.Uint32(buf[offMouseY:])),
		RenderMode:    le.Uint32(buf[offRenderMode:]),
		CursorConfig:  le.Uint32(buf[offCursorConfig:]),
		ScrollSpeed:   le.Uint32(buf[offScrollSpeed:]),
		ExitRequested: le.Uint32(buf[offExitRequested:]),
		RenderCount:   le.Uint32(buf[offRenderCount:]),
		LayoutCount:   le.Uint32(buf[offLayoutCount:]),
		EventWriteIdx: le.Uint32(buf[offEventWriteIdx:]),
		EventReadIdx:  le.Uint32(buf[offEventReadIdx:]),
	}
}

// checksumOf computes a simple FNV-1a checksum over the header's fixed
// layout fields (magic, version, max_nodes, node_stride, and the
// region offsets and sizes; node_count, text_pool_used, terminal size,
// config flags and the wake words change at runtime and are skipped),
// so a reader can detect a header written by an incompatible build
// before trusting any node or text data that follows it.
func checksumOf(buf []byte) uint32 {
	const offsetBasis uint32 = 2166136261
	const prime uint32 = 16777619
	h := offsetBasis
	for _, r := range [][2]int{{offMagic, offNodeCount}, {offMaxNodes, offTextPoolUsed}, {offEventRingOffset, offTerminalWidth}} {
		for _, b := range buf[r[0]:r[1]] {
			h ^= uint32(b)
			h *= prime
		}
	}
	return h
}

func verifyChecksum(buf []byte) bool {
	le := binary.LittleEndian
	want := le.Uint32(buf[offChecksum:])
	return want == checksumOf(buf)
}
