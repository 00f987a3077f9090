package slotbuf

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/multierr"
)

// Buffer is a process-local wrapper around the raw shared byte region:
// header, node records, text pool, and event ring. It owns no memory
// of its own beyond the slice it is given, so the same bytes can be
// backed by an mmap'd region shared with a host process.
type Buffer struct {
	mu   sync.RWMutex
	raw  []byte
	text *TextPool
	ring *EventRing
	wake WakePair

	onDirty func(index int32, bits uint32)
}

// NewBuffer allocates a fresh buffer sized for maxNodes node records
// plus the given text pool and event ring capacities, and writes an
// initial, verified header.
func NewBuffer(maxNodes int32, textPoolSize, eventRingSlots int) (*Buffer, error) {
	nodeRegionOffset := uint32(HeaderSize)
	nodeRegionSize := uint32(maxNodes) * uint32(NodeStride)
	textPoolOffset := nodeRegionOffset + nodeRegionSize
	ringOffset := textPoolOffset + uint32(textPoolSize)
	ringSize := eventHeaderSize + uint32(eventRingSlots)*eventSlotSize

	total := int(ringOffset + ringSize)
	raw := make([]byte, total)

	h := Header{
		MaxNodes:         maxNodes,
		NodeStride:       NodeStride,
		NodeRegionOffset: nodeRegionOffset,
		TextPoolOffset:   textPoolOffset,
		TextPoolSize:     uint32(textPoolSize),
		EventRingOffset:  ringOffset,
		EventRingSize:    ringSize,
		FocusedIndex:     -1,
		HoveredIndex:     -1,
		PressedIndex:     -1,
		ScrollSpeed:      DefaultScrollSpeed,
	}
	writeHeader(raw, h)

	b := &Buffer{raw: raw}
	b.text = newTextPool(raw, int(textPoolOffset), textPoolSize)
	b.ring = newEventRing(raw, int(ringOffset), eventRingSlots)
	b.wake.ToEngine.Bind(raw, offWakeEngine)
	b.wake.ToHost.Bind(raw, offWakeHost)

	if err := b.VerifyLayout(); err != nil {
		return nil, err
	}
	return b, nil
}

// VerifyLayout re-derives every offset this package's constants imply
// and compares them against what is actually encoded in the header,
// aggregating every mismatch (rather than stopping at the first) the
// way garaekz/tfx's config validation reports every invalid field at
// once. It also re-runs the header checksum.
func (b *Buffer) VerifyLayout() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var err error
	if len(b.raw) < HeaderSize {
		return fmt.Errorf("slotbuf: buffer shorter than header (%d bytes)", len(b.raw))
	}
	if !verifyChecksum(b.raw) {
		err = multierr.Append(err, fmt.Errorf("slotbuf: header checksum mismatch"))
	}
	h := readHeader(b.raw)
	if h.NodeStride != NodeStride {
		err = multierr.Append(err, fmt.Errorf("slotbuf: node stride mismatch: header has %d, package expects %d", h.NodeStride, NodeStride))
	}
	if h.NodeRegionOffset != HeaderSize {
		err = multierr.Append(err, fmt.Errorf("slotbuf: node region offset mismatch: header has %d, package expects %d", h.NodeRegionOffset, HeaderSize))
	}
	expectedTextOffset := h.NodeRegionOffset + uint32(h.MaxNodes)*uint32(h.NodeStride)
	if h.TextPoolOffset != expectedTextOffset {
		err = multierr.Append(err, fmt.Errorf("slotbuf: text pool offset mismatch: header has %d, expected %d", h.TextPoolOffset, expectedTextOffset))
	}
	expectedRingOffset := h.TextPoolOffset + h.TextPoolSize
	if h.EventRingOffset != expectedRingOffset {
		err = multierr.Append(err, fmt.Errorf("slotbuf: event ring offset mismatch: header has %d, expected %d", h.EventRingOffset, expectedRingOffset))
	}
	total := int(h.EventRingOffset + h.EventRingSize)
	if total > len(b.raw) {
		err = multierr.Append(err, fmt.Errorf("slotbuf: buffer too short: need %d bytes, have %d", total, len(b.raw)))
	}
	return err
}

// OnDirty registers a callback invoked whenever a SetFloat32,
// SetUint32, SetInt32, SetUint8 or SetText call changes a node's
// bytes, receiving the node index and the dirty field-class bits of
// that write.
func (b *Buffer) OnDirty(fn func(index int32, bits uint32)) {
	b.mu.Lock()
	b.onDirty = fn
	b.mu.Unlock()
}

func (b *Buffer) header() Header {
	return readHeader(b.raw)
}

// SetNodeCount updates the header's live node_count field, so a reader
// can iterate [0, NodeCount) instead of the full [0, MaxNodes) space.
// Nothing in this module calls it; the Registry does not hold a Buffer.
func (b *Buffer) SetNodeCount(count int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutInt32(b.raw, offNodeCount, count)
}

// SetFocusedIndex publishes the currently focused component index (-1
// = none) into the header, so a host process can read focus state
// without replaying the event ring.
func (b *Buffer) SetFocusedIndex(index int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutInt32(b.raw, offFocusedIndex, index)
}

// FocusedIndex reads the header's published focused-index field.
func (b *Buffer) FocusedIndex() int32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int32(binaryGetUint32(b.raw, offFocusedIndex))
}

// SetHoveredIndex publishes the currently hovered component index (-1
// = none) into the header.
func (b *Buffer) SetHoveredIndex(index int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutInt32(b.raw, offHoveredIndex, index)
}

// HoveredIndex reads the header's published hovered-index field.
func (b *Buffer) HoveredIndex() int32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int32(binaryGetUint32(b.raw, offHoveredIndex))
}

// SetPressedIndex publishes the currently pressed component index (-1
// = none) into the header.
func (b *Buffer) SetPressedIndex(index int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutInt32(b.raw, offPressedIndex, index)
}

// PressedIndex reads the header's published pressed-index field.
func (b *Buffer) PressedIndex() int32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int32(binaryGetUint32(b.raw, offPressedIndex))
}

// SetMousePosition publishes the last observed mouse cell coordinate
// into the header.
func (b *Buffer) SetMousePosition(x, y int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutInt32(b.raw, offMouseX, x)
	binaryPutInt32(b.raw, offMouseY, y)
}

// MousePosition reads the header's published mouse coordinate.
func (b *Buffer) MousePosition() (x, y int32) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int32(binaryGetUint32(b.raw, offMouseX)), int32(binaryGetUint32(b.raw, offMouseY))
}

// SetRenderMode publishes the render writer's active output mode into
// the header.
func (b *Buffer) SetRenderMode(mode uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutUint32(b.raw, offRenderMode, mode)
}

// RenderMode reads the header's published render-mode field.
func (b *Buffer) RenderMode() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offRenderMode)
}

// SetCursorConfig publishes the render writer's packed cursor shape
// and blink state into the header.
func (b *Buffer) SetCursorConfig(config uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutUint32(b.raw, offCursorConfig, config)
}

// CursorConfig reads the header's published cursor-config field.
func (b *Buffer) CursorConfig() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offCursorConfig)
}

// SetScrollSpeed sets the number of cells a wheel tick or keyboard
// scroll key moves. Defaults to DefaultScrollSpeed.
func (b *Buffer) SetScrollSpeed(speed uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binaryPutUint32(b.raw, offScrollSpeed, speed)
}

// ScrollSpeed reads the header's scroll_speed field.
func (b *Buffer) ScrollSpeed() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offScrollSpeed)
}

// SetExitRequested publishes whether an exit has been requested.
func (b *Buffer) SetExitRequested(requested bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := uint32(0)
	if requested {
		v = 1
	}
	binaryPutUint32(b.raw, offExitRequested, v)
}

// ExitRequested reads the header's exit_requested field.
func (b *Buffer) ExitRequested() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offExitRequested) != 0
}

// IncrementRenderCount bumps the header's render_count field by one,
// wrapping silently on overflow, so a host can detect a stalled render
// loop by polling for a stuck count.
func (b *Buffer) IncrementRenderCount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := binaryGetUint32(b.raw, offRenderCount)
	binaryPutUint32(b.raw, offRenderCount, cur+1)
}

// RenderCount reads the header's render_count field.
func (b *Buffer) RenderCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offRenderCount)
}

// IncrementLayoutCount bumps the header's layout_count field by one,
// wrapping silently on overflow.
func (b *Buffer) IncrementLayoutCount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := binaryGetUint32(b.raw, offLayoutCount)
	binaryPutUint32(b.raw, offLayoutCount, cur+1)
}

// LayoutCount reads the header's layout_count field.
func (b *Buffer) LayoutCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offLayoutCount)
}

// EventWriteIndex reads the header's mirror of the event ring's write
// cursor, kept in sync by EventRing.Push regardless of whether it was
// called through the ring directly or through Buffer.
func (b *Buffer) EventWriteIndex() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offEventWriteIdx)
}

// EventReadIndex reads the header's mirror of the event ring's read
// cursor, kept in sync by EventRing.Pop.
func (b *Buffer) EventReadIndex() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, offEventReadIdx)
}

// ClearDirty clears every dirty bit for index. The render writer does
// not call it; dirty bits accumulate until a caller clears them.
func (b *Buffer) ClearDirty(index int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	off := nodeStart(index) + NodeOffDirtyBits
	binaryPutUint32(b.raw, off, 0)
}

// DirtyBits returns the current dirty field-class bitmask for index.
func (b *Buffer) DirtyBits(index int32) uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	off := nodeStart(index) + NodeOffDirtyBits
	return binaryGetUint32(b.raw, off)
}

// SetFloat32 writes a float field at fieldOffset within node index's
// record, marking dirtyClass if the value actually changed (equality
// gating: NaN is treated as equal to NaN here, since NaN is this
// format's own "auto" sentinel, not a real numeric difference).
func (b *Buffer) SetFloat32(index int32, fieldOffset int, value float32, dirtyClass uint32) {
	b.mu.Lock()
	off := nodeStart(index) + fieldOffset
	old := getFloat32(b.raw, off)
	if old == value || (math.IsNaN(float64(old)) && math.IsNaN(float64(value))) {
		b.mu.Unlock()
		return
	}
	putFloat32(b.raw, off, value)
	b.markDirtyLocked(index, dirtyClass)
	b.mu.Unlock()
	b.notifyDirty(index, dirtyClass)
}

// GetFloat32 reads a float field at fieldOffset within node index's record.
func (b *Buffer) GetFloat32(index int32, fieldOffset int) float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return getFloat32(b.raw, nodeStart(index)+fieldOffset)
}

// SetUint32 writes a uint32 field, marking dirtyClass on change.
func (b *Buffer) SetUint32(index int32, fieldOffset int, value uint32, dirtyClass uint32) {
	b.mu.Lock()
	off := nodeStart(index) + fieldOffset
	if binaryGetUint32(b.raw, off) == value {
		b.mu.Unlock()
		return
	}
	binaryPutUint32(b.raw, off, value)
	b.markDirtyLocked(index, dirtyClass)
	b.mu.Unlock()
	b.notifyDirty(index, dirtyClass)
}

// GetUint32 reads a uint32 field.
func (b *Buffer) GetUint32(index int32, fieldOffset int) uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return binaryGetUint32(b.raw, nodeStart(index)+fieldOffset)
}

// SetInt32 writes an int32 field, marking dirtyClass on change.
func (b *Buffer) SetInt32(index int32, fieldOffset int, value int32, dirtyClass uint32) {
	b.SetUint32(index, fieldOffset, uint32(value), dirtyClass)
}

// GetInt32 reads an int32 field.
func (b *Buffer) GetInt32(index int32, fieldOffset int) int32 {
	return int32(b.GetUint32(index, fieldOffset))
}

// SetUint8 writes a single byte field, marking dirtyClass on change.
func (b *Buffer) SetUint8(index int32, fieldOffset int, value uint8, dirtyClass uint32) {
	b.mu.Lock()
	off := nodeStart(index) + fieldOffset
	if b.raw[off] == value {
		b.mu.Unlock()
		return
	}
	b.raw[off] = value
	b.markDirtyLocked(index, dirtyClass)
	b.mu.Unlock()
	b.notifyDirty(index, dirtyClass)
}

// GetUint8 reads a single byte field.
func (b *Buffer) GetUint8(index int32, fieldOffset int) uint8 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.raw[nodeStart(index)+fieldOffset]
}

func (b *Buffer) markDirtyLocked(index int32, bits uint32) {
	off := nodeStart(index) + NodeOffDirtyBits
	cur := binaryGetUint32(b.raw, off)
	binaryPutUint32(b.raw, off, cur|bits)
}

func (b *Buffer) notifyDirty(index int32, bits uint32) {
	b.mu.RLock()
	fn := b.onDirty
	b.mu.RUnlock()
	if fn != nil {
		fn(index, bits)
	}
}

// WakeToEngine returns the word a host stores a nonzero value into to
// break the engine's Run wait loop early. It is bound onto the
// header's reserved wake_engine bytes (see header.go), so a host
// reading the shared buffer directly — not sharing this process's
// atomic.Uint32 — observes the same signal by polling those bytes.
func (b *Buffer) WakeToEngine() *WakeWord { return &b.wake.ToEngine }

// WakeToHost returns the word the engine stores a nonzero value into
// to signal a host waiting on new frame state, bound onto the
// header's reserved wake_host bytes.
func (b *Buffer) WakeToHost() *WakeWord { return &b.wake.ToHost }

// Text returns the buffer's text pool.
func (b *Buffer) Text() *TextPool { return b.text }

// Ring returns the buffer's event ring.
func (b *Buffer) Ring() *EventRing { return b.ring }

// SetText writes s into the text pool and records its offset/length on
// node index, marking DirtyText.
func (b *Buffer) SetText(index int32, s string) error {
	off, n, err := b.text.Write(s)
	if err != nil {
		return err
	}
	b.mu.Lock()
	base := nodeStart(index)
	binaryPutUint32(b.raw, base+NodeOffTextOffset, uint32(off))
	binaryPutUint32(b.raw, base+NodeOffTextLength, uint32(n))
	b.markDirtyLocked(index, DirtyText)
	b.mu.Unlock()
	b.notifyDirty(index, DirtyText)
	return nil
}

// GetText reads the text currently recorded for node index.
func (b *Buffer) GetText(index int32) string {
	b.mu.RLock()
	base := nodeStart(index)
	off := binaryGetUint32(b.raw, base+NodeOffTextOffset)
	n := binaryGetUint32(b.raw, base+NodeOffTextLength)
	b.mu.RUnlock()
	return b.text.Read(int(off), int(n))
}

func binaryPutUint32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func binaryGetUint32(buf []byte, off int) uint32 {
	return uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
}

func binaryPutInt32(buf []byte, off int, v int32) {
	binaryPutUint32(buf, off, uint32(v))
}
