package slotbuf

import "encoding/binary"

// EventType identifies the payload shape of one ring slot.
type EventType uint8

const (
	EventKey EventType = iota + 1
	EventMouseDown
	EventMouseUp
	EventClick
	EventMouseEnter
	EventMouseLeave
	EventMouseMove
	EventScroll
	EventFocus
	EventBlur
	EventValueChange
	EventSubmit
	EventCancel
	EventExit
	EventResize
)

// eventHeaderSize is the ring's fixed header: write_idx, read_idx,
// reserved, all uint32.
const eventHeaderSize = 12

// eventSlotSize is the fixed size of one ring slot: 1 byte type, 4
// bytes component index, three 4-byte payload words, 3 reserved bytes.
const eventSlotSize = 20

const (
	ringOffWrite    = 0
	ringOffRead     = 4
	ringOffReserved = 8
)

const (
	slotOffType           = 0
	slotOffComponentIndex = 1
	slotOffA              = 5
	slotOffB              = 9
	slotOffC              = 13
)

// Event is a decoded ring slot. A/B/C are reinterpreted per Type: for
// EventKey, A is the keycode, B's low byte is the modifier bitset and
// B's second byte is the press/repeat/release state, and C is the
// decoded rune; for mouse events, A/B are x/y and C packs the button
// (low byte), modifiers (second byte), and click count (third byte)
// for Up, or button/modifiers alone for Down; for EventScroll, A/B are
// delta_x/delta_y and C is the modifier bitset; for EventResize, A/B
// are width/height.
type Event struct {
	Type           EventType
	ComponentIndex int32
	A, B, C        uint32
}

// EventRing is a single-producer/single-consumer ring buffer over a
// region of the shared slot buffer. Because there is exactly one
// writer and one reader, slot publication needs no compare-and-swap —
// only the write/read cursor pair, following the sequence-counter
// discipline of the LMAX-disruptor-style ring this design is grounded
// on, narrowed to the simpler SPSC case.
type EventRing struct {
	raw      []byte
	base     int
	capacity int
}

func newEventRing(raw []byte, base, capacity int) *EventRing {
	return &EventRing{raw: raw, base: base, capacity: capacity}
}

func (r *EventRing) writeIdx() uint32 {
	return binary.LittleEndian.Uint32(r.raw[r.base+ringOffWrite:])
}

// setWriteIdx updates both the ring's own cursor and the header's
// event_write_idx mirror (see header.go), since both live in the same
// backing byte slice and a host may read either one.
func (r *EventRing) setWriteIdx(v uint32) {
	binary.LittleEndian.PutUint32(r.raw[r.base+ringOffWrite:], v)
	binary.LittleEndian.PutUint32(r.raw[offEventWriteIdx:], v)
}

func (r *EventRing) readIdx() uint32 {
	return binary.LittleEndian.Uint32(r.raw[r.base+ringOffRead:])
}

// setReadIdx updates both the ring's own cursor and the header's
// event_read_idx mirror.
func (r *EventRing) setReadIdx(v uint32) {
	binary.LittleEndian.PutUint32(r.raw[r.base+ringOffRead:], v)
	binary.LittleEndian.PutUint32(r.raw[offEventReadIdx:], v)
}

// Len returns the number of unread events currently in the ring.
func (r *EventRing) Len() int {
	return int(r.writeIdx() - r.readIdx())
}

// Push appends ev to the ring. It is only safe to call from the single
// producer goroutine/process. Returns ErrEventRingFull if the consumer
// has fallen capacity events behind.
func (r *EventRing) Push(ev Event) error {
	w := r.writeIdx()
	read := r.readIdx()
	if int(w-read) >= r.capacity {
		return ErrEventRingFull
	}

	slotOff := r.base + eventHeaderSize + int(w%uint32(r.capacity))*eventSlotSize
	r.raw[slotOff+slotOffType] = byte(ev.Type)
	binaryPutInt32(r.raw, slotOff+slotOffComponentIndex, ev.ComponentIndex)
	binaryPutUint32(r.raw, slotOff+slotOffA, ev.A)
	binaryPutUint32(r.raw, slotOff+slotOffB, ev.B)
	binaryPutUint32(r.raw, slotOff+slotOffC, ev.C)

	r.setWriteIdx(w + 1)
	return nil
}

// Pop removes and returns the oldest unread event. The second return
// value is false if the ring is empty. Only safe to call from the
// single consumer goroutine/process.
func (r *EventRing) Pop() (Event, bool) {
	read := r.readIdx()
	w := r.writeIdx()
	if read == w {
		return Event{}, false
	}

	slotOff := r.base + eventHeaderSize + int(read%uint32(r.capacity))*eventSlotSize
	ev := Event{
		Type:           EventType(r.raw[slotOff+slotOffType]),
		ComponentIndex: int32(binaryGetUint32(r.raw, slotOff+slotOffComponentIndex)),
		A:              binaryGetUint32(r.raw, slotOff+slotOffA),
		B:              binaryGetUint32(r.raw, slotOff+slotOffB),
		C:              binaryGetUint32(r.raw, slotOff+slotOffC),
	}

	r.setReadIdx(read + 1)
	return ev, true
}

// Capacity returns the number of slots in the ring.
func (r *EventRing) Capacity() int { return r.capacity }
