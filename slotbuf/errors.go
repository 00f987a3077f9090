package slotbuf

import "errors"

var (
	// ErrTextInvalidUTF8 is returned when a caller tries to store text
	// that is not valid UTF-8; the pool never stores anything a reader
	// could not safely decode.
	ErrTextInvalidUTF8 = errors.New("slotbuf: text is not valid UTF-8")
	// ErrTextPoolFull is returned when a write would exceed the pool's
	// fixed capacity.
	ErrTextPoolFull = errors.New("slotbuf: text pool is full")
	// ErrEventRingFull is returned when Push is called against a ring
	// the consumer has not drained in time.
	ErrEventRingFull = errors.New("slotbuf: event ring is full")
)
