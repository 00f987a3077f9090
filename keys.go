package vtcore

// Keycode is the normalized key identity carried on a Key event
// (slotbuf event type 1). Printable keys use their Unicode codepoint
// (32-126 for ASCII) directly as the keycode; special keys use the
// fixed sentinels below. Parsing a raw terminal escape sequence into
// one of these is ingress work done by the host, not the core — this
// file is only the normalized vocabulary both sides agree on, numeric
// rather than raw ANSI escape strings.
type Keycode uint32

const (
	KeyArrowUp Keycode = 0x1001 + iota
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
)

const (
	KeyF1 Keycode = 0x2001 + iota
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Printable ASCII control keys that don't get their own sentinel above
// (they round-trip as their own codepoint, same as any other rune).
const (
	KeyBackspace Keycode = 0x7f
	KeyTab       Keycode = '\t'
	KeyEnter     Keycode = '\r'
	KeyEscape    Keycode = 0x1b
	KeyDelete    Keycode = 0x2e // mapped by ingress, not a control char
)

// Modifier is the bitset carried alongside a Key/Mouse/Scroll event.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

// KeyState distinguishes a Key event's press/repeat/release phase.
type KeyState uint8

const (
	KeyPress KeyState = iota
	KeyRepeat
	KeyRelease
)

// KeyEvent is the normalized, decoded form of event-ring type 1
// (Key): keycode, modifiers, phase, and the rune it produces when
// combined with any live IME/shift state (0 for non-printable keys).
type KeyEvent struct {
	Code  Keycode
	Mods  Modifier
	State KeyState
	Char  rune
}

// MouseButton identifies which button a mouse down/up/click event
// reports.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
)

// MouseEvent is the normalized form of event-ring types 2-7
// (MouseDown/Up/Click/Enter/Leave/Move).
type MouseEvent struct {
	Button     MouseButton
	X, Y       int
	Mods       Modifier
	ClickCount uint8
}

// ScrollEvent is the normalized form of event-ring type 8 (Scroll).
type ScrollEvent struct {
	DeltaX, DeltaY int16
	Mods           Modifier
}

// WheelScrollDefault is the default number of cells a single wheel
// tick scrolls, matching the buffer header's scroll_speed default.
const WheelScrollDefault = 3
