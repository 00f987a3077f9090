// ANSI escape code generation for terminal output: pre-computed control
// sequences and a CellRun/run-based writer that only emits a style
// change when the style actually differs from the previous cell.
// vtcore's Style carries a packed-ARGB uint32 per channel with
// slotbuf.ColorTerminalDefault and slotbuf.PackPaletteColor sentinels
// baked into the same word (see cell.go), rather than named Color
// constants with an optional RGB override. Hyperlink/OSC8 support is
// dropped — nothing in this package needs a Style.HyperlinkURL field.
package vtcore

import (
	"strconv"
	"strings"

	"github.com/veltui/vtcore/slotbuf"
)

const (
	ESC = "\x1b"
	CSI = ESC + "["
)

// Pre-computed ANSI escape sequences.
const (
	csiStr    = "\x1b["
	resetStr  = "\x1b[0m"
	boldStr   = "\x1b[1m"
	dimStr    = "\x1b[2m"
	italicStr = "\x1b[3m"
	underStr  = "\x1b[4m"
	blinkStr  = "\x1b[5m"
	invStr    = "\x1b[7m"
	hiddenStr = "\x1b[8m"
	strikeStr = "\x1b[9m"
)

// MoveCursor returns the ANSI code to move the cursor to (x, y).
// ANSI uses 1-based coordinates.
func MoveCursor(x, y int) string {
	return csiStr + strconv.Itoa(y+1) + ";" + strconv.Itoa(x+1) + "H"
}

// HideCursor returns the ANSI code to hide the cursor.
func HideCursor() string { return CSI + "?25l" }

// ShowCursor returns the ANSI code to show the cursor.
func ShowCursor() string { return CSI + "?25h" }

// CursorShape selects one of the DECSCUSR cursor rendering styles a
// render writer can request via its cursor_shape field.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// SetCursorShape returns the DECSCUSR sequence for shape, blinking
// when blink is true.
func SetCursorShape(shape CursorShape, blink bool) string {
	var n int
	switch shape {
	case CursorBlock:
		n = 1
	case CursorUnderline:
		n = 3
	case CursorBar:
		n = 5
	}
	if !blink {
		n++
	}
	return csiStr + strconv.Itoa(n) + " q"
}

// EnterAltScreen/ExitAltScreen switch to and from the terminal's
// alternate screen buffer, used by the fullscreen render mode.
func EnterAltScreen() string { return CSI + "?1049h" }
func ExitAltScreen() string  { return CSI + "?1049l" }

// ClearScreen returns the ANSI code to clear the screen and home the
// cursor.
func ClearScreen() string { return CSI + "2J" + CSI + "H" }

// ClearLine clears from the cursor to the end of the current line.
func ClearLine() string { return CSI + "K" }

// EnableMouse/DisableMouse toggle SGR extended mouse reporting
// (button press/release, motion, and wheel).
func EnableMouse() string  { return CSI + "?1000h" + CSI + "?1002h" + CSI + "?1003h" + CSI + "?1006h" }
func DisableMouse() string { return CSI + "?1000l" + CSI + "?1002l" + CSI + "?1003l" + CSI + "?1006l" }

// colorToAnsi converts a packed-ARGB color word to a foreground or
// background SGR sequence. A palette-encoded color emits the 256-color
// indexed form (38;5;n / 48;5;n); ColorTerminalDefault emits the plain
// "default" SGR code (39/49) rather than a color at all; anything else
// is a direct 24-bit truecolor sequence.
func colorToAnsi(c uint32, isFg bool) string {
	base := 38
	if !isFg {
		base = 48
	}
	if c == slotbuf.ColorTerminalDefault {
		if isFg {
			return csiStr + "39m"
		}
		return csiStr + "49m"
	}
	if idx, ok := slotbuf.UnpackPaletteColor(c); ok {
		return csiStr + strconv.Itoa(base) + ";5;" + strconv.Itoa(int(idx)) + "m"
	}
	r := (c >> 16) & 0xFF
	g := (c >> 8) & 0xFF
	b := c & 0xFF
	return csiStr + strconv.Itoa(base+2) + ";2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
}

// styleToAnsi writes the SGR sequence for style's attrs and colors to
// sb. A zero (inherit) color emits nothing — by the time a Style
// reaches the framebuffer it has already been resolved against its
// ancestor chain (see cell.go's ResolveColor), so a truly unresolved
// zero here means "terminal default" and is left to the terminal's own
// SGR reset state.
func styleToAnsi(style Style, sb *strings.Builder) {
	if style.Attrs.Has(AttrBold) {
		sb.WriteString(boldStr)
	}
	if style.Attrs.Has(AttrDim) {
		sb.WriteString(dimStr)
	}
	if style.Attrs.Has(AttrItalic) {
		sb.WriteString(italicStr)
	}
	if style.Attrs.Has(AttrUnderline) {
		sb.WriteString(underStr)
	}
	if style.Attrs.Has(AttrBlink) {
		sb.WriteString(blinkStr)
	}
	if style.Attrs.Has(AttrReverse) {
		sb.WriteString(invStr)
	}
	if style.Attrs.Has(AttrHidden) {
		sb.WriteString(hiddenStr)
	}
	if style.Attrs.Has(AttrStrikethrough) {
		sb.WriteString(strikeStr)
	}
	if style.Fg != 0 {
		sb.WriteString(colorToAnsi(style.Fg, true))
	}
	if style.Bg != 0 {
		sb.WriteString(colorToAnsi(style.Bg, false))
	}
}

// CellRun is a run of consecutive cells starting at (X, Y), the unit a
// diff pass emits for the fullscreen/inline render writers.
type CellRun struct {
	X     int
	Y     int
	Cells []Cell
}

// RunToAnsi renders one run to sb, resetting and reapplying SGR state
// only when a cell's style actually differs from the previous cell's.
func RunToAnsi(run CellRun, sb *strings.Builder) {
	sb.WriteString(MoveCursor(run.X, run.Y))

	var current *Style
	for _, c := range run.Cells {
		if current == nil || *current != c.Style {
			sb.WriteString(resetStr)
			styleToAnsi(c.Style, sb)
			styleCopy := c.Style
			current = &styleCopy
		}
		sb.WriteRune(c.Char)
	}
}

// RunsToAnsi renders every run to a single ANSI string, terminated by
// a style reset.
func RunsToAnsi(runs []CellRun) string {
	if len(runs) == 0 {
		return resetStr
	}
	totalCells := 0
	for _, run := range runs {
		totalCells += len(run.Cells)
	}
	var sb strings.Builder
	sb.Grow(totalCells*20 + len(runs)*15)
	for _, run := range runs {
		RunToAnsi(run, &sb)
	}
	sb.WriteString(resetStr)
	return sb.String()
}

// RunsToAnsiBuilder renders every run into a caller-owned builder,
// avoiding the per-call allocation RunsToAnsi pays for its own builder.
func RunsToAnsiBuilder(runs []CellRun, sb *strings.Builder) {
	if len(runs) == 0 {
		sb.WriteString(resetStr)
		return
	}
	for _, run := range runs {
		RunToAnsi(run, sb)
	}
	sb.WriteString(resetStr)
}

// BufferToSequentialAnsi renders buf line by line using \r\n instead
// of cursor positioning, for the append render mode's scrollback
// output where absolute cursor addressing doesn't apply.
func BufferToSequentialAnsi(buf *CellBuffer) string {
	var sb strings.Builder
	sb.Grow(buf.Width() * buf.Height() * 15)
	sb.WriteString(MoveCursor(0, 0))

	var current *Style
	for y := 0; y < buf.Height(); y++ {
		if y > 0 {
			if current != nil {
				sb.WriteString(resetStr)
				current = nil
			}
			sb.WriteString("\r\n")
		}
		for x := 0; x < buf.Width(); x++ {
			c := buf.Get(x, y)
			if current == nil || *current != c.Style {
				sb.WriteString(resetStr)
				styleToAnsi(c.Style, &sb)
				styleCopy := c.Style
				current = &styleCopy
			}
			sb.WriteRune(c.Char)
		}
	}
	sb.WriteString(resetStr)
	return sb.String()
}
