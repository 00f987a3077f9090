package vtcore

import (
	"strings"
	"testing"

	"github.com/veltui/vtcore/slotbuf"
)

func TestMoveCursorIsOneBased(t *testing.T) {
	if got, want := MoveCursor(0, 0), "\x1b[1;1H"; got != want {
		t.Fatalf("MoveCursor(0,0) = %q, want %q", got, want)
	}
	if got, want := MoveCursor(9, 4), "\x1b[5;10H"; got != want {
		t.Fatalf("MoveCursor(9,4) = %q, want %q", got, want)
	}
}

func TestSetCursorShape(t *testing.T) {
	cases := []struct {
		shape CursorShape
		blink bool
		want  string
	}{
		{CursorBlock, true, "\x1b[1 q"},
		{CursorBlock, false, "\x1b[2 q"},
		{CursorUnderline, true, "\x1b[3 q"},
		{CursorUnderline, false, "\x1b[4 q"},
		{CursorBar, true, "\x1b[5 q"},
		{CursorBar, false, "\x1b[6 q"},
	}
	for _, c := range cases {
		if got := SetCursorShape(c.shape, c.blink); got != c.want {
			t.Errorf("SetCursorShape(%v, %v) = %q, want %q", c.shape, c.blink, got, c.want)
		}
	}
}

func TestColorToAnsiTerminalDefault(t *testing.T) {
	if got, want := colorToAnsi(slotbuf.ColorTerminalDefault, true), "\x1b[39m"; got != want {
		t.Fatalf("fg default = %q, want %q", got, want)
	}
	if got, want := colorToAnsi(slotbuf.ColorTerminalDefault, false), "\x1b[49m"; got != want {
		t.Fatalf("bg default = %q, want %q", got, want)
	}
}

func TestColorToAnsiPalette(t *testing.T) {
	packed := slotbuf.PackPaletteColor(200)
	if got, want := colorToAnsi(packed, true), "\x1b[38;5;200m"; got != want {
		t.Fatalf("fg palette = %q, want %q", got, want)
	}
	if got, want := colorToAnsi(packed, false), "\x1b[48;5;200m"; got != want {
		t.Fatalf("bg palette = %q, want %q", got, want)
	}
}

func TestColorToAnsiTruecolor(t *testing.T) {
	c := uint32(0x123456)
	if got, want := colorToAnsi(c, true), "\x1b[38;2;18;52;86m"; got != want {
		t.Fatalf("fg truecolor = %q, want %q", got, want)
	}
}

func TestStyleToAnsiAttrsAndColors(t *testing.T) {
	var sb strings.Builder
	style := Style{Fg: 0xFF0000, Bg: 0x00FF00, Attrs: AttrBold | AttrUnderline}
	styleToAnsi(style, &sb)
	out := sb.String()
	for _, want := range []string{boldStr, underStr, "\x1b[38;2;255;0;0m", "\x1b[48;2;0;255;0m"} {
		if !strings.Contains(out, want) {
			t.Errorf("styleToAnsi output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, italicStr) {
		t.Errorf("styleToAnsi output %q should not contain italic", out)
	}
}

func TestRunToAnsiOnlyResetsOnStyleChange(t *testing.T) {
	run := CellRun{
		X: 2, Y: 1,
		Cells: []Cell{
			New('a', Style{Fg: 0xFF0000}),
			New('b', Style{Fg: 0xFF0000}),
			New('c', Style{Fg: 0x00FF00}),
		},
	}
	var sb strings.Builder
	RunToAnsi(run, &sb)
	out := sb.String()

	if !strings.HasPrefix(out, MoveCursor(2, 1)) {
		t.Fatalf("expected output to start with cursor move, got %q", out)
	}
	if got, want := strings.Count(out, resetStr), 2; got != want {
		t.Fatalf("expected %d resets (one per distinct style), got %d in %q", want, got, out)
	}
	for _, r := range []rune{'a', 'b', 'c'} {
		if !strings.ContainsRune(out, r) {
			t.Errorf("expected output to contain %q", r)
		}
	}
}

func TestRunsToAnsiEmptyEmitsJustReset(t *testing.T) {
	if got, want := RunsToAnsi(nil), resetStr; got != want {
		t.Fatalf("RunsToAnsi(nil) = %q, want %q", got, want)
	}
}

func TestBufferToSequentialAnsiUsesCRLF(t *testing.T) {
	buf := NewCellBuffer(2, 2)
	buf.WriteString(0, 0, "ab", EmptyStyle)
	buf.WriteString(0, 1, "cd", EmptyStyle)
	out := BufferToSequentialAnsi(buf)
	if !strings.Contains(out, "\r\n") {
		t.Fatalf("expected CRLF row separator in %q", out)
	}
	if strings.Count(out, "\r\n") != 1 {
		t.Fatalf("expected exactly one CRLF between the two rows, got %q", out)
	}
}
