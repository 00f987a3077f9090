package vtcore

import "testing"

func TestNewInputEditorStartsWithCursorAtEnd(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "hi"})
	if e.Value() != "hi" {
		t.Fatalf("expected initial value 'hi', got %q", e.Value())
	}
	if got := e.State().CursorPos; got != 2 {
		t.Fatalf("expected cursor at end (2), got %d", got)
	}
}

func TestInputEditorInsertAtCursor(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "ac"})
	e.HandleKey(KeyEvent{Code: KeyArrowLeft})
	e.HandleKey(KeyEvent{Char: 'b'})
	if e.Value() != "abc" {
		t.Fatalf("expected 'abc' after inserting 'b' between a and c, got %q", e.Value())
	}
}

func TestInputEditorMaxLengthSilentlyRejects(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "ab", MaxLength: 2})
	e.HandleKey(KeyEvent{Char: 'c'})
	if e.Value() != "ab" {
		t.Fatalf("expected insert beyond MaxLength to be silently rejected, got %q", e.Value())
	}
}

func TestInputEditorBackspaceAndDelete(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "abc"})
	e.HandleKey(KeyEvent{Code: KeyBackspace})
	if e.Value() != "ab" {
		t.Fatalf("expected 'ab' after backspace at end, got %q", e.Value())
	}

	e.HandleKey(KeyEvent{Code: KeyHome})
	e.HandleKey(KeyEvent{Code: KeyDelete})
	if e.Value() != "b" {
		t.Fatalf("expected 'b' after delete at start, got %q", e.Value())
	}
}

func TestInputEditorShiftSelectAndDelete(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "abcdef"})
	e.HandleKey(KeyEvent{Code: KeyHome})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	if !e.State().HasSelection() {
		t.Fatal("expected a selection after shift+arrow twice")
	}
	e.HandleKey(KeyEvent{Code: KeyBackspace})
	if e.Value() != "cdef" {
		t.Fatalf("expected backspace to delete the selection 'ab', got %q", e.Value())
	}
	if e.State().HasSelection() {
		t.Fatal("expected selection cleared after deleting it")
	}
}

func TestInputEditorCopyPaste(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "abc"})
	e.HandleKey(KeyEvent{Code: KeyHome})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	e.HandleKey(KeyEvent{Mods: ModCtrl, Char: 'c'})

	e2 := NewInputEditor(EditorOptions{InitialValue: ""})
	e2.HandleKey(KeyEvent{Mods: ModCtrl, Char: 'v'})
	if e2.Value() != "ab" {
		t.Fatalf("expected pasted clipboard 'ab', got %q", e2.Value())
	}
}

func TestInputEditorCutRemovesSelectionAndCopies(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "abcdef"})
	e.HandleKey(KeyEvent{Code: KeyHome})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	e.HandleKey(KeyEvent{Code: KeyArrowRight, Mods: ModShift})
	e.HandleKey(KeyEvent{Mods: ModCtrl, Char: 'x'})
	if e.Value() != "def" {
		t.Fatalf("expected cut to remove the selected 'abc', got %q", e.Value())
	}

	e2 := NewInputEditor(EditorOptions{InitialValue: ""})
	e2.HandleKey(KeyEvent{Mods: ModCtrl, Char: 'v'})
	if e2.Value() != "abc" {
		t.Fatalf("expected cut text 'abc' to land in the process clipboard, got %q", e2.Value())
	}
}

func TestInputEditorSubmitAndCancelFireHandlers(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "go"})
	var submitted string
	cancelled := false
	e.OnSubmit(func(v string) { submitted = v })
	e.OnCancel(func() { cancelled = true })

	e.HandleKey(KeyEvent{Code: KeyEnter})
	if submitted != "go" {
		t.Fatalf("expected Submit fired with 'go', got %q", submitted)
	}

	e.HandleKey(KeyEvent{Code: KeyEscape})
	if !cancelled {
		t.Fatal("expected Cancel to fire on Escape")
	}
}

func TestInputEditorDisplayValueMasksPassword(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "secret", Mask: '*'})
	if got := e.DisplayValue(); got != "******" {
		t.Fatalf("expected masked display value, got %q", got)
	}
}

func TestInputEditorDisplayValueShowsPlaceholderWhenEmpty(t *testing.T) {
	e := NewInputEditor(EditorOptions{Placeholder: "type here"})
	if got := e.DisplayValue(); got != "type here" {
		t.Fatalf("expected placeholder shown for empty value, got %q", got)
	}
}

func TestInputEditorOnChangeFiresOnEdit(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "a"})
	var lastSeen string
	e.OnChange(func(st EditorState) { lastSeen = st.Value })
	e.HandleKey(KeyEvent{Char: 'b'})
	if lastSeen != "ab" {
		t.Fatalf("expected OnChange to see 'ab', got %q", lastSeen)
	}
}

func TestInputEditorUnhandledKeyReturnsFalse(t *testing.T) {
	e := NewInputEditor(EditorOptions{InitialValue: "a"})
	if e.HandleKey(KeyEvent{Code: KeyF1}) {
		t.Fatal("expected an unhandled function key to return false")
	}
}
