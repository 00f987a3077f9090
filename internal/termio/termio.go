// Package termio adapts the host terminal to raw mode and reports its
// size, using golang.org/x/term instead of hand-rolled per-platform
// syscalls. The actual byte-level terminal writer is an external
// collaborator outside this engine's scope; this package is the thin
// seam the render writer and input pipeline sit on top of.
package termio

import (
	"os"

	"golang.org/x/term"
)

// State is the terminal state captured by MakeRaw, for Restore.
type State struct {
	inner *term.State
}

// MakeRaw puts fd into raw mode and returns its previous state.
func MakeRaw(fd int) (*State, error) {
	s, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &State{inner: s}, nil
}

// Restore returns fd to the state captured by MakeRaw.
func Restore(fd int, state *State) error {
	return term.Restore(fd, state.inner)
}

// GetSize returns the terminal's column and row count.
func GetSize(fd int) (width, height int, err error) {
	return term.GetSize(fd)
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Stdin returns the stdin file descriptor.
func Stdin() int { return int(os.Stdin.Fd()) }

// Stdout returns the stdout file descriptor.
func Stdout() int { return int(os.Stdout.Fd()) }
