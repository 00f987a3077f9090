package vtcore

import (
	"context"
	"testing"
	"time"

	"github.com/veltui/vtcore/slotbuf"
)

func newTestEngineOptions(t *testing.T) (*slotbuf.Buffer, *Registry, int32) {
	t.Helper()
	buf := newTestBuffer(t)
	reg := NewRegistry(16)
	root, err := reg.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	buf.SetUint32(root, slotbuf.NodeOffFlags, slotbuf.NodeFlagVisible, slotbuf.DirtyVisual)
	return buf, reg, root
}

func TestEngineMountRejectsReentry(t *testing.T) {
	buf, reg, root := newTestEngineOptions(t)
	e := NewEngine()

	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != nil {
		t.Fatalf("first Mount: %v", err)
	}
	defer e.Unmount()

	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != ErrAlreadyMounted {
		t.Fatalf("expected ErrAlreadyMounted on second Mount, got %v", err)
	}
}

func TestEngineMountExposesDispatcherAndWriter(t *testing.T) {
	buf, reg, root := newTestEngineOptions(t)
	e := NewEngine()
	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()

	if e.Dispatcher() == nil {
		t.Fatal("expected a non-nil Dispatcher after Mount")
	}
	if e.Writer() == nil {
		t.Fatal("expected a non-nil Writer after Mount")
	}
	if e.Wake() == nil {
		t.Fatal("expected a non-nil Wake word after Mount")
	}
}

func TestEngineRunReturnsWhenContextCancelled(t *testing.T) {
	buf, reg, root := newTestEngineOptions(t)
	e := NewEngine()
	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := e.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected Run to surface context.DeadlineExceeded, got %v", err)
	}
}

func TestEngineRunExitsOnDispatcherExitRequest(t *testing.T) {
	buf, reg, root := newTestEngineOptions(t)
	e := NewEngine()
	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()

	if err := buf.Ring().Push(slotbuf.Event{Type: slotbuf.EventExit}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := e.Run(ctx); err != nil {
		t.Fatalf("expected Run to return nil on exit request, got %v", err)
	}
}

func TestEngineUnmountIsIdempotent(t *testing.T) {
	buf, reg, root := newTestEngineOptions(t)
	e := NewEngine()
	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if err := e.Unmount(); err != nil {
		t.Fatalf("first Unmount: %v", err)
	}
	if err := e.Unmount(); err != nil {
		t.Fatalf("second Unmount should be a no-op, got %v", err)
	}

	if err := e.Mount(EngineOptions{Buf: buf, Reg: reg, Root: root, Mode: Inline}); err != nil {
		t.Fatalf("expected Mount to succeed again after Unmount, got %v", err)
	}
	_ = e.Unmount()
}
