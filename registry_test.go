package vtcore

import "testing"

func TestRegistryAllocateIsIdempotentForSameID(t *testing.T) {
	r := NewRegistry(8)
	a, err := r.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	b, err := r.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate again: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same index for the same NodeID, got %d and %d", a, b)
	}
}

func TestRegistryAllocateExhaustionIsStructuralFault(t *testing.T) {
	prev := Debug
	Debug = false
	defer func() { Debug = prev }()

	r := NewRegistry(2)
	if _, err := r.Allocate(1); err != nil {
		t.Fatalf("Allocate 1: %v", err)
	}
	if _, err := r.Allocate(2); err != nil {
		t.Fatalf("Allocate 2: %v", err)
	}
	if _, err := r.Allocate(3); err != ErrRegistryExhausted {
		t.Fatalf("expected ErrRegistryExhausted, got %v", err)
	}
}

func TestRegistryParentChildTracking(t *testing.T) {
	r := NewRegistry(8)
	root, _ := r.Allocate(1)
	r.PushParent(root)
	child, _ := r.Allocate(2)
	r.PopParent()

	if got := r.Parent(child); got != root {
		t.Fatalf("expected child's parent to be root (%d), got %d", root, got)
	}
	kids := r.Children(root)
	if len(kids) != 1 || kids[0] != child {
		t.Fatalf("expected root's children to be [%d], got %v", child, kids)
	}
}

func TestRegistryPopParentOnEmptyStackIsStructuralFault(t *testing.T) {
	prev := Debug
	Debug = false
	defer func() { Debug = prev }()

	r := NewRegistry(8)
	if err := r.PopParent(); err != ErrNoParentContext {
		t.Fatalf("expected ErrNoParentContext, got %v", err)
	}
}

func TestRegistryReleaseFreesSubtreeChildFirst(t *testing.T) {
	r := NewRegistry(8)
	var released []int32
	r.OnRelease(func(index int32) { released = append(released, index) })

	root, _ := r.Allocate(1)
	r.PushParent(root)
	child, _ := r.Allocate(2)
	r.PushParent(child)
	grandchild, _ := r.Allocate(3)
	r.PopParent()
	r.PopParent()

	r.Release(root)

	if len(released) != 3 {
		t.Fatalf("expected 3 releases, got %d: %v", len(released), released)
	}
	if released[0] != grandchild || released[2] != root {
		t.Fatalf("expected child-before-parent release order, got %v", released)
	}
	if r.Allocated(root) || r.Allocated(child) || r.Allocated(grandchild) {
		t.Fatal("expected the whole subtree to be released")
	}
}

func TestRegistryReleaseOfUnallocatedIndexIsNoOp(t *testing.T) {
	r := NewRegistry(8)
	r.Release(5)
	if r.NodeCount() != 0 {
		t.Fatalf("expected NodeCount 0, got %d", r.NodeCount())
	}
}

func TestRegistryFreeListReusesReleasedIndices(t *testing.T) {
	r := NewRegistry(2)
	first, _ := r.Allocate(1)
	r.Release(first)

	second, err := r.Allocate(2)
	if err != nil {
		t.Fatalf("Allocate after release: %v", err)
	}
	if second != first {
		t.Fatalf("expected the freed index %d to be reused, got %d", first, second)
	}
}

func TestRegistryOnResetFiresWhenFullyEmptied(t *testing.T) {
	r := NewRegistry(8)
	resets := 0
	r.OnReset(func() { resets++ })

	a, _ := r.Allocate(1)
	b, _ := r.Allocate(2)
	r.Release(a)
	if resets != 0 {
		t.Fatalf("expected no reset while an index is still allocated, got %d", resets)
	}
	r.Release(b)
	if resets != 1 {
		t.Fatalf("expected exactly one reset once fully emptied, got %d", resets)
	}
	if r.HighWaterMark() != 0 {
		t.Fatalf("expected high-water mark reset to 0, got %d", r.HighWaterMark())
	}
}
