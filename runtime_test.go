package vtcore

import "testing"

func TestRuntimeRegistryIsLazyAndSingleton(t *testing.T) {
	rt := NewRuntime()
	a := rt.Registry()
	b := rt.Registry()
	if a != b {
		t.Fatal("expected Registry() to return the same instance on repeated calls")
	}
	if a.HighWaterMark() != 0 {
		t.Fatalf("expected a freshly created registry to be empty, got high-water mark %d", a.HighWaterMark())
	}
}

func TestRuntimeFocusManagerIsLazyAndSingleton(t *testing.T) {
	rt := NewRuntime()
	a := rt.FocusManager()
	b := rt.FocusManager()
	if a != b {
		t.Fatal("expected FocusManager() to return the same instance on repeated calls")
	}
}

func TestResetReplacesGlobalRuntime(t *testing.T) {
	Reset()
	before := Global
	count, _ := CreateSignal(1)
	_ = count()

	Reset()
	if Global == before {
		t.Fatal("expected Reset to install a fresh Runtime")
	}
}
