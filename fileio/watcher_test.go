package fileio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForResult(t *testing.T, slot *Slot[Result], timeout time.Duration) (Result, bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if res, ok := slot.Take(); ok {
			return res, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return Result{}, false
}

func TestWatcherDeliversChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.go")
	if err := os.WriteFile(path, []byte("x := 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	slot := &Slot[Result]{}
	w, err := NewWatcher(path, slot, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("x := 2"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, ok := waitForResult(t, slot, 5*time.Second)
	if !ok {
		t.Fatal("no change delivered")
	}
	if res.Err != nil || res.Content != "x := 2" || res.Name != "live.go" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.go")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	slot := &Slot[Result]{}
	w, err := NewWatcher(path, slot, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.go"), []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := waitForResult(t, slot, 200*time.Millisecond); ok {
		t.Error("change to another file was delivered")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "x.go"), &Slot[Result]{})
	if err != nil {
		t.Fatal(err)
	}
	w.Stop()
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.go")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewWatcher(path, &Slot[Result]{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	w.Stop()
}
