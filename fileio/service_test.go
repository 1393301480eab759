package fileio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestServicePickDeliversResult(t *testing.T) {
	slot := &Slot[Result]{}
	picker := PickerFunc(func(context.Context) (Result, error) {
		return Result{Content: "x := 1", Name: "a.go"}, nil
	})
	svc := NewService(picker, nil, slot)

	svc.Pick(context.Background())
	svc.Wait()

	got, ok := slot.Take()
	if !ok || got.Content != "x := 1" || got.Name != "a.go" || got.Err != nil {
		t.Errorf("unexpected result %+v %v", got, ok)
	}
}

func TestServicePickErrorGoesThroughSlot(t *testing.T) {
	slot := &Slot[Result]{}
	picker := PickerFunc(func(context.Context) (Result, error) {
		return Result{}, errors.New("disk on fire")
	})
	svc := NewService(picker, nil, slot)

	svc.Pick(context.Background())
	svc.Wait()

	got, ok := slot.Take()
	if !ok || got.Err == nil || !strings.Contains(got.Err.Error(), "disk on fire") {
		t.Errorf("expected error result, got %+v %v", got, ok)
	}
}

func TestServicePickCancelledIsDropped(t *testing.T) {
	slot := &Slot[Result]{}
	picker := PickerFunc(func(context.Context) (Result, error) {
		return Result{}, ErrCancelled
	})
	svc := NewService(picker, nil, slot)

	svc.Pick(context.Background())
	svc.Wait()

	if got, ok := slot.Take(); ok {
		t.Errorf("cancelled pick delivered %+v", got)
	}
}

func TestServicePickRejectsInvalidUTF8(t *testing.T) {
	slot := &Slot[Result]{}
	picker := PickerFunc(func(context.Context) (Result, error) {
		return Result{Content: "\xff\xfe", Name: "bin.go"}, nil
	})
	svc := NewService(picker, nil, slot)

	svc.Pick(context.Background())
	svc.Wait()

	got, ok := slot.Take()
	if !ok || got.Err == nil || !strings.Contains(got.Err.Error(), "UTF-8") {
		t.Errorf("expected UTF-8 error, got %+v", got)
	}
}

func TestServiceWithoutPicker(t *testing.T) {
	slot := &Slot[Result]{}
	svc := NewService(nil, nil, slot)

	svc.Pick(context.Background())
	svc.Wait()

	if got, ok := slot.Take(); !ok || got.Err == nil {
		t.Errorf("expected error result, got %+v", got)
	}
}

func TestServiceSaveFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	slot := &Slot[Result]{}
	saver := SaverFunc(func(context.Context, string, string) error {
		return errors.New("read-only")
	})
	svc := NewService(nil, saver, slot, WithLogger(zap.New(core)))

	svc.Save(context.Background(), "x", "a.go")
	svc.Wait()

	if _, ok := slot.Take(); ok {
		t.Error("save must not touch the slot")
	}
	entries := logs.FilterMessage("save failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one save failure log, got %d", len(entries))
	}
}

func TestServiceSaveWritesContent(t *testing.T) {
	var mu sync.Mutex
	saved := map[string]string{}
	saver := SaverFunc(func(_ context.Context, content, name string) error {
		mu.Lock()
		saved[name] = content
		mu.Unlock()
		return nil
	})
	svc := NewService(nil, saver, &Slot[Result]{})

	svc.Save(context.Background(), "plot.Title(\"x\")", "a.go")
	svc.Wait()

	if saved["a.go"] != "plot.Title(\"x\")" {
		t.Errorf("unexpected saved content %q", saved["a.go"])
	}
}
