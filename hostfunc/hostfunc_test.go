package hostfunc

import (
	"testing"
)

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()
	r.Register("nb", "Runs", func() int { return 7 })

	v, ok := r.Get("nb", "Runs")
	if !ok {
		t.Fatal("expected nb.Runs to be registered")
	}
	fn, ok := v.Interface().(func() int)
	if !ok {
		t.Fatalf("unexpected type %T", v.Interface())
	}
	if fn() != 7 {
		t.Errorf("expected 7, got %d", fn())
	}

	if _, ok := r.Get("nb", "Missing"); ok {
		t.Error("expected missing symbol lookup to fail")
	}
	if _, ok := r.Get("other", "Runs"); ok {
		t.Error("expected missing package lookup to fail")
	}
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	r.Register("nb", "Value", func() int { return 1 })
	r.Register("nb", "Value", func() int { return 2 })

	v, _ := r.Get("nb", "Value")
	if got := v.Interface().(func() int)(); got != 2 {
		t.Errorf("expected replacement to win, got %d", got)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register("plot", "Title", func(string) {})
	r.Register("nb", "Runs", func() int { return 0 })
	r.Register("plot", "Plot", func(x, y any, label string) {})

	got := r.List()
	want := []string{"nb.Runs", "plot.Plot", "plot.Title"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryExports(t *testing.T) {
	r := NewRegistry()
	r.Register("plot", "Title", func(string) {})
	r.Register("nb", "Runs", func() int { return 0 })

	exports := r.Exports()
	for _, key := range []string{"plot/plot", "nb/nb"} {
		if _, ok := exports[key]; !ok {
			t.Errorf("expected exports key %q, got %v", key, exports)
		}
	}
	if _, ok := exports["plot/plot"]["Title"]; !ok {
		t.Error("expected plot.Title in exports")
	}

	// Exports must not alias the registry's maps.
	delete(exports["plot/plot"], "Title")
	if _, ok := r.Get("plot", "Title"); !ok {
		t.Error("deleting from exports changed the registry")
	}
}
