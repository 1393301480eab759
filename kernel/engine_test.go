package kernel_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/caffeineduck/plotpad/kernel"
)

// fakeEngine compiles any source not containing "!" and executes it by
// printing it back.
type fakeEngine struct {
	cfg      kernel.EngineConfig
	compiled int
	executed []kernel.Artifact
}

func (e *fakeEngine) Compile(source string) (kernel.Artifact, error) {
	if strings.Contains(source, "!") {
		return nil, errors.New("bang")
	}
	e.compiled++
	src := source
	return &src, nil
}

func (e *fakeEngine) Execute(a kernel.Artifact) error {
	e.executed = append(e.executed, a)
	src := *a.(*string)
	switch src {
	case "fail":
		return errors.New("failed")
	case "trace":
		fmt.Fprintln(e.cfg.Stderr, "goroutine 1 [running]")
		return errors.New("panic: traced")
	}
	fmt.Fprintln(e.cfg.Stdout, src)
	return nil
}

func fakeFactory(engines *[]*fakeEngine) kernel.EngineFactory {
	return func(cfg kernel.EngineConfig) (kernel.Engine, error) {
		e := &fakeEngine{cfg: cfg}
		*engines = append(*engines, e)
		return e, nil
	}
}

func TestRunDoesNotRecompile(t *testing.T) {
	var engines []*fakeEngine
	k, log, _ := newKernel(t, kernel.WithEngine(fakeFactory(&engines)))

	if !k.Load("hello") {
		t.Fatal("load failed")
	}
	k.Run()
	k.Run()

	e := engines[0]
	if e.compiled != 1 {
		t.Errorf("expected 1 compile, got %d", e.compiled)
	}
	if len(e.executed) != 2 || e.executed[0] != e.executed[1] {
		t.Errorf("expected the same artifact to run twice, got %v", e.executed)
	}
	if got := log.Lines(); len(got) != 2 || got[1] != "hello" {
		t.Errorf("unexpected log %q", got)
	}
}

func TestFailedLoadKeepsArtifact(t *testing.T) {
	var engines []*fakeEngine
	k, log, _ := newKernel(t, kernel.WithEngine(fakeFactory(&engines)))

	k.Load("first")
	if k.Load("bad!") {
		t.Fatal("expected failure")
	}
	k.Run()

	want := []string{"Compile error: bang", "first"}
	got := log.Lines()
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestResetBuildsNewEngine(t *testing.T) {
	var engines []*fakeEngine
	k, _, _ := newKernel(t, kernel.WithEngine(fakeFactory(&engines)))

	k.Load("a")
	k.Run()
	if !k.Reset("b") {
		t.Fatal("reset load failed")
	}

	if len(engines) != 2 {
		t.Fatalf("expected 2 engines, got %d", len(engines))
	}
	if k.Runs() != 0 || !k.HasArtifact() {
		t.Errorf("unexpected state after reset: runs=%d artifact=%v", k.Runs(), k.HasArtifact())
	}
}

func TestRuntimeErrorPrefix(t *testing.T) {
	var engines []*fakeEngine
	k, log, _ := newKernel(t, kernel.WithEngine(fakeFactory(&engines)))

	k.Load("fail")
	k.Run()

	if got := log.Lines(); len(got) != 1 || got[0] != "Error: failed" {
		t.Errorf("unexpected log %q", got)
	}
}

func TestEngineUnavailable(t *testing.T) {
	k, log, _ := newKernel(t, kernel.WithEngine(func(kernel.EngineConfig) (kernel.Engine, error) {
		return nil, errors.New("no interpreter")
	}))

	if k.Load("x") {
		t.Fatal("expected load to fail")
	}
	if got := log.Lines(); len(got) != 1 || got[0] != "Compile error: no interpreter" {
		t.Errorf("unexpected log %q", got)
	}
	k.Run()
	if log.Len() != 1 {
		t.Errorf("run without engine should be a no-op")
	}
}

func TestInterpreterDiagnosticsStayOutOfLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var engines []*fakeEngine
	k, log, _ := newKernel(t,
		kernel.WithEngine(fakeFactory(&engines)),
		kernel.WithLogger(zap.New(core)),
	)

	k.Load("trace")
	k.Run()

	if got := log.Lines(); len(got) != 1 || got[0] != "Error: panic: traced" {
		t.Errorf("unexpected log %q", got)
	}
	if n := logs.FilterMessage("goroutine 1 [running]").Len(); n != 1 {
		t.Errorf("expected the trace in diagnostics once, got %d", n)
	}
}
