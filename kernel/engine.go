package kernel

import (
	"io"

	"github.com/caffeineduck/plotpad/hostfunc"
)

// Artifact is a compiled script, ready to execute without re-parsing. Its
// concrete type belongs to the Engine that produced it.
type Artifact any

// Engine compiles and executes script source against a persistent scope.
// Implementations are not safe for concurrent use; a Kernel calls them from a
// single goroutine.
type Engine interface {
	// Compile parses and type-checks source without running it. A failed
	// compile leaves the scope as it was.
	Compile(source string) (Artifact, error)

	// Execute runs a previously compiled artifact. Script panics are returned
	// as errors.
	Execute(a Artifact) error
}

// EngineConfig is handed to an EngineFactory when a kernel builds a fresh
// environment.
type EngineConfig struct {
	// Stdout receives script output.
	Stdout io.Writer

	// Stderr receives the interpreter's own diagnostics, such as the trace it
	// prints when a script panics. The fault itself is returned by Execute.
	Stderr io.Writer

	// Host holds the packages exported to script code.
	Host *hostfunc.Registry

	// Stdlib makes the Go standard library importable by scripts.
	Stdlib bool
}

// EngineFactory builds a new Engine. It is called by New and by every Reset.
type EngineFactory func(cfg EngineConfig) (Engine, error)
