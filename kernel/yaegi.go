package kernel

import (
	"errors"
	"fmt"
	"go/scanner"
	"io"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// yaegiEngine runs scripts with the yaegi Go interpreter. Top level
// declarations of every executed program stay visible to later programs
// compiled by the same interpreter.
//
// yaegi declares a program's globals before it finds semantic errors, so a
// failed Compile would leave half of a program in scope. Every source is
// therefore compiled into a shadow interpreter first, which has seen the same
// successful compiles but never runs anything. Only sources that compile
// there reach the real interpreter. A shadow that saw a failure is dropped
// and rebuilt from the history on the next Compile.
type yaegiEngine struct {
	cfg     EngineConfig
	i       *interp.Interpreter
	shadow  *interp.Interpreter
	history []string
}

// NewYaegiEngine is the default EngineFactory.
func NewYaegiEngine(cfg EngineConfig) (Engine, error) {
	i, err := newInterpreter(cfg, cfg.Stdout, cfg.Stderr)
	if err != nil {
		return nil, err
	}
	return &yaegiEngine{cfg: cfg, i: i}, nil
}

func newInterpreter(cfg EngineConfig, stdout, stderr io.Writer) (*interp.Interpreter, error) {
	i := interp.New(interp.Options{
		Stdout: stdout,
		Stderr: stderr,
	})

	if cfg.Stdlib {
		if err := i.Use(stdlib.Symbols); err != nil {
			return nil, fmt.Errorf("load stdlib: %w", err)
		}
	}
	if cfg.Host != nil {
		if err := i.Use(cfg.Host.Exports()); err != nil {
			return nil, fmt.Errorf("load host packages: %w", err)
		}
	}
	i.ImportUsed()
	return i, nil
}

func (e *yaegiEngine) Compile(source string) (Artifact, error) {
	if err := e.check(source); err != nil {
		return nil, compileError(err)
	}

	prog, err := e.i.Compile(source)
	if err != nil {
		return nil, compileError(err)
	}
	if n := len(e.history); n == 0 || e.history[n-1] != source {
		e.history = append(e.history, source)
	}
	return prog, nil
}

// check compiles source into the shadow interpreter.
func (e *yaegiEngine) check(source string) error {
	if e.shadow == nil {
		shadow, err := newInterpreter(e.cfg, io.Discard, io.Discard)
		if err != nil {
			return err
		}
		for _, src := range e.history {
			if _, err := shadow.Compile(src); err != nil {
				return fmt.Errorf("rebuild scope: %w", err)
			}
		}
		e.shadow = shadow
	}

	if _, err := e.shadow.Compile(source); err != nil {
		e.shadow = nil
		return err
	}
	return nil
}

func (e *yaegiEngine) Execute(a Artifact) (err error) {
	prog, ok := a.(*interp.Program)
	if !ok {
		return fmt.Errorf("artifact of type %T was not compiled by this engine", a)
	}

	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()

	if _, err := e.i.Execute(prog); err != nil {
		return runtimeError(err)
	}
	return nil
}

// compileError flattens a parser error list into one message with one
// error per line.
func compileError(err error) error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 1 {
		lines := make([]string, len(list))
		for i, e := range list {
			lines[i] = e.Error()
		}
		return errors.New(strings.Join(lines, "\n"))
	}
	return err
}

func runtimeError(err error) error {
	var p interp.Panic
	if errors.As(err, &p) {
		return panicError(p.Value)
	}
	return err
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
