package kernel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"

	"github.com/caffeineduck/plotpad/hostfunc"
	"github.com/caffeineduck/plotpad/logbuf"
	"github.com/caffeineduck/plotpad/plot"
)

// Kernel owns one interpreter, its persistent scope and at most one compiled
// artifact. It is not safe for concurrent use: a single refresh loop drives
// Load, Run and Reset.
type Kernel struct {
	id     string
	cfg    config
	sink   logbuf.Sink
	plots  *plot.Buffer
	out    *logbuf.Writer
	diag   *zapio.Writer
	logger *zap.Logger

	env *environment
}

// environment is everything Reset throws away at once.
type environment struct {
	engine   Engine
	err      error
	artifact Artifact
	runs     int
}

// New creates a kernel whose script output is appended line by line to sink
// and whose plotting calls are recorded into plots.
func New(sink logbuf.Sink, plots *plot.Buffer, opts ...Option) *Kernel {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := uuid.NewString()
	logger := cfg.logger.With(zap.String("kernel", id))
	k := &Kernel{
		id:     id,
		cfg:    cfg,
		sink:   sink,
		plots:  plots,
		out:    logbuf.NewWriter(sink),
		diag:   &zapio.Writer{Log: logger.Named("interp"), Level: zapcore.DebugLevel},
		logger: logger,
	}
	k.env = k.newEnvironment()
	return k
}

func (k *Kernel) newEnvironment() *environment {
	env := &environment{}

	host := hostfunc.NewRegistry()
	plot.NewBinding(k.plots).Register(host)
	host.Register("nb", "Runs", func() int { return env.runs })
	host.Register("nb", "Now", func() float64 {
		return float64(time.Now().UnixNano()) / float64(time.Second)
	})

	env.engine, env.err = k.cfg.factory(EngineConfig{
		Stdout: k.out,
		Stderr: k.diag,
		Host:   host,
		Stdlib: k.cfg.stdlib,
	})
	if env.err != nil {
		k.logger.Error("engine unavailable", zap.Error(env.err))
	}
	return env
}

// ID identifies the kernel in diagnostics.
func (k *Kernel) ID() string {
	return k.id
}

// Load compiles source without running it. On success the new artifact
// replaces the previous one. On failure a single "Compile error: ..." entry is
// appended to the sink and the previous artifact, if any, stays runnable.
func (k *Kernel) Load(source string) bool {
	if k.env.engine == nil {
		k.sink.AppendLine("Compile error: " + k.env.err.Error())
		return false
	}

	start := time.Now()
	a, err := k.env.engine.Compile(source)
	if err != nil {
		k.sink.AppendLine("Compile error: " + err.Error())
		k.logger.Debug("compile failed", zap.Error(err))
		return false
	}

	k.env.artifact = a
	k.logger.Debug("compiled", zap.Int("bytes", len(source)), zap.Duration("took", time.Since(start)))
	return true
}

// Run executes the current artifact against the persistent scope. It does
// nothing when no source has compiled yet. A runtime fault is appended to the
// sink as "Error: ..." and the scope survives for the next run.
func (k *Kernel) Run() {
	env := k.env
	if env.artifact == nil {
		return
	}

	start := time.Now()
	err := env.engine.Execute(env.artifact)
	k.out.Flush()
	_ = k.diag.Sync()
	env.runs++

	if err != nil {
		k.sink.AppendLine(fmt.Sprintf("Error: %v", err))
		k.logger.Debug("run faulted", zap.Int("run", env.runs), zap.Error(err))
		return
	}
	k.logger.Debug("ran", zap.Int("run", env.runs), zap.Duration("took", time.Since(start)))
}

// Reset discards the interpreter, its scope and any artifact, then loads
// source into a fresh environment.
func (k *Kernel) Reset(source string) bool {
	k.out.Flush()
	k.env = k.newEnvironment()
	k.logger.Debug("reset")
	return k.Load(source)
}

// HasArtifact reports whether some source has compiled since the last Reset.
func (k *Kernel) HasArtifact() bool {
	return k.env.artifact != nil
}

// Runs returns the number of runs since the last Reset.
func (k *Kernel) Runs() int {
	return k.env.runs
}
