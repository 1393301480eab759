package kernel

import "go.uber.org/zap"

// Option configures a Kernel at creation time.
type Option func(*config)

type config struct {
	logger  *zap.Logger
	factory EngineFactory
	stdlib  bool
}

func defaultConfig() config {
	return config{
		logger:  zap.NewNop(),
		factory: NewYaegiEngine,
		stdlib:  true,
	}
}

// WithLogger sets the logger used for diagnostics. Script output never goes
// here; it is appended to the kernel's sink.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEngine replaces the interpreter.
func WithEngine(f EngineFactory) Option {
	return func(c *config) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithoutStdlib hides the Go standard library from scripts. Only the host
// packages remain importable.
func WithoutStdlib() Option {
	return func(c *config) {
		c.stdlib = false
	}
}
