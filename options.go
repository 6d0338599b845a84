package xopen

import (
	"go.uber.org/zap"

	"github.com/DriesSchaumont/xopen/internal/registry"
	"github.com/DriesSchaumont/xopen/internal/stats"
)

// ThreadsAuto sizes the worker count from the machine.
const ThreadsAuto = -1

// DefaultLevel keeps each backend's default compression level.
const DefaultLevel = registry.DefaultLevel

// Option configures how a stream is opened.
type Option interface {
	apply(*options)
}

// options holds the open configuration.
type options struct {
	level     int
	threads   int
	format    Format
	formatSet bool
	program   string
	registry  *registry.Registry
	stats     stats.Collector
	logger    *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		level:    DefaultLevel,
		threads:  ThreadsAuto,
		registry: registry.Default(),
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithLevel sets the compression level for writing. Each backend
// accepts its own range; an unacceptable level is rejected before the
// destination is touched. If not set, the backend default is used.
func WithLevel(level int) Option {
	return optionFunc(func(o *options) {
		o.level = level
	})
}

// WithThreads sets the worker count passed to thread-capable external
// programs. ThreadsAuto (the default) sizes it from the machine. Zero
// forbids external programs entirely, forcing the in-process codec.
// Single-threaded programs ignore the count.
func WithThreads(n int) Option {
	return optionFunc(func(o *options) {
		o.threads = n
	})
}

// WithFormat overrides format resolution: content sniffing when
// reading, extension matching when writing. FormatNone forces plain
// bytes.
func WithFormat(f Format) Option {
	return optionFunc(func(o *options) {
		o.format = f
		o.formatSet = true
	})
}

// WithProgram pins a specific external program. The fallback codec is
// disabled: if the program cannot start, opening fails with the
// underlying error.
func WithProgram(name string) Option {
	return optionFunc(func(o *options) {
		o.program = name
	})
}

// WithRegistry replaces the built-in program table, changing which
// external programs are tried and in what order.
func WithRegistry(r *Registry) Option {
	return optionFunc(func(o *options) {
		o.registry = r
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
