package chunkarray

import (
	"log/slog"

	"github.com/hupe1980/chunkarray/filename"
)

type options struct {
	ndims            int // 0 means "infer"
	metricsCollector MetricsCollector
	logger           *Logger
	loggerSet        bool
	selectOptions    []filename.Option
}

// Option configures Array construction.
type Option func(*options)

// WithNDims declares the total number of dimensions the caller expects.
// Construction fails with *ErrShapeMismatch if buffer dims + grid dims differ.
func WithNDims(n int) Option {
	return func(o *options) {
		o.ndims = n
	}
}

// WithMetricsCollector configures a metrics collector for chunk loads.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &chunkarray.BasicMetricsCollector{}
//	arr, _ := chunkarray.New(grid, buf, loader, chunkarray.WithMetricsCollector(metrics))
//	// ... use arr ...
//	stats := metrics.GetStats()
//	fmt.Printf("Loads: %d, hits: %d\n", stats.LoadCount, stats.CacheHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for loads and range copies.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
		o.loggerSet = true
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
		o.loggerSet = true
	}
}

// WithSelectOptions forwards options to the filename selector used by Open
// and OpenRegexp. A logger set with WithLogger or WithLogLevel is passed to
// the selector unless one of opts sets another. Without one, the selector
// logs to slog.Default().
func WithSelectOptions(opts ...filename.Option) Option {
	return func(o *options) {
		o.selectOptions = append(o.selectOptions, opts...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
