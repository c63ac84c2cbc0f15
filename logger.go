package chunkarray

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with chunkarray-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogLoad logs a chunk load triggered by a cache miss.
func (l *Logger) LogLoad(ctx context.Context, sel []int, id any, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "chunk load failed",
			"selector", sel,
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "chunk loaded",
			"selector", sel,
			"id", id,
			"elapsed", elapsed,
		)
	}
}

// LogCopyRange logs a bulk range copy.
func (l *Logger) LogCopyRange(ctx context.Context, chunks, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range copy failed",
			"chunks_visited", chunks,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "range copy completed",
			"chunks_visited", chunks,
			"elements", elements,
		)
	}
}
