package wordprox

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with wordprox-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithBucket adds a bucket field to the logger.
func (l *Logger) WithBucket(name []byte) *Logger {
	return &Logger{
		Logger: l.Logger.With("bucket", string(name)),
	}
}

// WithProximity adds a proximity field to the logger.
func (l *Logger) WithProximity(proximity uint8) *Logger {
	return &Logger{
		Logger: l.Logger.With("proximity", proximity),
	}
}

// LogDerivation logs one prefix-pair derivation pass.
func (l *Logger) LogDerivation(direction string, entries int, err error) {
	if err != nil {
		l.Error("prefix pair derivation failed",
			"direction", direction,
			"error", err,
		)
	} else {
		l.Debug("prefix pair derivation completed",
			"direction", direction,
			"entries", entries,
		)
	}
}

// LogBulkLoad logs a bulk-load into a posting bucket.
func (l *Logger) LogBulkLoad(bucket []byte, entries int, appended bool) {
	l.Debug("bulk load completed",
		"bucket", string(bucket),
		"entries", entries,
		"appended", appended,
	)
}

// LogResolve logs a full query-tree resolution.
func (l *Logger) LogResolve(ctx context.Context, candidates uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query tree resolution failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query tree resolved",
			"candidates", candidates,
		)
	}
}

// LogBackup logs a snapshot backup operation.
func (l *Logger) LogBackup(ctx context.Context, name string, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "backup failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backup completed",
			"name", name,
			"elapsed", elapsed,
		)
	}
}
