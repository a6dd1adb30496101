package bridgescan

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bridge-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(table string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", table),
	}
}

// WithIndex adds an index field to the logger.
func (l *Logger) WithIndex(index string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", index),
	}
}

// LogRewrite logs a path-list rewrite.
func (l *Logger) LogRewrite(ctx context.Context, table string, rewritten int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "path rewrite failed",
			"table", table,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "paths rewritten",
			"table", table,
			"rewritten", rewritten,
		)
	}
}

// LogBuildPlan logs custom plan creation.
func (l *Logger) LogBuildPlan(ctx context.Context, table string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "plan creation failed",
			"table", table,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "custom plan created",
			"table", table,
		)
	}
}

// LogScanOpen logs scan state creation.
func (l *Logger) LogScanOpen(ctx context.Context, table string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan open failed",
			"table", table,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scan opened",
			"table", table,
		)
	}
}
