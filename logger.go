package mmapfile

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with mmapfile-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithFile tags every record with the file path and instance id.
func (l *Logger) WithFile(path, id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path, "id", id),
	}
}

// LogOpen logs an open.
func (l *Logger) LogOpen(ctx context.Context, length, capacity int64) {
	l.DebugContext(ctx, "file opened",
		"length", length,
		"capacity", capacity,
	)
}

// LogGrow logs a grow attempt.
func (l *Logger) LogGrow(ctx context.Context, from, to int64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "grow failed",
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "file grown",
			"from", from,
			"to", to,
			"duration", d,
		)
	}
}

// LogPoisoned logs that the instance lost its mapping.
func (l *Logger) LogPoisoned(ctx context.Context, err error) {
	l.ErrorContext(ctx, "remap failed, file must be closed",
		"error", err,
	)
}

// LogFlush logs a flush.
func (l *Logger) LogFlush(ctx context.Context, mode FlushMode, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"mode", mode.String(),
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"mode", mode.String(),
			"bytes", bytes,
		)
	}
}

// LogClose logs a close.
func (l *Logger) LogClose(ctx context.Context, length int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "close completed with errors",
			"length", length,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "file closed",
			"length", length,
		)
	}
}

// LogLeak logs a File that was garbage collected without Close. Its mapping
// is left in place for the rest of the process.
func (l *Logger) LogLeak(ctx context.Context, length int64, err error) {
	l.WarnContext(ctx, "file was not closed, handle released by cleanup, mapping kept",
		"length", length,
		"error", err,
	)
}
