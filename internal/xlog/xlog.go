// Package xlog provides the small structured-logging wrapper used across
// classpathfs: a concrete type that forwards to an optional slog.Logger,
// defaulting to a no-op so callers never need a nil check.
package xlog

import (
	"context"
	"log/slog"
)

// Logger wraps an *slog.Logger, tolerating a nil underlying logger so
// components can be constructed without one.
type Logger struct {
	impl *slog.Logger
}

// New wraps the given slog.Logger. A nil argument produces a Logger whose
// methods are no-ops.
func New(impl *slog.Logger) *Logger {
	return &Logger{impl: impl}
}

// Default wraps slog.Default().
func Default() *Logger {
	return &Logger{impl: slog.Default()}
}

// With returns a Logger with the given attributes attached to every
// subsequent record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.impl == nil {
		return l
	}
	return &Logger{impl: l.impl.With(args...)}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l != nil && l.impl != nil {
		l.impl.DebugContext(ctx, msg, args...)
	}
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l != nil && l.impl != nil {
		l.impl.InfoContext(ctx, msg, args...)
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l != nil && l.impl != nil {
		l.impl.WarnContext(ctx, msg, args...)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l != nil && l.impl != nil {
		l.impl.ErrorContext(ctx, msg, args...)
	}
}
