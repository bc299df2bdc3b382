// Package logx is the render core's structured logging seam: every
// package that needs to report progress, warnings or per-render
// diagnostics takes a *Logger rather than calling fmt.Printf directly,
// so a caller embedding povcore can redirect or silence it.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the small fixed vocabulary the render
// core actually uses (Debug/Info/Warn/Error plus With for attaching
// per-render fields like pixel coordinates or object names).
type Logger struct {
	base *slog.Logger
}

// New returns a Logger writing text-formatted records to w at minLevel.
func New(w io.Writer, minLevel slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: minLevel})
	return &Logger{base: slog.New(h)}
}

// Discard returns a Logger that drops every record, for headless/library
// use where the caller hasn't wired up a destination.
func Discard() *Logger {
	return New(io.Discard, slog.LevelError)
}

// Default returns a Logger writing to stderr at Info level, the render
// core's fallback when nothing else was configured.
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// InfoContext and WarnContext forward a context so callers that thread
// one through a render (for cancellation) can attach it to log records.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, args...)
}
