// Package logger sets up slog for the CLI and carries the logger through contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// Options controls verbosity. Without either flag only warnings and errors are shown.
type Options struct {
	Verbose bool
	Debug   bool
	NoColor bool
}

// New builds a logger writing human-readable lines to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case opts.Debug:
		level = slog.LevelDebug
	case opts.Verbose:
		level = slog.LevelInfo
	}
	return slog.New(NewPrettyHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Debug,
	}, opts.NoColor))
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
