package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxLoggerKey struct{}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// With returns a new context that carries logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger stored in ctx. If no logger is stored, slog.Default() is
// returned, and a discarding logger when ctx is nil.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return discard
	}
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
