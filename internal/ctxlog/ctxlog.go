// Package ctxlog carries a slog.Logger through context.Context, so engine
// internals can log with the run's configuration without threading a logger
// parameter through every call.
package ctxlog

import (
	"context"
	"log/slog"
)

type ctxKey int

const loggerKey ctxKey = iota

// WithLogger embeds logger into the returned context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger embedded in ctx, or slog.Default() when
// none was set. Library code can therefore always log, even from contexts
// that never passed through WithLogger (tests, background goroutines).
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
