package pipeline

import (
	"context"

	"go.uber.org/zap"
)

// ctxKey is an unexported key type to avoid collisions in context
type ctxKey struct{}

// WithLogger returns a new context that carries l. Execute stores its logger
// this way so steps can log recovered failures.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// LoggerFrom returns the logger stored in ctx, or a no-op logger if none is present.
func LoggerFrom(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
