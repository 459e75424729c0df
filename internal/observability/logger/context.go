package logger

import (
	"context"

	"go.uber.org/zap"
)

type scopedKey struct{}

// ToContext guarda un logger scoped (request_id, tenant_id, ...) en ctx.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, scopedKey{}, l)
}

// From devuelve el logger scoped de ctx o, si no hay, el global.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(scopedKey{}).(*zap.Logger); l != nil {
			return l
		}
	}
	return L()
}
