package middlewares

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxTenantKey    ctxKey = "tenant"
	ctxClaimsKey    ctxKey = "claims"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// WithTenant inyecta el tenant resuelto por el gate de módulos.
func WithTenant(ctx context.Context, t *repository.Tenant) context.Context {
	return context.WithValue(ctx, ctxTenantKey, t)
}

// WithClaims inyecta las claims verificadas del bearer admin.
func WithClaims(ctx context.Context, c jwt.MapClaims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, c)
}

// GetRequestID devuelve el request id o "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// GetTenant devuelve el tenant del contexto o nil si la ruta no pasó por el gate.
func GetTenant(ctx context.Context) *repository.Tenant {
	if v, ok := ctx.Value(ctxTenantKey).(*repository.Tenant); ok {
		return v
	}
	return nil
}

// GetClaims devuelve las claims admin o nil.
func GetClaims(ctx context.Context) jwt.MapClaims {
	if v, ok := ctx.Value(ctxClaimsKey).(jwt.MapClaims); ok {
		return v
	}
	return nil
}
