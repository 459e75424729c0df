package middlewares

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dropDatabas3/fleethub/internal/http/helpers"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// WithLogging deja en el contexto un logger con request_id, method, path y
// tenant (si vino X-Tenant-ID) y al terminar loguea una línea por request.
//
//	{"level":"info","msg":"request completed","request_id":"...","method":"POST","path":"/heartbeat","route":"/heartbeat","status":200,"bytes":48,"duration_ms":2}
//
// 5xx sale como error; 4xx como warn con la IP del cliente.
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			fields := []zap.Field{
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			}
			if tid := helpers.ResolveTenantID(r); tid != "" {
				fields = append(fields, logger.TenantID(tid))
			}
			reqLog := logger.L().With(fields...)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level, msg := zapcore.InfoLevel, "request completed"
			done := []zap.Field{
				logger.Status(status),
				logger.Bytes(ww.BytesWritten()),
				logger.DurationMs(time.Since(started).Milliseconds()),
			}
			if pattern := routePattern(r); pattern != "" {
				done = append(done, logger.Route(pattern))
			}
			switch {
			case status >= 500:
				level, msg = zapcore.ErrorLevel, "request failed"
			case status >= 400:
				level, msg = zapcore.WarnLevel, "request completed with client error"
				done = append(done, logger.ClientIP(clientIP(r)))
			}
			if ce := reqLog.Check(level, msg); ce != nil {
				ce.Write(done...)
			}
		})
	}
}

// routePattern devuelve el template de chi ("/tenants/{id}") una vez ruteado el request.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

// clientIP toma el primer salto de X-Forwarded-For o el RemoteAddr.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
