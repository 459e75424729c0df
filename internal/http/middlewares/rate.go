package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
	"github.com/dropDatabas3/fleethub/internal/rate"
)

// RateKeyFunc elige la clave de cuota para un request.
type RateKeyFunc func(r *http.Request) string

const heartbeatPeekLimit = 4 << 10

// peekTenantID lee el tenantId de un body JSON sin consumirlo: el handler
// vuelve a leer el body completo.
func peekTenantID(r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json") {
		return ""
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, heartbeatPeekLimit))
	orig := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), orig), orig}

	var probe struct {
		TenantID any `json:"tenantId"`
	}
	if json.Unmarshal(head, &probe) != nil {
		return ""
	}
	s, _ := probe.TenantID.(string)
	return strings.TrimSpace(s)
}

// HeartbeatRateKey cuenta por tenant; si el body no trae tenantId, por IP.
func HeartbeatRateKey(r *http.Request) string {
	if tid := peekTenantID(r); tid != "" {
		return "hb|" + tid
	}
	return "hb|ip|" + clientIP(r)
}

func IPOnlyRateKey(r *http.Request) string { return clientIP(r) }

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
}

// WithRateLimit corta con 429 + Retry-After al agotar la cuota. Limiter nil
// lo desactiva; si el limiter falla el request pasa igual.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	keyOf := cfg.KeyFunc
	if keyOf == nil {
		keyOf = IPOnlyRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), keyOf(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable, allowing request",
					logger.Op("rate_limit"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			writeRateHeaders(w.Header(), res)
			if !res.Allowed {
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateHeaders(h http.Header, res rate.Result) {
	if res.WindowTTL > 0 {
		h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.WindowTTL).Unix(), 10))
	}
	if res.Allowed {
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		return
	}
	secs := int64(math.Ceil(res.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	h.Set("Retry-After", strconv.FormatInt(secs, 10))
}
