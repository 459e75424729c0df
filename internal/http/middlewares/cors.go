package middlewares

import (
	"net/http"
	"strings"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Methods":  "GET,POST,DELETE,OPTIONS",
	"Access-Control-Allow-Headers":  "Content-Type, Authorization, X-Request-ID, X-Tenant-ID",
	"Access-Control-Expose-Headers": "X-Request-ID, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After",
	"Access-Control-Max-Age":        "600",
}

func normalizeOrigin(s string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(s), "/"))
}

// WithCORS refleja el Origin si está en la lista ("*" acepta cualquiera) y
// contesta los preflight con 204. Sin orígenes configurados no hace nada.
func WithCORS(origins []string) Middleware {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	wildcard := false
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = normalizeOrigin(o)
		if o == "*" {
			wildcard = true
		}
		set[o] = struct{}{}
	}
	allowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		_, ok := set[normalizeOrigin(origin)]
		return wildcard || ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); allowed(origin) {
				h.Set("Access-Control-Allow-Origin", strings.TrimRight(strings.TrimSpace(origin), "/"))
				for k, v := range corsHeaders {
					h.Set(k, v)
				}
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
