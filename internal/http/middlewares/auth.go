package middlewares

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/fleethub/internal/http/errors"
)

// RequireAdminJWT verifica Authorization: Bearer <JWT HS256> firmado con secret.
// El Hub solo verifica tokens, nunca los emite. secret vacío: no-op.
func RequireAdminJWT(secret []byte) Middleware {
	if len(secret) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="fleethub", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="fleethub", error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid.WithCause(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
