package middlewares

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// ids que vienen de un proxy se aceptan sólo si son cortos y sin espacios.
var inboundRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// WithRequestID propaga X-Request-ID o asigna un uuid nuevo, y lo devuelve en la respuesta.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if !inboundRequestID.MatchString(rid) {
				rid = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
