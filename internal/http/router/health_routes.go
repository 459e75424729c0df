package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/fleethub/internal/metrics"
)

// registerHealthRoutes: /readyz y /metrics son públicos y no se loguean (muy frecuentes).
func registerHealthRoutes(r chi.Router, d Deps) {
	r.Get("/readyz", d.Controllers.Health.Readyz)

	if d.Gatherer != nil {
		r.Method("GET", "/metrics", metrics.Handler(d.Gatherer))
	}
}
