package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/fleethub/internal/http/middlewares"
)

// registerHeartbeatRoutes: POST /heartbeat es la única ruta que llaman los Silos.
// Sin auth admin; rate limit por tenantId.
func registerHeartbeatRoutes(r chi.Router, d Deps) {
	r.With(mw.WithRateLimit(mw.RateLimitConfig{
		Limiter: d.HeartbeatLimiter,
		KeyFunc: mw.HeartbeatRateKey,
	})).Post("/heartbeat", d.Controllers.Heartbeat.Ingest)
}
