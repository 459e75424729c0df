// Package router arma el árbol de rutas chi del Hub.
package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/http/controllers"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	mw "github.com/dropDatabas3/fleethub/internal/http/middlewares"
	"github.com/dropDatabas3/fleethub/internal/modules"
	"github.com/dropDatabas3/fleethub/internal/rate"
)

// Deps contiene todo lo necesario para registrar las rutas del Hub.
type Deps struct {
	Controllers *controllers.Controllers

	// Module Router
	Tenants  repository.TenantRepository // entitlement check por request
	Catalog  []repository.Module         // snapshot al arrancar
	Handlers *modules.Registry

	// Middlewares
	HeartbeatLimiter rate.Limiter // opcional
	AdminSecret      []byte       // vacío: rutas admin abiertas
	CORSOrigins      []string

	// Gatherer nil: /metrics no se registra
	Gatherer prometheus.Gatherer
}

// New devuelve el handler raíz del Hub.
func New(d Deps) (http.Handler, error) {
	if d.Controllers == nil {
		return nil, fmt.Errorf("router: controllers requeridos")
	}

	r := chi.NewRouter()

	// NotFound/MethodNotAllowed antes de montar: chi los hereda en los sub-routers.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
	)

	registerHealthRoutes(r, d)

	var err error
	r.Group(func(g chi.Router) {
		g.Use(
			mw.WithLogging(),
			mw.WithMetrics(),
			mw.WithCORS(d.CORSOrigins),
		)

		registerHeartbeatRoutes(g, d)
		registerFleetRoutes(g, d)
		registerMarketplaceRoutes(g, d)
		registerTenantsRoutes(g, d)
		err = registerModuleRoutes(g, d)
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// adminOnly protege las rutas de administración con el bearer admin (si está configurado).
func adminOnly(d Deps) mw.Middleware {
	return mw.RequireAdminJWT(d.AdminSecret)
}
