// Package app arma la aplicación HTTP del Hub a partir de dependencias ya abiertas.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/fleethub/internal/catalog"
	"github.com/dropDatabas3/fleethub/internal/fleet"
	"github.com/dropDatabas3/fleethub/internal/http/controllers"
	"github.com/dropDatabas3/fleethub/internal/http/router"
	"github.com/dropDatabas3/fleethub/internal/http/services"
	healthsvc "github.com/dropDatabas3/fleethub/internal/http/services/health"
	"github.com/dropDatabas3/fleethub/internal/metrics"
	"github.com/dropDatabas3/fleethub/internal/modules"
	"github.com/dropDatabas3/fleethub/internal/rate"
	"github.com/dropDatabas3/fleethub/internal/store"
)

// Config holds configuration for the Hub app.
type Config struct {
	Version           string
	HeartbeatInterval time.Duration
	CatalogTTL        time.Duration
	AdminJWTSecret    string
	CORSOrigins       []string
}

// Deps holds raw dependencies required to build the app.
type Deps struct {
	DAL              store.DataAccessLayer
	Modules          *modules.Registry // handler sets montables
	HeartbeatLimiter rate.Limiter      // opcional
	RedisCheck       func(ctx context.Context) error

	// Now permite fijar el reloj en tests (nil = time.Now).
	Now func() time.Time
}

// App represents the wired Hub application.
type App struct {
	Handler  http.Handler
	Registry *prometheus.Registry
	Catalog  *catalog.Catalog
	Fleet    *fleet.Aggregator
}

// New creates and wires the Hub application.
// El catálogo ya tiene que estar sembrado: el mapeo de módulos se fija acá.
func New(ctx context.Context, cfg Config, deps Deps) (*App, error) {
	if deps.DAL == nil {
		return nil, fmt.Errorf("app: DAL requerido")
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = fleet.DefaultHeartbeatInterval
	}

	// 1. Dominio
	cat := catalog.New(deps.DAL.Modules(), cfg.CatalogTTL)
	mods, err := cat.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}

	agg := fleet.NewAggregator(deps.DAL.Tenants(), cfg.HeartbeatInterval)
	if deps.Now != nil {
		agg = agg.WithClock(deps.Now)
	}

	// 2. Métricas (registry propio por app)
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}
	if err := metrics.RegisterFleetCollector(reg, agg); err != nil {
		return nil, fmt.Errorf("app: fleet collector: %w", err)
	}

	// 3. Services
	svcDeps := services.Deps{
		Tenants: deps.DAL.Tenants(),
		Catalog: cat,
		Fleet:   agg,
		Now:     deps.Now,
		HealthDeps: healthsvc.Deps{
			Version:    cfg.Version,
			Driver:     deps.DAL.Driver(),
			DBCheck:    deps.DAL.Ping,
			RedisCheck: deps.RedisCheck,
		},
	}
	if deps.Modules != nil {
		svcDeps.Provisioner = deps.Modules
	}
	svcs := services.New(svcDeps)

	// 4. Controllers
	ctrls := controllers.New(svcs)

	// 5. Routes
	handler, err := router.New(router.Deps{
		Controllers:      ctrls,
		Tenants:          deps.DAL.Tenants(),
		Catalog:          mods,
		Handlers:         deps.Modules,
		HeartbeatLimiter: deps.HeartbeatLimiter,
		AdminSecret:      []byte(cfg.AdminJWTSecret),
		CORSOrigins:      cfg.CORSOrigins,
		Gatherer:         reg,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Handler:  handler,
		Registry: reg,
		Catalog:  cat,
		Fleet:    agg,
	}, nil
}
