package router

import (
	"fmt"
	"strings"

	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/fleethub/internal/http/middlewares"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// Prefijos propios del Hub que ningún módulo puede ocupar.
var reservedPrefixes = []string{"/heartbeat", "/fleet", "/marketplace", "/tenants", "/readyz", "/metrics"}

// registerModuleRoutes monta cada módulo del catálogo que tenga handler set
// bajo su apiBase, detrás del gate de suscripción. El mapeo es estático;
// lo único que se evalúa por request es la suscripción del tenant.
func registerModuleRoutes(r chi.Router, d Deps) error {
	log := logger.L().With(logger.Component("router"))

	for _, mod := range d.Catalog {
		hs, ok := d.Handlers.Get(mod.Slug)
		if !ok {
			log.Info("module has no handler set, not mounted", logger.ModuleSlug(mod.Slug))
			continue
		}
		base := "/" + strings.Trim(mod.APIBase, "/")
		if base == "/" {
			return fmt.Errorf("router: module %s has empty apiBase", mod.Slug)
		}
		for _, p := range reservedPrefixes {
			if base == p || strings.HasPrefix(base, p+"/") {
				return fmt.Errorf("router: module %s apiBase %s collides with %s", mod.Slug, base, p)
			}
		}

		slug := mod.Slug
		r.Route(base, func(mr chi.Router) {
			mr.Use(mw.RequireEntitlement(d.Tenants, slug))
			hs.Routes(mr)
		})
		log.Info("module mounted", logger.ModuleSlug(slug), logger.String("api_base", base))
	}
	return nil
}
