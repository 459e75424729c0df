// Package controllers agrupa todos los controllers HTTP del Hub.
// Es el "composition root" de controllers:
//
//	svcs := services.New(deps)
//	ctrls := controllers.New(svcs)
//	router.New(router.Deps{Controllers: ctrls, ...})
package controllers

import (
	"github.com/dropDatabas3/fleethub/internal/http/controllers/fleet"
	"github.com/dropDatabas3/fleethub/internal/http/controllers/health"
	"github.com/dropDatabas3/fleethub/internal/http/controllers/heartbeat"
	"github.com/dropDatabas3/fleethub/internal/http/controllers/marketplace"
	"github.com/dropDatabas3/fleethub/internal/http/controllers/tenants"
	"github.com/dropDatabas3/fleethub/internal/http/services"
)

// Controllers agrupa los controllers por dominio.
type Controllers struct {
	Heartbeat   *heartbeat.HeartbeatController
	Fleet       *fleet.FleetController
	Marketplace *marketplace.MarketplaceController
	Tenants     *tenants.TenantsController
	Health      *health.HealthController
}

// New crea el agregador de controllers a partir de los services.
func New(s *services.Services) *Controllers {
	return &Controllers{
		Heartbeat:   heartbeat.NewHeartbeatController(s.Heartbeat),
		Fleet:       fleet.NewFleetController(s.Fleet),
		Marketplace: marketplace.NewMarketplaceController(s.Marketplace),
		Tenants:     tenants.NewTenantsController(s.Tenants),
		Health:      health.NewHealthController(s.Health),
	}
}
