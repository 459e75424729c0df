// Package services agrupa todos los services HTTP del Hub.
// Es el "composition root" de services: app.New arma Deps y llama New.
//
// Para agregar un dominio nuevo:
//   - crear internal/http/services/{dominio}/{nombre}_service.go
//   - agregar el campo en Services e inicializarlo en New
package services

import (
	"time"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/fleet"
	fleetsvc "github.com/dropDatabas3/fleethub/internal/http/services/fleet"
	"github.com/dropDatabas3/fleethub/internal/http/services/health"
	"github.com/dropDatabas3/fleethub/internal/http/services/heartbeat"
	"github.com/dropDatabas3/fleethub/internal/http/services/marketplace"
	"github.com/dropDatabas3/fleethub/internal/http/services/tenants"
)

// Deps contiene las dependencias base para crear los services.
type Deps struct {
	// ─── Infraestructura ───
	Tenants     repository.TenantRepository
	Catalog     marketplace.Catalog
	Provisioner marketplace.Provisioner // opcional
	Fleet       *fleet.Aggregator

	// ─── Configuración ───
	Now func() time.Time // nil = time.Now

	// ─── Health Check ───
	HealthDeps health.Deps
}

// Services agrupa los services por dominio.
type Services struct {
	Heartbeat   heartbeat.HeartbeatService
	Fleet       fleetsvc.FleetService
	Marketplace marketplace.MarketplaceService
	Tenants     tenants.TenantsService
	Health      health.HealthService
}

// New crea el agregador de services. Único lugar donde se instancian.
func New(d Deps) *Services {
	return &Services{
		Heartbeat: heartbeat.NewHeartbeatService(heartbeat.Deps{
			Tenants: d.Tenants,
			Now:     d.Now,
		}),
		Fleet: fleetsvc.NewFleetService(d.Fleet),
		Marketplace: marketplace.NewMarketplaceService(marketplace.Deps{
			Tenants:     d.Tenants,
			Catalog:     d.Catalog,
			Provisioner: d.Provisioner,
		}),
		Tenants: tenants.NewTenantsService(d.Tenants),
		Health:  health.NewHealthService(d.HealthDeps),
	}
}
