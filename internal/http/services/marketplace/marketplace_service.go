// Package marketplace contiene el Subscription Manager: purchase, unsubscribe
// y el listado del catálogo.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/metrics"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// MarketplaceService define las operaciones del Subscription Manager.
// Toda mutación devuelve el tenant resultante completo.
type MarketplaceService interface {
	Purchase(ctx context.Context, tenantID, productID string) (*repository.Tenant, error)
	Unsubscribe(ctx context.Context, tenantID, productID string) (*repository.Tenant, error)
	ListModules(ctx context.Context) ([]repository.Module, error)
}

// Catalog resuelve productIds (id o slug) a módulos.
type Catalog interface {
	Resolve(ctx context.Context, productID string) (*repository.Module, error)
	List(ctx context.Context) ([]repository.Module, error)
}

// Provisioner prepara el módulo para el tenant antes de confirmar la compra.
type Provisioner interface {
	Provision(ctx context.Context, moduleSlug, tenantID string) error
}

type Deps struct {
	Tenants     repository.TenantRepository
	Catalog     Catalog
	Provisioner Provisioner // opcional
}

type marketplaceService struct {
	deps Deps
}

func NewMarketplaceService(d Deps) MarketplaceService {
	return &marketplaceService{deps: d}
}

const componentMarketplace = "marketplace"

var errProvision = errors.New("provision failed")

func (s *marketplaceService) resolve(ctx context.Context, tenantID, productID string) (*repository.Tenant, *repository.Module, error) {
	tenantID, productID = strings.TrimSpace(tenantID), strings.TrimSpace(productID)
	if tenantID == "" || productID == "" {
		return nil, nil, httperrors.ErrInvalidPayload.WithDetail("tenantId y productId requeridos")
	}

	mod, err := s.deps.Catalog.Resolve(ctx, productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, httperrors.ErrModuleNotFound.WithDetail(productID)
		}
		return nil, nil, httperrors.ErrServiceUnavailable.WithCause(err)
	}

	t, err := repository.LookupTenant(ctx, s.deps.Tenants, tenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, httperrors.ErrTenantNotFound.WithDetail(tenantID)
		}
		return nil, nil, httperrors.ErrServiceUnavailable.WithCause(err)
	}
	return t, mod, nil
}

// Purchase agrega el módulo al set del tenant. Ya suscripto -> CONFLICT sin cambios.
func (s *marketplaceService) Purchase(ctx context.Context, tenantID, productID string) (*repository.Tenant, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentMarketplace),
		logger.Op("Purchase"),
		logger.ProductID(productID),
	)

	t, mod, err := s.resolve(ctx, tenantID, productID)
	if err != nil {
		metrics.RecordSubscriptionChange("purchase", "rejected")
		return nil, err
	}

	out, err := s.deps.Tenants.UpdateSubscriptions(ctx, t.ID, func(current []string) ([]string, error) {
		for _, slug := range current {
			if slug == mod.Slug {
				return nil, repository.ErrConflict
			}
		}
		// Provision corre bajo el lock del tenant: un duplicado nunca provisiona.
		if s.deps.Provisioner != nil {
			if err := s.deps.Provisioner.Provision(ctx, mod.Slug, t.ID); err != nil {
				return nil, fmt.Errorf("%w: %v", errProvision, err)
			}
		}
		return append(current, mod.Slug), nil
	})
	if err != nil {
		metrics.RecordSubscriptionChange("purchase", "rejected")
		switch {
		case repository.IsConflict(err):
			return nil, httperrors.ErrConflict.WithDetailf("tenant already subscribed to %s", mod.Slug)
		case repository.IsNotFound(err):
			return nil, httperrors.ErrTenantNotFound.WithDetail(tenantID)
		case errors.Is(err, errProvision):
			log.Error("module provisioning failed", logger.TenantID(t.ID), logger.ModuleSlug(mod.Slug), logger.Err(err))
			return nil, httperrors.ErrServiceUnavailable.WithDetail("module provisioning failed").WithCause(err)
		default:
			return nil, httperrors.ErrServiceUnavailable.WithCause(err)
		}
	}

	metrics.RecordSubscriptionChange("purchase", "ok")
	log.Info("module purchased",
		logger.TenantID(out.ID),
		logger.ModuleSlug(mod.Slug),
		logger.Modules(out.SubscribedModules),
	)
	return out, nil
}

// Unsubscribe quita el módulo. No suscripto -> CONFLICT sin cambios.
// Los datos del módulo para el tenant se conservan.
func (s *marketplaceService) Unsubscribe(ctx context.Context, tenantID, productID string) (*repository.Tenant, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentMarketplace),
		logger.Op("Unsubscribe"),
		logger.ProductID(productID),
	)

	t, mod, err := s.resolve(ctx, tenantID, productID)
	if err != nil {
		metrics.RecordSubscriptionChange("unsubscribe", "rejected")
		return nil, err
	}

	out, err := s.deps.Tenants.UpdateSubscriptions(ctx, t.ID, func(current []string) ([]string, error) {
		next := make([]string, 0, len(current))
		found := false
		for _, slug := range current {
			if slug == mod.Slug {
				found = true
				continue
			}
			next = append(next, slug)
		}
		if !found {
			return nil, repository.ErrConflict
		}
		return next, nil
	})
	if err != nil {
		metrics.RecordSubscriptionChange("unsubscribe", "rejected")
		switch {
		case repository.IsConflict(err):
			return nil, httperrors.ErrConflict.WithDetailf("tenant is not subscribed to %s", mod.Slug)
		case repository.IsNotFound(err):
			return nil, httperrors.ErrTenantNotFound.WithDetail(tenantID)
		default:
			return nil, httperrors.ErrServiceUnavailable.WithCause(err)
		}
	}

	metrics.RecordSubscriptionChange("unsubscribe", "ok")
	log.Info("module unsubscribed",
		logger.TenantID(out.ID),
		logger.ModuleSlug(mod.Slug),
		logger.Modules(out.SubscribedModules),
	)
	return out, nil
}

func (s *marketplaceService) ListModules(ctx context.Context) ([]repository.Module, error) {
	mods, err := s.deps.Catalog.List(ctx)
	if err != nil {
		return nil, httperrors.ErrServiceUnavailable.WithCause(err)
	}
	if mods == nil {
		mods = []repository.Module{}
	}
	return mods, nil
}
