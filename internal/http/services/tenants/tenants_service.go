// Package tenants contiene el service de administración mínima de tenants.
package tenants

import (
	"context"
	"strings"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	dto "github.com/dropDatabas3/fleethub/internal/http/dto/tenants"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

type TenantsService interface {
	List(ctx context.Context) ([]repository.Tenant, error)
	Get(ctx context.Context, idOrSlug string) (*repository.Tenant, error)
	Create(ctx context.Context, req dto.CreateTenantRequest) (*repository.Tenant, error)
	Delete(ctx context.Context, idOrSlug string) error
}

type tenantsService struct {
	tenants repository.TenantRepository
}

func NewTenantsService(tenants repository.TenantRepository) TenantsService {
	return &tenantsService{tenants: tenants}
}

func (s *tenantsService) List(ctx context.Context) ([]repository.Tenant, error) {
	list, err := s.tenants.List(ctx)
	if err != nil {
		return nil, httperrors.ErrServiceUnavailable.WithCause(err)
	}
	if list == nil {
		list = []repository.Tenant{}
	}
	return list, nil
}

func (s *tenantsService) Get(ctx context.Context, idOrSlug string) (*repository.Tenant, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, httperrors.ErrBadRequest.WithDetail("tenant id requerido")
	}
	t, err := repository.LookupTenant(ctx, s.tenants, idOrSlug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, httperrors.ErrTenantNotFound.WithDetail(idOrSlug)
		}
		return nil, httperrors.ErrServiceUnavailable.WithCause(err)
	}
	return t, nil
}

func (s *tenantsService) Create(ctx context.Context, req dto.CreateTenantRequest) (*repository.Tenant, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !repository.ValidSlug(slug) {
		return nil, httperrors.ErrInvalidPayload.WithDetail("slug inválido: [a-z0-9][a-z0-9-]{0,62}")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = slug
	}

	t := &repository.Tenant{Slug: slug, Name: name}
	if err := s.tenants.Create(ctx, t); err != nil {
		switch {
		case repository.IsConflict(err):
			return nil, httperrors.ErrConflict.WithDetailf("slug %s already exists", slug)
		case repository.IsInvalidInput(err):
			return nil, httperrors.ErrInvalidPayload.WithCause(err)
		default:
			return nil, httperrors.ErrServiceUnavailable.WithCause(err)
		}
	}

	logger.From(ctx).Info("tenant created",
		logger.Layer("service"),
		logger.TenantID(t.ID),
		logger.TenantSlug(t.Slug),
	)
	return t, nil
}

func (s *tenantsService) Delete(ctx context.Context, idOrSlug string) error {
	t, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return err
	}
	if err := s.tenants.Delete(ctx, t.ID); err != nil {
		if repository.IsNotFound(err) {
			return httperrors.ErrTenantNotFound.WithDetail(idOrSlug)
		}
		return httperrors.ErrServiceUnavailable.WithCause(err)
	}
	logger.From(ctx).Info("tenant deleted", logger.Layer("service"), logger.TenantID(t.ID))
	return nil
}
