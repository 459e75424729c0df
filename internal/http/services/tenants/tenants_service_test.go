package tenants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/fleethub/internal/http/dto/tenants"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/store/adapters/memory"
)

func TestTenantsService(t *testing.T) {
	ctx := context.Background()
	svc := NewTenantsService(memory.New().Tenants())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := svc.Create(ctx, dto.CreateTenantRequest{Slug: " Acme ", Name: ""})
	require.NoError(t, err)
	assert.Equal(t, "acme", created.Slug)
	assert.Equal(t, "acme", created.Name)
	assert.Empty(t, created.SubscribedModules)

	_, err = svc.Create(ctx, dto.CreateTenantRequest{Slug: "acme"})
	assert.Equal(t, "CONFLICT", httperrors.FromError(err).Code)

	_, err = svc.Create(ctx, dto.CreateTenantRequest{Slug: "-bad"})
	assert.Equal(t, "INVALID_PAYLOAD", httperrors.FromError(err).Code)

	byID, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	bySlug, err := svc.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)

	_, err = svc.Get(ctx, "ghost")
	assert.Equal(t, "TENANT_NOT_FOUND", httperrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, "acme"))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, "TENANT_NOT_FOUND", httperrors.FromError(err).Code)
	assert.Equal(t, "TENANT_NOT_FOUND", httperrors.FromError(svc.Delete(ctx, created.ID)).Code)
}
