package marketplace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fleethub/internal/catalog"
	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	httperrors "github.com/dropDatabas3/fleethub/internal/http/errors"
	"github.com/dropDatabas3/fleethub/internal/store/adapters/memory"
)

type countingProvisioner struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (p *countingProvisioner) Provision(ctx context.Context, slug, tenantID string) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("storage offline")
	}
	return nil
}

type fixture struct {
	svc    MarketplaceService
	repo   repository.TenantRepository
	prov   *countingProvisioner
	tenant *repository.Tenant
	hotel  *repository.Module
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	conn := memory.New()

	mods, err := catalog.Load("")
	require.NoError(t, err)
	require.NoError(t, catalog.Seed(ctx, conn.Modules(), mods))
	cat := catalog.New(conn.Modules(), 0)

	tn := &repository.Tenant{Slug: "t1", Name: "Tenant One"}
	require.NoError(t, conn.Tenants().Create(ctx, tn))

	hotel, err := cat.Resolve(ctx, "hotel")
	require.NoError(t, err)

	prov := &countingProvisioner{}
	return fixture{
		svc:    NewMarketplaceService(Deps{Tenants: conn.Tenants(), Catalog: cat, Provisioner: prov}),
		repo:   conn.Tenants(),
		prov:   prov,
		tenant: tn,
		hotel:  hotel,
	}
}

func code(err error) string { return httperrors.FromError(err).Code }

func TestPurchaseUnsubscribeReprovision(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	out, err := fx.svc.Purchase(ctx, fx.tenant.ID, "hotel")
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel"}, out.SubscribedModules)
	before := out.SubscribedModules

	out, err = fx.svc.Unsubscribe(ctx, fx.tenant.ID, fx.hotel.ID)
	require.NoError(t, err)
	assert.Empty(t, out.SubscribedModules)

	out, err = fx.svc.Purchase(ctx, fx.tenant.ID, fx.hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, before, out.SubscribedModules)
	assert.EqualValues(t, 2, fx.prov.calls.Load())
}

func TestPurchase_DuplicateIsConflict(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, err := fx.svc.Purchase(ctx, fx.tenant.ID, "hotel")
	require.NoError(t, err)

	_, err = fx.svc.Purchase(ctx, fx.tenant.ID, "hotel")
	assert.Equal(t, "CONFLICT", code(err))

	got, err := fx.repo.GetByID(ctx, fx.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel"}, got.SubscribedModules)
	assert.EqualValues(t, 1, fx.prov.calls.Load())
}

func TestUnsubscribe_NotSubscribedIsConflictWithoutMutation(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, err := fx.svc.Purchase(ctx, fx.tenant.ID, "channel-manager")
	require.NoError(t, err)
	before, err := fx.repo.GetByID(ctx, fx.tenant.ID)
	require.NoError(t, err)

	_, err = fx.svc.Unsubscribe(ctx, fx.tenant.ID, "hotel")
	assert.Equal(t, "CONFLICT", code(err))

	after, err := fx.repo.GetByID(ctx, fx.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, before.SubscribedModules, after.SubscribedModules)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestPurchase_Errors(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, err := fx.svc.Purchase(ctx, fx.tenant.ID, "spa")
	assert.Equal(t, "MODULE_NOT_FOUND", code(err))

	_, err = fx.svc.Purchase(ctx, "ghost", "hotel")
	assert.Equal(t, "TENANT_NOT_FOUND", code(err))

	_, err = fx.svc.Purchase(ctx, "", "hotel")
	assert.Equal(t, "INVALID_PAYLOAD", code(err))

	_, err = fx.svc.Unsubscribe(ctx, fx.tenant.ID, "")
	assert.Equal(t, "INVALID_PAYLOAD", code(err))

	// por slug del tenant
	out, err := fx.svc.Purchase(ctx, "t1", "hotel")
	require.NoError(t, err)
	assert.Equal(t, fx.tenant.ID, out.ID)
}

func TestPurchase_ProvisionFailureLeavesSetUnchanged(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	fx.prov.fail.Store(true)

	_, err := fx.svc.Purchase(ctx, fx.tenant.ID, "hotel")
	assert.Equal(t, "SERVICE_UNAVAILABLE", code(err))

	got, err := fx.repo.GetByID(ctx, fx.tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SubscribedModules)
}

func TestPurchase_ConcurrentDuplicates(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		ok, confl atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := fx.svc.Purchase(ctx, fx.tenant.ID, "hotel")
			switch {
			case err == nil:
				ok.Add(1)
			case code(err) == "CONFLICT":
				confl.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, confl.Load())
	assert.EqualValues(t, 1, fx.prov.calls.Load())
}

func TestListModules(t *testing.T) {
	fx := setup(t)
	mods, err := fx.svc.ListModules(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, mods)
}
