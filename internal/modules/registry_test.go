package modules

import (
	"context"
	"errors"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSet struct {
	slug  string
	calls []string
	err   error
}

func (s *stubSet) Slug() string        { return s.slug }
func (s *stubSet) Routes(r chi.Router) {}

type provisioningSet struct{ stubSet }

func (s *provisioningSet) Provision(ctx context.Context, tenantID string) error {
	s.calls = append(s.calls, tenantID)
	return s.err
}

func TestRegistry(t *testing.T) {
	plain := &stubSet{slug: "reports"}
	prov := &provisioningSet{stubSet{slug: "hotel"}}

	reg, err := NewRegistry(plain, prov)
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel", "reports"}, reg.Slugs())

	_, ok := reg.Get("hotel")
	assert.True(t, ok)
	_, ok = reg.Get("spa")
	assert.False(t, ok)

	ctx := context.Background()
	require.NoError(t, reg.Provision(ctx, "hotel", "t1"))
	require.NoError(t, reg.Provision(ctx, "reports", "t1"))
	require.NoError(t, reg.Provision(ctx, "unknown", "t1"))
	assert.Equal(t, []string{"t1"}, prov.calls)

	prov.err = errors.New("disk full")
	assert.ErrorContains(t, reg.Provision(ctx, "hotel", "t1"), "disk full")
}

func TestRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry(&stubSet{slug: "a"}, &stubSet{slug: "a"})
	assert.Error(t, err)
}
