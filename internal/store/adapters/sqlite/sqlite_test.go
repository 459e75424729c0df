package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	store "github.com/dropDatabas3/fleethub/internal/store"
)

func openTestConn(t *testing.T) store.AdapterConnection {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "hub.db")
	conn, err := store.OpenAdapter(context.Background(), store.AdapterConfig{Name: "sqlite", DSN: dsn})
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "cgo") {
		t.Skip("go-sqlite3 requires cgo")
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNormalizeDSN(t *testing.T) {
	assert.Equal(t, "file:x.db?_txlock=immediate&_busy_timeout=5000&_foreign_keys=1", normalizeDSN("file:x.db"))
	assert.Equal(t, "file:x.db?_txlock=deferred&_busy_timeout=5000&_foreign_keys=1", normalizeDSN("file:x.db?_txlock=deferred"))
}

func TestTenants_CRUD(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()
	repo := conn.Tenants()

	tn := &repository.Tenant{Slug: "acme", Name: "Acme"}
	require.NoError(t, repo.Create(ctx, tn))
	require.NotEmpty(t, tn.ID)

	err := repo.Create(ctx, &repository.Tenant{Slug: "acme"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := repo.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, tn.ID, got.ID)
	assert.Empty(t, got.SubscribedModules)
	assert.Nil(t, got.LastHeartbeat)

	require.NoError(t, repo.Delete(ctx, tn.ID))
	_, err = repo.GetByID(ctx, tn.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, tn.ID), repository.ErrNotFound)
}

func TestTenants_SubscriptionsAndHeartbeat(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()
	repo := conn.Tenants()

	tn := &repository.Tenant{Slug: "t1"}
	require.NoError(t, repo.Create(ctx, tn))

	add := func(cur []string) ([]string, error) {
		for _, s := range cur {
			if s == "hotel" {
				return nil, repository.ErrConflict
			}
		}
		return append(cur, "hotel"), nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		conf int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateSubscriptions(ctx, tn.ID, add)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if repository.IsConflict(err) {
				conf++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, oks)
	assert.Equal(t, 5, conf)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := repo.RecordHeartbeat(ctx, tn.ID, repository.Heartbeat{
		Timestamp: ts,
		Metrics:   repository.HeartbeatMetrics{CPU: 0.5, RAMUsedMB: 512, UptimeSeconds: 3600, Version: "1.0.0"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel"}, got.SubscribedModules)
	require.NotNil(t, got.LastHeartbeat)
	assert.True(t, ts.Equal(got.LastHeartbeat.Timestamp))

	_, err = repo.RecordHeartbeat(ctx, "missing", repository.Heartbeat{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestModules_Upsert(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()
	repo := conn.Modules()

	m := &repository.Module{Slug: "hotel", Name: "Hotel", APIBase: "/api/hotel"}
	require.NoError(t, repo.Upsert(ctx, m))
	firstID := m.ID

	m2 := &repository.Module{Slug: "hotel", Name: "Hotel Management", APIBase: "/api/hotel"}
	require.NoError(t, repo.Upsert(ctx, m2))
	assert.Equal(t, firstID, m2.ID)

	got, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Management", got.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
