package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/store/adapters/memory"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func hbAt(ts time.Time, cpu, ram float64) *repository.Heartbeat {
	return &repository.Heartbeat{
		Timestamp: ts,
		Metrics:   repository.HeartbeatMetrics{CPU: cpu, RAMUsedMB: ram, UptimeSeconds: 10, Version: "1.0.0"},
	}
}

func TestIsOnline_Boundary(t *testing.T) {
	interval := 60 * time.Second

	assert.False(t, IsOnline(base, nil, interval))
	assert.True(t, IsOnline(base, hbAt(base, 0, 0), interval))
	assert.True(t, IsOnline(base.Add(120*time.Second), hbAt(base, 0, 0), interval))
	assert.False(t, IsOnline(base.Add(121*time.Second), hbAt(base, 0, 0), interval))
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(base, nil, time.Minute)
	assert.Equal(t, Stats{}, s)
}

func TestCompute_ZeroOnlineAveragesAreZero(t *testing.T) {
	tenants := []repository.Tenant{
		{ID: "a"},
		{ID: "b", LastHeartbeat: hbAt(base.Add(-time.Hour), 3, 900)},
	}
	s := Compute(base, tenants, time.Minute)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 0, s.Online)
	assert.Equal(t, 2, s.Offline)
	assert.Zero(t, s.Averages.AvgCPU)
	assert.Zero(t, s.Averages.AvgRAM)
}

func TestCompute_AveragesOnlyOnline(t *testing.T) {
	tenants := []repository.Tenant{
		{ID: "a", LastHeartbeat: hbAt(base.Add(-10*time.Second), 0.5, 512)},
		{ID: "b", LastHeartbeat: hbAt(base.Add(-30*time.Second), 1.5, 1024)},
		{ID: "c", LastHeartbeat: hbAt(base.Add(-10*time.Minute), 9, 9000)},
		{ID: "d"},
	}
	s := Compute(base, tenants, time.Minute)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Online)
	assert.Equal(t, 2, s.Offline)
	assert.Equal(t, s.Total, s.Online+s.Offline)
	assert.InDelta(t, 1.0, s.Averages.AvgCPU, 1e-9)
	assert.InDelta(t, 768.0, s.Averages.AvgRAM, 1e-9)
}

func TestAggregator_ScenarioSingleTenant(t *testing.T) {
	ctx := context.Background()
	conn := memory.New().WithClock(func() time.Time { return base })
	repo := conn.Tenants()

	tn := &repository.Tenant{Slug: "t1"}
	require.NoError(t, repo.Create(ctx, tn))
	_, err := repo.RecordHeartbeat(ctx, tn.ID, *hbAt(base, 0.5, 512))
	require.NoError(t, err)

	now := base
	agg := NewAggregator(repo, time.Minute).WithClock(func() time.Time { return now })

	s, err := agg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Online: 1, Offline: 0, Averages: Averages{AvgCPU: 0.5, AvgRAM: 512}}, s)

	// sin reportes por más de 2 intervalos
	now = base.Add(3 * time.Minute)
	s, err = agg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Online: 0, Offline: 1}, s)

	inst, err := agg.Instances(ctx)
	require.NoError(t, err)
	require.Len(t, inst, 1)
	assert.Equal(t, "t1", inst[0].Slug)
	assert.False(t, inst[0].Online)
	require.NotNil(t, inst[0].LastHeartbeat)
}

func TestAggregator_CanceledContext(t *testing.T) {
	conn := memory.New()
	require.NoError(t, conn.Tenants().Create(context.Background(), &repository.Tenant{Slug: "x"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAggregator(conn.Tenants(), 0).Stats(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
