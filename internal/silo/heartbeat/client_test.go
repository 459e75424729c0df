package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

type fixedCollector struct{}

func (fixedCollector) Collect(ctx context.Context) (repository.HeartbeatMetrics, error) {
	return repository.HeartbeatMetrics{CPU: 0.5, RAMUsedMB: 256, UptimeSeconds: 42, Version: "1.0.0"}, nil
}

func newClient(t *testing.T, url string, interval time.Duration) *Client {
	t.Helper()
	c, err := New(Config{
		HubURL:    url,
		TenantID:  "t1",
		Interval:  interval,
		Collector: fixedCollector{},
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresTenant(t *testing.T) {
	_, err := New(Config{HubURL: "http://hub", TenantID: "  "})
	assert.ErrorIs(t, err, ErrMissingTenantID)
}

func TestAttemptTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, attemptTimeout(60*time.Second, 0))
	assert.Equal(t, 2*time.Second, attemptTimeout(4*time.Second, 0))
	assert.Equal(t, 3*time.Second, attemptTimeout(60*time.Second, 3*time.Second))
	assert.Equal(t, 500*time.Millisecond, attemptTimeout(time.Second, 5*time.Second))
	assert.Equal(t, 500*time.Millisecond, attemptTimeout(time.Second, time.Second))
}

func TestSend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/heartbeat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "t1", body["tenantId"])
		m := body["metrics"].(map[string]any)
		assert.Equal(t, 0.5, m["cpu"])
		assert.Equal(t, 256.0, m["ramUsedMb"])
		assert.Equal(t, 42.0, m["uptimeSeconds"])
		assert.Equal(t, "1.0.0", m["version"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"subscribedModules":["hotel"]}}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/", time.Minute)
	mods, err := c.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel"}, mods)

	st := c.Status()
	assert.Equal(t, uint64(1), st.Sent)
	assert.Equal(t, []string{"hotel"}, st.SubscribedModules)
	assert.NotNil(t, st.LastSuccess)
}

func TestSend_HubError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"code":"TENANT_NOT_FOUND","message":"tenant not found"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, time.Minute)
	_, err := c.Send(context.Background())

	var he *HubError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, "TENANT_NOT_FOUND", he.Code)

	st := c.Status()
	assert.Equal(t, uint64(1), st.Failed)
	assert.Nil(t, st.LastSuccess)
	assert.Contains(t, st.LastError, "TENANT_NOT_FOUND")
}

func TestSend_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, time.Minute)
	_, err := c.Send(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRun_FirstBeatImmediate(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"success":true,"data":{"subscribedModules":[]}}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRun_FailuresDoNotAccelerate(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, 200*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Run(ctx))

	// inmediato + 2 ticks como máximo; sin reintentos extra
	n := hits.Load()
	assert.GreaterOrEqual(t, n, int32(2))
	assert.LessOrEqual(t, n, int32(3))
}

func TestTick_SkipsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"success":true,"data":{"subscribedModules":[]}}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, time.Hour)
	ctx := context.Background()

	require.True(t, c.tick(ctx))
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, c.tick(ctx))
	assert.False(t, c.tick(ctx))

	close(release)
	c.wg.Wait()

	st := c.Status()
	assert.Equal(t, uint64(2), st.Skipped)
	assert.Equal(t, uint64(1), st.Sent)
	assert.Equal(t, int32(1), hits.Load())

	// liberado el intento, el próximo tick vuelve a salir
	assert.True(t, c.tick(ctx))
	c.wg.Wait()
}

func TestSystemCollector_Procfs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "loadavg"), []byte("0.75 0.50 0.25 1/123 4567\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "meminfo"), []byte(
		"MemTotal:        2048000 kB\nMemFree:          512000 kB\nMemAvailable:    1024000 kB\n"), 0o644))

	c := NewSystemCollector(root, "2.0.0")
	c.started = time.Now().Add(-90 * time.Second)

	m, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.75, m.CPU)
	assert.InDelta(t, 1000.0, m.RAMUsedMB, 0.001)
	assert.GreaterOrEqual(t, m.UptimeSeconds, int64(90))
	assert.Equal(t, "2.0.0", m.Version)
}

func TestSystemCollector_Fallback(t *testing.T) {
	c := NewSystemCollector(filepath.Join(t.TempDir(), "missing"), "dev")
	m, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.CPU)
	assert.Greater(t, m.RAMUsedMB, 0.0)
}

func TestStatusHandler(t *testing.T) {
	c := newClient(t, "http://hub.invalid", time.Minute)

	rec := httptest.NewRecorder()
	c.StatusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tenantId":"t1"`)

	rec = httptest.NewRecorder()
	c.StatusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
