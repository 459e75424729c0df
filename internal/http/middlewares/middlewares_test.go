package middlewares

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/rate"
	"github.com/dropDatabas3/fleethub/internal/store/adapters/memory"
)

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m["code"].(string)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler, mk("a"), mk("b"), mk("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "no spaces allowed")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "no spaces allowed", seen)
	assert.Len(t, seen, 36)
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), WithLogging(), WithRecover())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errCode(t, rec))
}

func TestWithRateLimit_HeartbeatKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	lim := rate.NewMemoryLimiter(1, time.Minute).WithClock(func() time.Time { return now })

	var bodies []string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusOK)
	}), WithRateLimit(RateLimitConfig{Limiter: lim, KeyFunc: HeartbeatRateKey}))

	send := func(tenant string) *httptest.ResponseRecorder {
		body := `{"tenantId":"` + tenant + `","metrics":{}}`
		req := httptest.NewRequest(http.MethodPost, "/heartbeat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("t1").Code)
	require.Len(t, bodies, 1)
	assert.Equal(t, `{"tenantId":"t1","metrics":{}}`, bodies[0])

	rec := send("t1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errCode(t, rec))

	assert.Equal(t, http.StatusOK, send("t2").Code)
}

func TestWithRateLimit_NilLimiterIsNoop(t *testing.T) {
	h := Chain(okHandler, WithRateLimit(RateLimitConfig{}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func signHS256(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireAdminJWT(t *testing.T) {
	var sub any
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = GetClaims(r.Context())["sub"]
		w.WriteHeader(http.StatusNoContent)
	}), RequireAdminJWT([]byte("s3cret")))

	do := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/fleet/stats", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, rec))

	rec = do("Bearer " + signHS256(t, "other", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errCode(t, rec))

	rec = do("Bearer " + signHS256(t, "s3cret", time.Now().Add(-time.Hour)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do("Bearer " + signHS256(t, "s3cret", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ops", sub)
}

func TestRequireAdminJWT_EmptySecretIsNoop(t *testing.T) {
	h := Chain(okHandler, RequireAdminJWT(nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireEntitlement(t *testing.T) {
	ctx := context.Background()
	conn := memory.New()
	repo := conn.Tenants()

	sub := &repository.Tenant{Slug: "t1"}
	require.NoError(t, repo.Create(ctx, sub))
	_, err := repo.UpdateSubscriptions(ctx, sub.ID, func(cur []string) ([]string, error) {
		return append(cur, "hotel"), nil
	})
	require.NoError(t, err)
	plain := &repository.Tenant{Slug: "t2"}
	require.NoError(t, repo.Create(ctx, plain))

	var gotTenant *repository.Tenant
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = GetTenant(r.Context())
		w.WriteHeader(http.StatusOK)
	}), RequireEntitlement(repo, "hotel"))

	do := func(tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/hotel/rooms", nil)
		if tenant != "" {
			req.Header.Set("X-Tenant-ID", tenant)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do("")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errCode(t, rec))

	rec = do("ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TENANT_NOT_FOUND", errCode(t, rec))

	rec = do(plain.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "MODULE_NOT_SUBSCRIBED", errCode(t, rec))

	rec = do(sub.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotTenant)
	assert.Equal(t, sub.ID, gotTenant.ID)

	// la suscripción se evalúa en cada request
	_, err = repo.UpdateSubscriptions(ctx, sub.ID, func(cur []string) ([]string, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(sub.ID).Code)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/tenants/:param", normalizePath("/tenants/0b7e1c9a-2f51-4c8e-9a43-5d1f0c6e7a10"))
	assert.Equal(t, "/api/hotel/rooms/:param", normalizePath("/api/hotel/rooms/42"))
	assert.Equal(t, "/fleet/stats", normalizePath("/fleet/stats"))
}

func TestWithCORS(t *testing.T) {
	h := Chain(okHandler, WithCORS([]string{"https://admin.example.com/"}))

	req := httptest.NewRequest(http.MethodGet, "/fleet/stats", nil)
	req.Header.Set("Origin", "https://ADMIN.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ADMIN.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/fleet/stats", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/marketplace/purchase", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}), WithCORS([]string{"*"})).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}
