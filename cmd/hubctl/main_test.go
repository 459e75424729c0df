package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, auth string
	body               map[string]string
}

func fakeHub(t *testing.T, status int, resp string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		calls = append(calls, rec)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHubctl_Purchase(t *testing.T) {
	srv, calls := fakeHub(t, http.StatusOK, `{"success":true,"message":"Module purchased","data":{"id":"t1"}}`)

	out, err := run("--url", srv.URL, "--token", "abc", "marketplace", "purchase", "t1", "hotel")
	require.NoError(t, err)
	assert.Contains(t, out, "Module purchased")

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/marketplace/purchase", c.path)
	assert.Equal(t, "Bearer abc", c.auth)
	assert.Equal(t, map[string]string{"tenantId": "t1", "productId": "hotel"}, c.body)
}

func TestHubctl_ErrorEnvelope(t *testing.T) {
	srv, _ := fakeHub(t, http.StatusConflict, `{"success":false,"code":"CONFLICT","message":"conflict","detail":"tenant already subscribed to hotel"}`)

	_, err := run("--url", srv.URL, "marketplace", "purchase", "t1", "hotel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFLICT")
	assert.Contains(t, err.Error(), "already subscribed")

	var ae *apiError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusConflict, ae.Status)
}

func TestHubctl_TenantsGet(t *testing.T) {
	srv, calls := fakeHub(t, http.StatusOK, `{"id":"x","slug":"acme"}`)

	out, err := run("--url", srv.URL, "--out", "json", "tenants", "get", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, `"slug": "acme"`)
	assert.Equal(t, "/tenants/acme", (*calls)[0].path)
}

func TestHubctl_ArgsValidation(t *testing.T) {
	_, err := run("marketplace", "purchase", "only-one")
	assert.Error(t, err)
}

func TestSignAdminToken(t *testing.T) {
	now := time.Now()
	tok, err := signAdminToken("secret", "ops", time.Hour, now)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil },
		jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}
