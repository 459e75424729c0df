package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newReq(body, ct string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if ct != "" {
		r.Header.Set("Content-Type", ct)
	}
	return r
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestReadJSON(t *testing.T) {
	t.Run("ok tolerates unknown fields", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		ok := ReadJSON(rec, newReq(`{"name":"a","count":2,"extra":true}`, "application/json"), &p)
		assert.True(t, ok)
		assert.Equal(t, payload{Name: "a", Count: 2}, p)
	})

	cases := []struct {
		name, body, ct, code string
		status               int
	}{
		{"wrong content type", `{}`, "text/plain", "INVALID_PAYLOAD", http.StatusBadRequest},
		{"empty body", ``, "application/json", "INVALID_PAYLOAD", http.StatusBadRequest},
		{"malformed", `{"name":`, "application/json", "INVALID_PAYLOAD", http.StatusBadRequest},
		{"wrong type", `{"count":"x"}`, "application/json", "INVALID_PAYLOAD", http.StatusBadRequest},
		{"too large", `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, "application/json", "BODY_TOO_LARGE", http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p payload
			rec := httptest.NewRecorder()
			ok := ReadJSON(rec, newReq(tc.body, tc.ct), &p)
			assert.False(t, ok)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeErr(t, rec)["code"])
		})
	}
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusOK, "done", map[string]int{"n": 1})

	m := decodeErr(t, rec)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "done", m["message"])
	assert.Equal(t, map[string]any{"n": 1.0}, m["data"])
}

func TestResolveTenantID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ResolveTenantID(r))
	r.Header.Set(TenantHeader, "  t1 ")
	assert.Equal(t, "t1", ResolveTenantID(r))
}
