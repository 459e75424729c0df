package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrConflict.WithDetail("already subscribed to hotel"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "CONFLICT", body["code"])
	assert.Equal(t, "already subscribed to hotel", body["detail"])
}

func TestWriteError_GenericIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCopiesDoNotMutateBase(t *testing.T) {
	e := ErrNotFound.WithDetail("x")
	assert.Empty(t, ErrNotFound.Detail)
	assert.True(t, Is(e, ErrNotFound))
	assert.False(t, Is(e, ErrConflict))

	wrapped := fmt.Errorf("svc: %w", ErrForbidden.WithCause(fmt.Errorf("inner")))
	assert.Equal(t, "FORBIDDEN", FromError(wrapped).Code)
}
