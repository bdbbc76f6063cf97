package response

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestResponder_JSON(t *testing.T) {
	r := NewResponder(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w := httptest.NewRecorder()

	r.JSON(w, http.StatusCreated, OK("Vendor created", map[string]string{"name": "Acme"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Vendor created", body["message"])
	assert.Equal(t, "Acme", body["data"].(map[string]interface{})["name"])
	assert.NotContains(t, body, "error")
}

func TestResponder_ErrorHidesUpstreamDetails(t *testing.T) {
	r := NewResponder(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w := httptest.NewRecorder()

	r.Error(w, http.StatusInternalServerError, "Failed to fetch vendors", []string{"connection refused"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to fetch vendors", body["message"])
	assert.NotContains(t, body, "error")
}

func TestResponder_ErrorExposesUpstreamDetails(t *testing.T) {
	r := NewResponder(true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w := httptest.NewRecorder()

	r.Error(w, http.StatusInternalServerError, "Failed to fetch vendors", []string{"connection refused"})

	body := decode(t, w)
	assert.Equal(t, "connection refused", body["error"])
}

func TestResponder_ValidationErrors(t *testing.T) {
	r := NewResponder(false, nil)
	w := httptest.NewRecorder()

	r.Error(w, http.StatusBadRequest, "Invalid input", []string{"Vendor name is required", "bad schedule"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, []interface{}{"Vendor name is required", "bad schedule"}, body["errors"])
}
