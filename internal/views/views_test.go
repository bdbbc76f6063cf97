package views

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, renderer.Render(w, http.StatusOK, PageSuccess, PageData{Title: "Confirmed", Kind: "success", Email: "jane@example.com"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Email confirmed")
	assert.Contains(t, w.Body.String(), "jane@example.com")

	w = httptest.NewRecorder()
	require.NoError(t, renderer.Render(w, http.StatusBadRequest, PageError, PageData{Title: "Error", Kind: "error", Message: "<script>"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")

	assert.Error(t, renderer.Render(httptest.NewRecorder(), http.StatusOK, "missing.html", PageData{}))
}
