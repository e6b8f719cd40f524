package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	assert.True(t, RequireMethod(w, r, http.MethodGet))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/api/health", nil)
	assert.False(t, RequireMethod(w, r, http.MethodGet))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteError(w, http.StatusNotFound, "job not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"error","error":"job not found"}`, w.Body.String())
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteSuccess(w, "credentials stored"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"credentials stored"}`, w.Body.String())
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/extractions?limit=25&bad=abc", nil)

	assert.Equal(t, 25, QueryInt(r, "limit", 50))
	assert.Equal(t, 50, QueryInt(r, "missing", 50))
	assert.Equal(t, 50, QueryInt(r, "bad", 50))
}
