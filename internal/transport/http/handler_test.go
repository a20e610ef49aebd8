package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(slog.Default(), "1.2.3")
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.NotEmpty(t, body["uptime"])
}

func TestGetBreakdownRejectsUnknownGrouping(t *testing.T) {
	// Parameter validation happens before the service is touched, so a
	// nil service is safe here.
	handler := NewDashboardHandler(nil, slog.Default())

	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr,
		httptest.NewRequest(http.MethodGet, "/breakdown?by=planet", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_PARAMETER")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	handler := NewDashboardHandler(nil, slog.Default())

	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr,
		httptest.NewRequest(http.MethodGet, "/export/pdf", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "must be csv or xlsx")
}
