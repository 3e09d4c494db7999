package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecopath/ecopath/internal/config"
	"github.com/ecopath/ecopath/internal/di"
	testingpkg "github.com/ecopath/ecopath/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()

	cfg := &config.Config{
		DataDir:  t.TempDir(),
		Port:     8080,
		LogLevel: "info",
		Backup:   &config.BackupConfig{},
	}
	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	return New(Config{Log: zerolog.Nop(), Port: cfg.Port, DevMode: true, Container: container}), container
}

func request(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := request(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["database"])
}

func TestServer_HealthReportsDatabaseDown(t *testing.T) {
	s, container := newTestServer(t)
	require.NoError(t, container.InventoryDB.Close())

	rec, body := request(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestServer_BackupRoutesAbsentWhenDisabled(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := request(t, s, http.MethodGet, "/api/system/backups", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RedistributionFlow(t *testing.T) {
	s, container := newTestServer(t)
	testingpkg.Seed(t, container.InventoryDB.Conn(), testingpkg.NewRedistributionFixture())

	rec, body := request(t, s, http.MethodPost, "/api/redistribution/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SUCCESS", body["status"])
	assert.Equal(t, float64(1), body["recommendations_generated"])

	recs := body["recommendations"].([]interface{})
	require.Len(t, recs, 1)
	id := recs[0].(map[string]interface{})["recommendation_id"].(string)

	rec, body = request(t, s, http.MethodGet, "/api/dashboard/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["pending_redistributions"])

	rec, body = request(t, s, http.MethodPost, "/api/redistribution/approve",
		`{"recommendationId":"`+id+`","approvedBy":"dr.sari"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SUCCESS", body["status"])

	assert.Equal(t, 420, testingpkg.StockOf(t, container.InventoryDB.Conn(), "HOSP-01", "MED-AMX"))
	assert.Equal(t, 100, testingpkg.StockOf(t, container.InventoryDB.Conn(), "CLIN-01", "MED-AMX"))

	rec, body = request(t, s, http.MethodPost, "/api/redistribution/approve",
		`{"recommendationId":"`+id+`","approvedBy":"dr.sari"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "FAILED", body["status"])
	assert.Equal(t, "invalid_transition", body["kind"])
}
