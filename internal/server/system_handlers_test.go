package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecopath/ecopath/internal/reliability"
	testingpkg "github.com/ecopath/ecopath/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackups struct {
	backups   []reliability.BackupInfo
	listErr   error
	createErr error
	created   int
}

func (s *stubBackups) ListBackups(ctx context.Context) ([]reliability.BackupInfo, error) {
	return s.backups, s.listErr
}

func (s *stubBackups) CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created++
	return &reliability.BackupInfo{Filename: "ecopath-backup-2026-06-01-030000.tar.gz", SizeBytes: 2048}, nil
}

func newSystemRouter(t *testing.T, backups BackupManager) (chi.Router, *SystemHandlers) {
	t.Helper()
	h := NewSystemHandlers(zerolog.Nop(), testingpkg.NewInventoryDB(t), nil)
	h.backups = backups

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, h
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestSystemHandlers_Status(t *testing.T) {
	r, _ := newSystemRouter(t, nil)

	rec := serve(r, http.MethodGet, "/system/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var response SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "SUCCESS", response.Status)
	assert.True(t, response.Database.Healthy)
	assert.Equal(t, "inventory", response.Database.Name)
	require.NotNil(t, response.Database.Stats)
	assert.Positive(t, response.Database.Stats.PageSize)
	assert.Positive(t, response.System.Goroutines)
	assert.False(t, response.BackupsEnabled)
}

func TestSystemHandlers_StatusDatabaseDown(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "inventory")
	cleanup()

	h := NewSystemHandlers(zerolog.Nop(), db, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := serve(r, http.MethodGet, "/system/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var response SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "FAILED", response.Status)
	assert.False(t, response.Database.Healthy)
	assert.NotEmpty(t, response.Database.Error)
}

func TestSystemHandlers_Backups(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		backups := &stubBackups{backups: []reliability.BackupInfo{
			{Filename: "ecopath-backup-2026-06-02-030000.tar.gz", Timestamp: time.Date(2026, 6, 2, 3, 0, 0, 0, time.UTC)},
			{Filename: "ecopath-backup-2026-06-01-030000.tar.gz", Timestamp: time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)},
		}}
		r, _ := newSystemRouter(t, backups)

		rec := serve(r, http.MethodGet, "/system/backups")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status  string                   `json:"status"`
			Count   int                      `json:"count"`
			Backups []reliability.BackupInfo `json:"backups"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "ecopath-backup-2026-06-02-030000.tar.gz", body.Backups[0].Filename)
	})

	t.Run("list failure", func(t *testing.T) {
		r, _ := newSystemRouter(t, &stubBackups{listErr: errors.New("timeout")})

		rec := serve(r, http.MethodGet, "/system/backups")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("create", func(t *testing.T) {
		backups := &stubBackups{}
		r, _ := newSystemRouter(t, backups)

		rec := serve(r, http.MethodPost, "/system/backups")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, backups.created)
		assert.Contains(t, rec.Body.String(), "ecopath-backup-2026-06-01-030000.tar.gz")
	})

	t.Run("create failure", func(t *testing.T) {
		r, _ := newSystemRouter(t, &stubBackups{createErr: errors.New("bucket unreachable")})

		rec := serve(r, http.MethodPost, "/system/backups")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "persistence")
	})
}
