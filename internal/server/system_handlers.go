package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/reliability"
)

// BackupManager is the part of the backup service exposed over HTTP
type BackupManager interface {
	ListBackups(ctx context.Context) ([]reliability.BackupInfo, error)
	CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error)
}

// SystemHandlers serves process and database status plus backup controls
type SystemHandlers struct {
	db        *database.DB
	backups   BackupManager // nil when backups are disabled
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers. backups may be nil.
func NewSystemHandlers(log zerolog.Logger, db *database.DB, backups *reliability.BackupService) *SystemHandlers {
	h := &SystemHandlers{
		db:        db,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
	// Keep the interface nil rather than holding a typed nil pointer
	if backups != nil {
		h.backups = backups
	}
	return h
}

// RegisterRoutes registers system routes. Backup routes exist only when backups are enabled.
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)

		if h.backups != nil {
			r.Get("/backups", h.HandleListBackups)
			r.Post("/backups", h.HandleCreateBackup)
		}
	})
}

// DatabaseStatus reports database reachability and size
type DatabaseStatus struct {
	Name    string          `json:"name"`
	Healthy bool            `json:"healthy"`
	Error   string          `json:"error,omitempty"`
	Stats   *database.Stats `json:"stats,omitempty"`
}

// HostStatus reports host resource usage
type HostStatus struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status         string         `json:"status"`
	Database       DatabaseStatus `json:"database"`
	System         HostStatus     `json:"system"`
	BackupsEnabled bool           `json:"backups_enabled"`
}

// HandleSystemStatus reports host usage and database health. An unreachable database yields 503.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status: "SUCCESS",
		Database: DatabaseStatus{
			Name:    h.db.Name(),
			Healthy: true,
		},
		System: HostStatus{
			CPUPercent:    cpuPercent,
			MemoryPercent: memPercent,
			Goroutines:    runtime.NumGoroutine(),
			UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		},
		BackupsEnabled: h.backups != nil,
	}

	status := http.StatusOK
	if err := h.db.QuickCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Database quick check failed")
		response.Status = "FAILED"
		response.Database.Healthy = false
		response.Database.Error = err.Error()
		status = http.StatusServiceUnavailable
	} else if stats, err := h.db.GetStats(); err != nil {
		h.log.Warn().Err(err).Msg("Failed to read database stats")
	} else {
		response.Database.Stats = stats
	}

	h.writeJSON(w, status, response)
}

// HandleListBackups lists archives in the backup bucket, newest first
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.writeError(w, domain.WrapError(domain.KindDataUnavailable, "system.HandleListBackups", err, "backup bucket unavailable"))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "SUCCESS",
		"count":   len(backups),
		"backups": backups,
	})
}

// HandleCreateBackup snapshots the database and uploads it immediately
func (h *SystemHandlers) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual backup triggered")

	info, err := h.backups.CreateAndUploadBackup(r.Context())
	if err != nil {
		h.writeError(w, domain.WrapError(domain.KindPersistence, "system.HandleCreateBackup", err, "backup failed"))
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "SUCCESS",
		"backup": info,
	})
}

// getSystemStats samples CPU over 100ms so the endpoint stays fast
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("Request failed")
	h.writeJSON(w, domain.HTTPStatus(err), map[string]string{
		"status": "FAILED",
		"error":  err.Error(),
		"kind":   string(domain.KindOf(err)),
	})
}
