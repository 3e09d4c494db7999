package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// handleHealth is the liveness probe. It answers 503 while the inventory database is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := map[string]interface{}{
		"status":   "healthy",
		"service":  "ecopath",
		"database": "ok",
	}
	status := http.StatusOK

	if err := s.container.InventoryDB.QuickCheck(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Health check: database unreachable")
		response["status"] = "unhealthy"
		response["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
