// Package handlers provides HTTP handlers for the dashboard.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/modules/dashboard"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	service *dashboard.Service
	log     zerolog.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(service *dashboard.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dashboard").Logger(),
	}
}

// RegisterRoutes registers dashboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.HandleGetSummary)
}

type summaryResponse struct {
	Status string `json:"status"`
	*dashboard.Summary
}

// HandleGetSummary returns issue counts, anomalies and the pending queue
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		status := domain.HTTPStatus(err)
		h.log.Error().Err(err).Int("status", status).Msg("Failed to build dashboard summary")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "FAILED",
			"error":  err.Error(),
			"kind":   string(domain.KindOf(err)),
		})
		return
	}

	if err := json.NewEncoder(w).Encode(summaryResponse{Status: "SUCCESS", Summary: summary}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
