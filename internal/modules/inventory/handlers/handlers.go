// Package handlers provides HTTP handlers for inventory endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/rs/zerolog"
)

// Handler handles inventory HTTP requests
type Handler struct {
	service *inventory.Service
	log     zerolog.Logger
}

// NewHandler creates a new inventory handler
func NewHandler(service *inventory.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "inventory").Logger(),
	}
}

type anomaliesResponse struct {
	Status string `json:"status"`
	*inventory.AnomalyReport
}

// HandleGetAnomalies returns understocked, overstocked and near-expiry positions
func (h *Handler) HandleGetAnomalies(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.DetectAnomalies(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, anomaliesResponse{Status: "SUCCESS", AnomalyReport: report})
}

// UpdateStockRequest is the body of POST /inventory/update
type UpdateStockRequest struct {
	FacilityID string `json:"facilityId"`
	ItemID     string `json:"itemId"`
	Quantity   int    `json:"quantity"`
	Type       string `json:"type"`
	Notes      string `json:"notes,omitempty"`
}

// HandleUpdateStock records a stock receipt or issue
func (h *Handler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.WrapError(domain.KindValidation, "inventory.HandleUpdateStock", err, "invalid request body"))
		return
	}

	result, err := h.service.UpdateStock(r.Context(), inventory.StockUpdate{
		FacilityID: req.FacilityID,
		ItemID:     req.ItemID,
		Quantity:   req.Quantity,
		Type:       domain.MovementType(strings.ToUpper(req.Type)),
		Notes:      req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "SUCCESS",
		"message":        "Stock updated successfully: " + result.MovementID,
		"transaction_id": result.MovementID,
		"new_stock":      result.NewStock,
	})
}

// HandleGetPositions returns the full inventory snapshot
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "SUCCESS",
		"count":     len(positions),
		"positions": positions,
	})
}

// HandleGetMovements returns the stock movement journal, newest first
func (h *Handler) HandleGetMovements(w http.ResponseWriter, r *http.Request) {
	filter := inventory.MovementFilter{
		FacilityID: r.URL.Query().Get("facility"),
		ItemID:     r.URL.Query().Get("item"),
		Limit:      100,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}

	movements, err := h.service.Movements(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "SUCCESS",
		"count":     len(movements),
		"movements": movements,
	})
}

// HandleGetFacilities returns facility reference data
func (h *Handler) HandleGetFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.service.Facilities(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "SUCCESS",
		"facilities": facilities,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	h.writeJSON(w, status, map[string]string{
		"status": "FAILED",
		"error":  err.Error(),
		"kind":   string(domain.KindOf(err)),
	})
}
