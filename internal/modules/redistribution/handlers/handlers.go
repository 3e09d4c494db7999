// Package handlers provides HTTP handlers for redistribution endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/modules/redistribution"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultListLimit = 50

// Handler handles redistribution HTTP requests
type Handler struct {
	service *redistribution.Service
	log     zerolog.Logger
}

// NewHandler creates a new redistribution handler
func NewHandler(service *redistribution.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "redistribution").Logger(),
	}
}

// HandleGenerate runs the matching engine and stores the resulting recommendations
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Generate(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                    "SUCCESS",
		"recommendations_generated": result.GeneratedCount,
		"recommendations":           result.Recommendations,
	})
}

// HandleGetPending returns PENDING recommendations ordered by priority
func (h *Handler) HandleGetPending(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListPending(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, recs)
}

// HandleGetApproved returns recently approved recommendations
func (h *Handler) HandleGetApproved(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListApproved(r.Context(), parseLimit(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, recs)
}

// HandleGetRejected returns recently rejected recommendations
func (h *Handler) HandleGetRejected(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListRejected(r.Context(), parseLimit(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, recs)
}

// HandleGetRecommendation returns one recommendation by id
func (h *Handler) HandleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "SUCCESS",
		"recommendation": rec,
	})
}

// ApproveRequest is the body of POST /redistribution/approve
type ApproveRequest struct {
	RecommendationID string `json:"recommendationId"`
	ApprovedBy       string `json:"approvedBy"`
}

// HandleApprove applies a PENDING recommendation to inventory
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.WrapError(domain.KindValidation, "redistribution.HandleApprove", err, "invalid request body"))
		return
	}

	result, err := h.service.Approve(r.Context(), req.RecommendationID, req.ApprovedBy)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "SUCCESS",
		"message":           "Redistribution approved successfully! Stock updated.",
		"recommendation":    result.Recommendation,
		"source_stock":      result.SourceStock,
		"destination_stock": result.DestinationStock,
	})
}

// RejectRequest is the body of POST /redistribution/reject
type RejectRequest struct {
	RecommendationID string `json:"recommendationId"`
	RejectedBy       string `json:"rejectedBy"`
	Reason           string `json:"reason"`
}

// HandleReject closes a PENDING recommendation without moving stock
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.WrapError(domain.KindValidation, "redistribution.HandleReject", err, "invalid request body"))
		return
	}

	rec, err := h.service.Reject(r.Context(), req.RecommendationID, req.RejectedBy, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "SUCCESS",
		"message":        "Redistribution rejected",
		"recommendation": rec,
	})
}

func parseLimit(r *http.Request) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultListLimit
}

func (h *Handler) writeList(w http.ResponseWriter, recs []domain.RecommendationView) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "SUCCESS",
		"count":           len(recs),
		"recommendations": recs,
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
