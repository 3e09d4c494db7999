package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/modules/inventory"
)

// HandleGetItems returns item reference data
func (h *Handler) HandleGetItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Items(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "SUCCESS",
		"items":  items,
	})
}

// HandlePutFacility creates or updates a facility
func (h *Handler) HandlePutFacility(w http.ResponseWriter, r *http.Request) {
	var f domain.Facility
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		h.writeError(w, domain.WrapError(domain.KindValidation, "inventory.HandlePutFacility", err, "invalid request body"))
		return
	}

	if err := h.service.SaveFacility(r.Context(), f); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "SUCCESS", "facility_id": f.ID})
}

// HandlePutItem creates or updates an item
func (h *Handler) HandlePutItem(w http.ResponseWriter, r *http.Request) {
	var it domain.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		h.writeError(w, domain.WrapError(domain.KindValidation, "inventory.HandlePutItem", err, "invalid request body"))
		return
	}

	if err := h.service.SaveItem(r.Context(), it); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "SUCCESS", "item_id": it.ID})
}

// PutPositionRequest is the body of PUT /inventory/positions
type PutPositionRequest struct {
	FacilityID   string `json:"facilityId"`
	ItemID       string `json:"itemId"`
	CurrentStock int    `json:"currentStock"`
	MinThreshold int    `json:"minStockThreshold"`
	MaxCapacity  int    `json:"maxStockCapacity"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
}

// HandlePutPosition sets a position's stock level and thresholds
func (h *Handler) HandlePutPosition(w http.ResponseWriter, r *http.Request) {
	var req PutPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.WrapError(domain.KindValidation, "inventory.HandlePutPosition", err, "invalid request body"))
		return
	}

	position, err := h.service.SavePosition(r.Context(), inventory.PositionInput{
		FacilityID:   req.FacilityID,
		ItemID:       req.ItemID,
		CurrentStock: req.CurrentStock,
		MinThreshold: req.MinThreshold,
		MaxCapacity:  req.MaxCapacity,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "SUCCESS", "position": position})
}
