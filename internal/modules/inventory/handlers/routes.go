package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all inventory routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/anomalies", h.HandleGetAnomalies) // Understocked, overstocked, near expiry
		r.Post("/update", h.HandleUpdateStock)    // Stock IN/OUT
		r.Get("/positions", h.HandleGetPositions) // Full snapshot
		r.Put("/positions", h.HandlePutPosition)
		r.Get("/movements", h.HandleGetMovements) // Movement journal

		// Reference data
		r.Get("/facilities", h.HandleGetFacilities)
		r.Put("/facilities", h.HandlePutFacility)
		r.Get("/items", h.HandleGetItems)
		r.Put("/items", h.HandlePutItem)
	})
}
