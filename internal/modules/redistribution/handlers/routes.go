package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all redistribution routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/redistribution", func(r chi.Router) {
		r.Post("/generate", h.HandleGenerate)

		r.Get("/pending", h.HandleGetPending)
		r.Get("/approved", h.HandleGetApproved)
		r.Get("/rejected", h.HandleGetRejected)
		r.Get("/{id}", h.HandleGetRecommendation)

		// Decisions
		r.Post("/approve", h.HandleApprove)
		r.Post("/reject", h.HandleReject)
	})
}
