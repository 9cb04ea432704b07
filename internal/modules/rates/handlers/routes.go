package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers rate routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rates/presets", h.HandleListPresets)

	r.Route("/properties/{id}/rates", func(r chi.Router) {
		r.Get("/", h.HandleGetRates)
		r.Put("/", h.HandleUpdateRates)
		r.Post("/preset", h.HandleApplyPreset)
	})
}
