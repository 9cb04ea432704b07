package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/properties/{id}/analysis/cash", h.HandleGetCash)
	r.Put("/properties/{id}/analysis/cash", h.HandleUpdateCash)

	r.Get("/properties/{id}/analysis/financing", h.HandleGetFinancing)
	r.Put("/properties/{id}/analysis/financing", h.HandleUpdateFinancing)
	r.Post("/properties/{id}/analysis/financing/{planId}/payments", h.HandleAddPayment)
	r.Delete("/properties/{id}/analysis/financing/{planId}/payments/{paymentId}", h.HandleDeletePayment)
}
