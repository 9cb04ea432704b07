// Package handlers provides HTTP handlers for the property directory.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Handler provides HTTP handlers for property endpoints
type Handler struct {
	service *properties.Service
	log     zerolog.Logger
}

// NewHandler creates a new properties handler
func NewHandler(service *properties.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "properties").Logger(),
	}
}

// HandleGet handles GET /api/properties/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to get property", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p, h.log)
}

// HandleUpsert handles PUT /api/properties/{id}
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req properties.UpsertRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	p, err := h.service.Upsert(chi.URLParam(r, "id"), req)
	if err != nil {
		utils.WriteError(w, err, "Failed to save property", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p, h.log)
}

// HandleDelete handles DELETE /api/properties/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err, "Failed to delete property", h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers property routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/properties/{id}", h.HandleGet)
	r.Put("/properties/{id}", h.HandleUpsert)
	r.Delete("/properties/{id}", h.HandleDelete)
}
