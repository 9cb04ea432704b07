// Package handlers provides HTTP handlers for workspace settings management.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/modules/settings"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGet handles GET /api/workspaces/{id}/settings
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ws, err := h.service.GetOrCreate(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to get workspace settings", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ws, h.log)
}

// HandleUpdate handles PUT /api/workspaces/{id}/settings
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	ws, err := h.service.Update(chi.URLParam(r, "id"), req)
	if err != nil {
		utils.WriteError(w, err, "Failed to update workspace settings", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ws, h.log)
}

// RegisterRoutes registers settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/workspaces/{id}/settings", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
	})
}
