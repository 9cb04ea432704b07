// Package handlers provides HTTP handlers for property rate management.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Handler provides HTTP handlers for rate endpoints
type Handler struct {
	service *rates.Service
	log     zerolog.Logger
}

// NewHandler creates a new rates handler
func NewHandler(service *rates.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rates").Logger(),
	}
}

// HandleGetRates handles GET /api/properties/{id}/rates
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetRates(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to get rates", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleUpdateRates handles PUT /api/properties/{id}/rates
// Absent fields are kept, null clears an override.
func (h *Handler) HandleUpdateRates(w http.ResponseWriter, r *http.Request) {
	var patch domain.RatePatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	view, err := h.service.UpdateRates(chi.URLParam(r, "id"), patch)
	if err != nil {
		utils.WriteError(w, err, "Failed to update rates", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleApplyPreset handles POST /api/properties/{id}/rates/preset
func (h *Handler) HandleApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req rates.ApplyPresetRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	view, err := h.service.ApplyPreset(chi.URLParam(r, "id"), req.Region)
	if err != nil {
		utils.WriteError(w, err, "Failed to apply preset", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleListPresets handles GET /api/rates/presets
func (h *Handler) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"presets":        rates.Presets(),
		"system_default": rates.SystemDefault(),
	}, h.log)
}
