// Package handlers provides HTTP handlers for live analysis state.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Handler provides HTTP handlers for analysis endpoints
type Handler struct {
	service *analysis.Service
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleGetCash handles GET /api/properties/{id}/analysis/cash
func (h *Handler) HandleGetCash(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetCash(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to get cash analysis", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleUpdateCash handles PUT /api/properties/{id}/analysis/cash
// Only fields present in the body are changed; null clears a field.
func (h *Handler) HandleUpdateCash(w http.ResponseWriter, r *http.Request) {
	var patch domain.CashPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	view, err := h.service.UpdateCash(chi.URLParam(r, "id"), patch)
	if err != nil {
		utils.WriteError(w, err, "Failed to save cash analysis", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleGetFinancing handles GET /api/properties/{id}/analysis/financing
func (h *Handler) HandleGetFinancing(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetFinancing(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to get financing analysis", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleUpdateFinancing handles PUT /api/properties/{id}/analysis/financing
func (h *Handler) HandleUpdateFinancing(w http.ResponseWriter, r *http.Request) {
	var patch domain.FinancingPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	view, err := h.service.UpdateFinancing(chi.URLParam(r, "id"), patch)
	if err != nil {
		utils.WriteError(w, err, "Failed to save financing analysis", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}

// HandleAddPayment handles POST /api/properties/{id}/analysis/financing/{planId}/payments
func (h *Handler) HandleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.NewPayment
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err, "Invalid request body", h.log)
		return
	}

	view, payment, err := h.service.AddPayment(chi.URLParam(r, "id"), chi.URLParam(r, "planId"), req)
	if err != nil {
		utils.WriteError(w, err, "Failed to record payment", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"payment":   payment,
		"financing": view,
	}, h.log)
}

// HandleDeletePayment handles DELETE /api/properties/{id}/analysis/financing/{planId}/payments/{paymentId}
func (h *Handler) HandleDeletePayment(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.DeletePayment(chi.URLParam(r, "id"), chi.URLParam(r, "planId"), chi.URLParam(r, "paymentId"))
	if err != nil {
		utils.WriteError(w, err, "Failed to delete payment", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view, h.log)
}
