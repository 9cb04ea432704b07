// Package handlers provides HTTP handlers for analysis snapshots.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Handler provides HTTP handlers for snapshot endpoints
type Handler struct {
	service *snapshots.Service
	log     zerolog.Logger
}

// NewHandler creates a new snapshot handler
func NewHandler(service *snapshots.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "snapshots").Logger(),
	}
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

// HandleCapture handles POST /api/properties/{id}/analysis/{kind}/snapshot
func (h *Handler) HandleCapture(kind domain.AnalysisKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.service.Capture(chi.URLParam(r, "id"), kind)
		if err != nil {
			utils.WriteError(w, err, "Failed to capture snapshot", h.log)
			return
		}
		utils.WriteJSON(w, http.StatusCreated, result, h.log)
	}
}

// HandleListCash handles GET /api/properties/{id}/analysis/cash/snapshots
func (h *Handler) HandleListCash(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCash(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to list snapshots", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, listResponse[snapshots.CashSnapshot]{Items: items}, h.log)
}

// HandleListFinancing handles GET /api/properties/{id}/analysis/financing/snapshots
func (h *Handler) HandleListFinancing(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListFinancing(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err, "Failed to list snapshots", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, listResponse[snapshots.FinancingSnapshot]{Items: items}, h.log)
}

// HandleGetCash handles GET /api/properties/{id}/analysis/cash/snapshots/{snapshotId}
func (h *Handler) HandleGetCash(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetCash(chi.URLParam(r, "snapshotId"))
	if err == nil && snap.PropertyID != chi.URLParam(r, "id") {
		err = domain.ErrNotFound
	}
	if err != nil {
		utils.WriteError(w, err, "Failed to get snapshot", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap, h.log)
}

// HandleGetFinancing handles GET /api/properties/{id}/analysis/financing/snapshots/{snapshotId}
func (h *Handler) HandleGetFinancing(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetFinancing(chi.URLParam(r, "snapshotId"))
	if err == nil && snap.PropertyID != chi.URLParam(r, "id") {
		err = domain.ErrNotFound
	}
	if err != nil {
		utils.WriteError(w, err, "Failed to get snapshot", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, snap, h.log)
}

// HandleSummary handles GET /api/properties/{id}/analysis/{kind}/snapshots/summary
func (h *Handler) HandleSummary(kind domain.AnalysisKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.service.Summary(chi.URLParam(r, "id"), kind)
		if err != nil {
			utils.WriteError(w, err, "Failed to summarize snapshots", h.log)
			return
		}
		utils.WriteJSON(w, http.StatusOK, summary, h.log)
	}
}

// HandleDelete handles DELETE /api/properties/{id}/analysis/{kind}/snapshots/{snapshotId}
func (h *Handler) HandleDelete(kind domain.AnalysisKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.service.Delete(chi.URLParam(r, "id"), kind, chi.URLParam(r, "snapshotId"))
		if err != nil {
			utils.WriteError(w, err, "Failed to delete snapshot", h.log)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleVerify handles POST /api/snapshots/verify
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.VerifyIntegrity()
	if err != nil {
		utils.WriteError(w, err, "Failed to verify snapshots", h.log)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report, h.log)
}
