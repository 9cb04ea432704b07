package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// RegisterRoutes registers snapshot routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	const cash = "/properties/{id}/analysis/cash"
	r.Post(cash+"/snapshot", h.HandleCapture(domain.KindCash))
	r.Get(cash+"/snapshots", h.HandleListCash)
	r.Get(cash+"/snapshots/summary", h.HandleSummary(domain.KindCash))
	r.Get(cash+"/snapshots/{snapshotId}", h.HandleGetCash)
	r.Delete(cash+"/snapshots/{snapshotId}", h.HandleDelete(domain.KindCash))

	const financing = "/properties/{id}/analysis/financing"
	r.Post(financing+"/snapshot", h.HandleCapture(domain.KindFinancing))
	r.Get(financing+"/snapshots", h.HandleListFinancing)
	r.Get(financing+"/snapshots/summary", h.HandleSummary(domain.KindFinancing))
	r.Get(financing+"/snapshots/{snapshotId}", h.HandleGetFinancing)
	r.Delete(financing+"/snapshots/{snapshotId}", h.HandleDelete(domain.KindFinancing))

	r.Post("/snapshots/verify", h.HandleVerify)
}
