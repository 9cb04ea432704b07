// Package domain holds the flip analysis model shared by every layer:
// properties, rate sets, analysis inputs and outputs, patches and errors.
package domain

import "time"

// Property is the engine's view of a property owned by the surrounding application.
type Property struct {
	ID             string    `json:"id"`
	WorkspaceID    string    `json:"workspace_id"`
	StatusPipeline string    `json:"status_pipeline"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AnalysisKind distinguishes the two financing modes.
type AnalysisKind string

const (
	// KindCash is an all-cash purchase.
	KindCash AnalysisKind = "cash"
	// KindFinancing is a financed purchase.
	KindFinancing AnalysisKind = "financing"
)

// ParseAnalysisKind maps a URL segment to an AnalysisKind.
func ParseAnalysisKind(s string) (AnalysisKind, bool) {
	switch AnalysisKind(s) {
	case KindCash, KindFinancing:
		return AnalysisKind(s), true
	}
	return "", false
}
