package settings

import (
	"time"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// WorkspaceSettings holds the workspace-wide default rates.
// Rates is always fully populated once a workspace has been read.
type WorkspaceSettings struct {
	WorkspaceID string         `json:"workspace_id"`
	Rates       domain.RateSet `json:"rates"`
	Region      string         `json:"region"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UpdateRequest is the body of PUT /api/workspaces/{id}/settings.
// Preset, when present, is applied first; the individual rates then override it.
type UpdateRequest struct {
	Preset       *string               `json:"preset"`
	ItbiRate     domain.Field[float64] `json:"itbi_rate"`
	RegistryRate domain.Field[float64] `json:"registry_rate"`
	BrokerRate   domain.Field[float64] `json:"broker_rate"`
	PJTaxRate    domain.Field[float64] `json:"pj_tax_rate"`
}

// validateNoNulls rejects attempts to clear a workspace rate.
func (u UpdateRequest) validateNoNulls() error {
	var v domain.ValidationError
	for _, f := range []struct {
		name  string
		field domain.Field[float64]
	}{
		{"itbi_rate", u.ItbiRate},
		{"registry_rate", u.RegistryRate},
		{"broker_rate", u.BrokerRate},
		{"pj_tax_rate", u.PJTaxRate},
	} {
		if f.field.Set && f.field.Value == nil {
			v.Add(f.name, "workspace default rates cannot be cleared")
		}
	}
	return v.OrNil()
}

func (u UpdateRequest) ratePatch() domain.RatePatch {
	return domain.RatePatch{
		ItbiRate:     u.ItbiRate,
		RegistryRate: u.RegistryRate,
		BrokerRate:   u.BrokerRate,
		PJTaxRate:    u.PJTaxRate,
	}
}
