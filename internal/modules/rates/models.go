package rates

import "github.com/widia-io/widia-flip-sub001/internal/domain"

// View is the rates payload of a property.
type View struct {
	Custom         domain.PartialRateSet `json:"custom"`
	WorkspaceRates domain.RateSet        `json:"workspace_rates"`
	Effective      domain.RateSet        `json:"effective"`
}

// ApplyPresetRequest selects a regional preset.
type ApplyPresetRequest struct {
	Region string `json:"region"`
}
