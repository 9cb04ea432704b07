// Package analysis owns the live, editable analysis state of a property:
// cash inputs, the financing plan and its recorded payments.
package analysis

import (
	"time"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// CashAnalysis is the live cash analysis of a property.
// Outputs are recomputed on every read and never stored.
type CashAnalysis struct {
	PropertyID     string             `json:"property_id"`
	Inputs         domain.CashInputs  `json:"inputs"`
	Outputs        domain.CashOutputs `json:"outputs"`
	EffectiveRates domain.RateSet     `json:"effective_rates"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// FinancingAnalysis is the live financing plan of a property.
type FinancingAnalysis struct {
	PropertyID     string                    `json:"property_id"`
	PlanID         string                    `json:"plan_id"`
	Inputs         domain.FinancingInputs    `json:"inputs"`
	Payments       []domain.FinancingPayment `json:"payments"`
	Outputs        domain.FinancingOutputs   `json:"outputs"`
	EffectiveRates domain.RateSet            `json:"effective_rates"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

type planRow struct {
	ID        string
	Inputs    domain.FinancingInputs
	UpdatedAt time.Time
}
