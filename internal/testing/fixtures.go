package testing

import (
	"testing"
	"time"

	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// ScenarioRates are the rates used by the reference scenarios.
var ScenarioRates = domain.RateSet{
	ItbiRate:     0.03,
	RegistryRate: 0.01,
	BrokerRate:   0.06,
	PJTaxRate:    0.15,
}

// ScenarioCashInputs returns the reference cash scenario (net profit 66300).
func ScenarioCashInputs() domain.CashInputs {
	return domain.CashInputs{
		PurchasePrice:  domain.Float(500000),
		RenovationCost: domain.Float(50000),
		OtherCosts:     domain.Float(10000),
		SalePrice:      domain.Float(700000),
	}
}

// ScenarioFinancingInputs returns the reference financing scenario (net profit 102850
// once payments summing to 60000 are recorded).
func ScenarioFinancingInputs() domain.FinancingInputs {
	return domain.FinancingInputs{
		PurchasePrice:      domain.Float(500000),
		SalePrice:          domain.Float(700000),
		DownPaymentPercent: domain.Float(0.2),
		TermMonths:         domain.Int(360),
		InterestRate:       domain.Float(0.0099),
		Insurance:          domain.Float(5000),
		AppraisalFee:       domain.Float(1500),
		OtherFees:          domain.Float(500),
		RemainingDebt:      domain.Float(350000),
	}
}

// ScenarioPayments returns three irregular payments summing to 60000.
func ScenarioPayments() []domain.FinancingPayment {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.FinancingPayment{
		{ID: "pay-1", MonthIndex: 1, Amount: 20000, CreatedAt: created},
		{ID: "pay-2", MonthIndex: 2, Amount: 25000, CreatedAt: created},
		{ID: "pay-3", MonthIndex: 5, Amount: 15000, CreatedAt: created},
	}
}

// SeedWorkspace inserts workspace default rates directly.
func SeedWorkspace(t *testing.T, db *database.DB, workspaceID string, rates domain.RateSet) {
	t.Helper()
	_, err := db.Conn().Exec(`INSERT INTO workspace_settings
		(workspace_id, itbi_rate, registry_rate, broker_rate, pj_tax_rate, region, updated_at)
		VALUES (?, ?, ?, ?, ?, '', ?)`,
		workspaceID, rates.ItbiRate, rates.RegistryRate, rates.BrokerRate, rates.PJTaxRate, time.Now().Unix())
	if err != nil {
		t.Fatalf("Failed to seed workspace %s: %v", workspaceID, err)
	}
}

// SeedProperty inserts a property row directly.
func SeedProperty(t *testing.T, db *database.DB, propertyID, workspaceID, status string) {
	t.Helper()
	_, err := db.Conn().Exec(`INSERT INTO properties (id, workspace_id, status_pipeline, updated_at) VALUES (?, ?, ?, ?)`,
		propertyID, workspaceID, status, time.Now().Unix())
	if err != nil {
		t.Fatalf("Failed to seed property %s: %v", propertyID, err)
	}
}
