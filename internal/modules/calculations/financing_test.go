package calculations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	testutil "github.com/widia-io/widia-flip-sub001/internal/testing"
)

func TestComputeFinancing_Scenario(t *testing.T) {
	got := ComputeFinancing(testutil.ScenarioFinancingInputs(), testutil.ScenarioPayments(), testutil.ScenarioRates)

	assert.Equal(t, 100000.0, got.DownPaymentValue)
	assert.Equal(t, 400000.0, got.FinancedValue)
	assert.Equal(t, 60000.0, got.PaymentsTotal)
	assert.Equal(t, 7000.0, got.BankFeesTotal)
	assert.Equal(t, 15000.0, got.ItbiValue)
	assert.Equal(t, 5000.0, got.RegistryValue)
	assert.Equal(t, 20000.0, got.AcquisitionFees)
	assert.Equal(t, 187000.0, got.TotalPaid)
	assert.Equal(t, 537000.0, got.InvestmentTotal)
	assert.Equal(t, 42000.0, got.BrokerFee)
	assert.Equal(t, 121000.0, got.GrossProfit)
	assert.Equal(t, 18150.0, got.PJTaxValue)
	assert.Equal(t, 102850.0, got.NetProfit)
	assert.InDelta(t, 55.0, got.ROI, 0.01)
	assert.Equal(t, 10000.0, got.InterestPaidEstimate)
	assert.False(t, got.IsPartial)
}

func TestComputeFinancing_ROIUsesTotalPaid(t *testing.T) {
	got := ComputeFinancing(testutil.ScenarioFinancingInputs(), testutil.ScenarioPayments(), testutil.ScenarioRates)
	assert.InDelta(t, got.NetProfit/got.TotalPaid*100, got.ROI, 1e-9)
	assert.NotEqual(t, got.NetProfit/got.InvestmentTotal*100, got.ROI)
}

func TestComputeFinancing_InterestFlooredAtZero(t *testing.T) {
	in := testutil.ScenarioFinancingInputs()
	in.RemainingDebt = domain.Float(300000) // 100000 amortized, only 60000 paid

	got := ComputeFinancing(in, testutil.ScenarioPayments(), testutil.ScenarioRates)
	assert.Equal(t, 0.0, got.InterestPaidEstimate)
}

func TestComputeFinancing_PaymentOrderIrrelevant(t *testing.T) {
	payments := testutil.ScenarioPayments()
	reversed := []domain.FinancingPayment{payments[2], payments[1], payments[0]}

	a := ComputeFinancing(testutil.ScenarioFinancingInputs(), payments, testutil.ScenarioRates)
	b := ComputeFinancing(testutil.ScenarioFinancingInputs(), reversed, testutil.ScenarioRates)
	assert.Equal(t, a, b)
}

func TestComputeFinancing_NoPayments(t *testing.T) {
	got := ComputeFinancing(testutil.ScenarioFinancingInputs(), nil, testutil.ScenarioRates)
	assert.Equal(t, 0.0, got.PaymentsTotal)
	assert.Equal(t, 127000.0, got.TotalPaid)
}

func TestIsFinancingPartial(t *testing.T) {
	full := testutil.ScenarioFinancingInputs()
	assert.False(t, IsFinancingPartial(full))

	tests := []struct {
		name   string
		mutate func(*domain.FinancingInputs)
		want   bool
	}{
		{"missing purchase price", func(in *domain.FinancingInputs) { in.PurchasePrice = nil }, true},
		{"missing sale price", func(in *domain.FinancingInputs) { in.SalePrice = nil }, true},
		{"missing down payment", func(in *domain.FinancingInputs) { in.DownPaymentPercent = nil }, true},
		{"missing term", func(in *domain.FinancingInputs) { in.TermMonths = nil }, true},
		{"missing interest and cet", func(in *domain.FinancingInputs) { in.InterestRate = nil; in.CET = nil }, true},
		{"cet instead of interest", func(in *domain.FinancingInputs) { in.InterestRate = nil; in.CET = domain.Float(0.12) }, false},
		{"missing fees are optional", func(in *domain.FinancingInputs) { in.Insurance = nil; in.OtherFees = nil }, false},
		{"missing remaining debt is optional", func(in *domain.FinancingInputs) { in.RemainingDebt = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testutil.ScenarioFinancingInputs()
			tt.mutate(&in)
			assert.Equal(t, tt.want, IsFinancingPartial(in))
			assert.Equal(t, tt.want, ComputeFinancing(in, nil, testutil.ScenarioRates).IsPartial)
		})
	}
}
