package domain

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCashInputs(t *testing.T) {
	assert.NoError(t, ValidateCashInputs(CashInputs{}))
	assert.NoError(t, ValidateCashInputs(CashInputs{PurchasePrice: Float(0)}))

	err := ValidateCashInputs(CashInputs{PurchasePrice: Float(-1), SalePrice: Float(math.Inf(1))})
	v, ok := AsValidationError(err)
	require.True(t, ok)
	require.Len(t, v.Errors, 2)
	assert.Equal(t, "purchase_price", v.Errors[0].Field)
	assert.Equal(t, "sale_price", v.Errors[1].Field)
}

func TestValidateFinancingInputs(t *testing.T) {
	tests := []struct {
		name  string
		in    FinancingInputs
		field string
	}{
		{"down payment above one", FinancingInputs{DownPaymentPercent: Float(1.2)}, "down_payment_percent"},
		{"down payment negative", FinancingInputs{DownPaymentPercent: Float(-0.1)}, "down_payment_percent"},
		{"negative purchase price", FinancingInputs{PurchasePrice: Float(-5)}, "purchase_price"},
		{"zero term", FinancingInputs{TermMonths: Int(0)}, "term_months"},
		{"negative remaining debt", FinancingInputs{RemainingDebt: Float(-1)}, "remaining_debt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := AsValidationError(ValidateFinancingInputs(tt.in))
			require.True(t, ok)
			require.Len(t, v.Errors, 1)
			assert.Equal(t, tt.field, v.Errors[0].Field)
		})
	}

	assert.NoError(t, ValidateFinancingInputs(FinancingInputs{DownPaymentPercent: Float(1), TermMonths: Int(12)}))
}

func TestValidateRates(t *testing.T) {
	assert.NoError(t, ValidateRates(PartialRateSet{}))
	assert.NoError(t, ValidateRates(PartialRateSet{ItbiRate: Float(0), PJTaxRate: Float(1)}))

	v, ok := AsValidationError(ValidateRates(PartialRateSet{BrokerRate: Float(6)}))
	require.True(t, ok)
	assert.Equal(t, "broker_rate", v.Errors[0].Field)
}

func TestNewPayment_Validate(t *testing.T) {
	assert.NoError(t, NewPayment{MonthIndex: 3, Amount: 0}.Validate())

	v, ok := AsValidationError(NewPayment{MonthIndex: 0, Amount: -1}.Validate())
	require.True(t, ok)
	assert.Len(t, v.Errors, 2)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v, ok := AsValidationError(NewPayment{MonthIndex: 1, Amount: amount}.Validate())
		require.True(t, ok, "amount %v", amount)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, "amount", v.Errors[0].Field)
		assert.Equal(t, "must be a finite number", v.Errors[0].Message)
	}
}

func TestInputs_IsPartial(t *testing.T) {
	assert.True(t, CashInputs{}.IsPartial())
	assert.True(t, CashInputs{PurchasePrice: Float(1)}.IsPartial())
	assert.False(t, CashInputs{PurchasePrice: Float(1), SalePrice: Float(2)}.IsPartial())

	financing := FinancingInputs{
		PurchasePrice:      Float(500000),
		SalePrice:          Float(700000),
		DownPaymentPercent: Float(0.2),
		TermMonths:         Int(360),
		CET:                Float(0.012),
	}
	assert.False(t, financing.IsPartial())
	financing.CET = nil
	assert.True(t, financing.IsPartial())
}

func TestAsValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("failed to update: %w", NewValidationError("sale_price", "must not be negative"))
	v, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "sale_price", v.Errors[0].Field)
	assert.Contains(t, err.Error(), "sale_price: must not be negative")

	_, ok = AsValidationError(ErrNotFound)
	assert.False(t, ok)
}
