package domain

import "time"

// CashInputs are the user-entered figures of a cash purchase.
type CashInputs struct {
	PurchasePrice  *float64 `json:"purchase_price" msgpack:"purchase_price"`
	RenovationCost *float64 `json:"renovation_cost" msgpack:"renovation_cost"`
	OtherCosts     *float64 `json:"other_costs" msgpack:"other_costs"`
	SalePrice      *float64 `json:"sale_price" msgpack:"sale_price"`
}

// HasAnyValue reports whether at least one field is set.
func (c CashInputs) HasAnyValue() bool {
	return c.PurchasePrice != nil || c.RenovationCost != nil || c.OtherCosts != nil || c.SalePrice != nil
}

// IsPartial reports whether purchase or sale price is missing.
func (c CashInputs) IsPartial() bool {
	return c.PurchasePrice == nil || c.SalePrice == nil
}

// CashOutputs are derived from CashInputs and a RateSet; they are never stored on their own.
type CashOutputs struct {
	ItbiValue       float64 `json:"itbi_value" msgpack:"itbi_value"`
	RegistryValue   float64 `json:"registry_value" msgpack:"registry_value"`
	AcquisitionCost float64 `json:"acquisition_cost" msgpack:"acquisition_cost"`
	InvestmentTotal float64 `json:"investment_total" msgpack:"investment_total"`
	BrokerFee       float64 `json:"broker_fee" msgpack:"broker_fee"`
	GrossProfit     float64 `json:"gross_profit" msgpack:"gross_profit"`
	PJTaxValue      float64 `json:"pj_tax_value" msgpack:"pj_tax_value"`
	NetProfit       float64 `json:"net_profit" msgpack:"net_profit"`
	ROI             float64 `json:"roi" msgpack:"roi"`
	IsPartial       bool    `json:"is_partial" msgpack:"is_partial"`
}

// CashPatch is a partial update of CashInputs.
type CashPatch struct {
	PurchasePrice  Field[float64] `json:"purchase_price"`
	RenovationCost Field[float64] `json:"renovation_cost"`
	OtherCosts     Field[float64] `json:"other_costs"`
	SalePrice      Field[float64] `json:"sale_price"`
}

// Apply returns a copy of current with the patch applied.
func (p CashPatch) Apply(current CashInputs) CashInputs {
	current.PurchasePrice = p.PurchasePrice.Merge(current.PurchasePrice)
	current.RenovationCost = p.RenovationCost.Merge(current.RenovationCost)
	current.OtherCosts = p.OtherCosts.Merge(current.OtherCosts)
	current.SalePrice = p.SalePrice.Merge(current.SalePrice)
	return current
}

// FullCashPatch sets every field to the given inputs, nulls included.
func FullCashPatch(in CashInputs) CashPatch {
	return CashPatch{
		PurchasePrice:  Field[float64]{Set: true, Value: in.PurchasePrice},
		RenovationCost: Field[float64]{Set: true, Value: in.RenovationCost},
		OtherCosts:     Field[float64]{Set: true, Value: in.OtherCosts},
		SalePrice:      Field[float64]{Set: true, Value: in.SalePrice},
	}
}

// ValidateCashInputs rejects negative money values.
func ValidateCashInputs(in CashInputs) error {
	var v ValidationError
	v.checkNonNegative("purchase_price", in.PurchasePrice)
	v.checkNonNegative("renovation_cost", in.RenovationCost)
	v.checkNonNegative("other_costs", in.OtherCosts)
	v.checkNonNegative("sale_price", in.SalePrice)
	return v.OrNil()
}

// FinancingInputs are the user-entered terms of a financed purchase.
type FinancingInputs struct {
	PurchasePrice      *float64 `json:"purchase_price" msgpack:"purchase_price"`
	SalePrice          *float64 `json:"sale_price" msgpack:"sale_price"`
	DownPaymentPercent *float64 `json:"down_payment_percent" msgpack:"down_payment_percent"`
	TermMonths         *int     `json:"term_months" msgpack:"term_months"`
	CET                *float64 `json:"cet" msgpack:"cet"`
	InterestRate       *float64 `json:"interest_rate" msgpack:"interest_rate"`
	Insurance          *float64 `json:"insurance" msgpack:"insurance"`
	AppraisalFee       *float64 `json:"appraisal_fee" msgpack:"appraisal_fee"`
	OtherFees          *float64 `json:"other_fees" msgpack:"other_fees"`
	RemainingDebt      *float64 `json:"remaining_debt" msgpack:"remaining_debt"`
}

// HasAnyValue reports whether at least one field is set.
func (f FinancingInputs) HasAnyValue() bool {
	return f.PurchasePrice != nil || f.SalePrice != nil || f.DownPaymentPercent != nil ||
		f.TermMonths != nil || f.CET != nil || f.InterestRate != nil || f.Insurance != nil ||
		f.AppraisalFee != nil || f.OtherFees != nil || f.RemainingDebt != nil
}

// IsPartial reports whether the terms needed for a meaningful result are missing.
// Either the nominal interest rate or the CET is enough.
func (f FinancingInputs) IsPartial() bool {
	return f.PurchasePrice == nil ||
		f.SalePrice == nil ||
		f.DownPaymentPercent == nil ||
		f.TermMonths == nil ||
		(f.InterestRate == nil && f.CET == nil)
}

// FinancingPayment is an installment actually paid, not a scheduled one.
type FinancingPayment struct {
	ID         string    `json:"id" msgpack:"id"`
	MonthIndex int       `json:"month_index" msgpack:"month_index"`
	Amount     float64   `json:"amount" msgpack:"amount"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at"`
}

// NewPayment is the body of a payment creation request.
type NewPayment struct {
	MonthIndex int     `json:"month_index"`
	Amount     float64 `json:"amount"`
}

// Validate checks month_index is positive and amount finite and non-negative.
func (p NewPayment) Validate() error {
	var v ValidationError
	if p.MonthIndex <= 0 {
		v.Add("month_index", "must be a positive integer")
	}
	v.checkNonNegative("amount", &p.Amount)
	return v.OrNil()
}

// FinancingOutputs are derived from FinancingInputs, payments and a RateSet.
type FinancingOutputs struct {
	DownPaymentValue     float64 `json:"down_payment_value" msgpack:"down_payment_value"`
	FinancedValue        float64 `json:"financed_value" msgpack:"financed_value"`
	PaymentsTotal        float64 `json:"payments_total" msgpack:"payments_total"`
	BankFeesTotal        float64 `json:"bank_fees_total" msgpack:"bank_fees_total"`
	ItbiValue            float64 `json:"itbi_value" msgpack:"itbi_value"`
	RegistryValue        float64 `json:"registry_value" msgpack:"registry_value"`
	AcquisitionFees      float64 `json:"acquisition_fees" msgpack:"acquisition_fees"`
	TotalPaid            float64 `json:"total_paid" msgpack:"total_paid"`
	InvestmentTotal      float64 `json:"investment_total" msgpack:"investment_total"`
	BrokerFee            float64 `json:"broker_fee" msgpack:"broker_fee"`
	GrossProfit          float64 `json:"gross_profit" msgpack:"gross_profit"`
	PJTaxValue           float64 `json:"pj_tax_value" msgpack:"pj_tax_value"`
	NetProfit            float64 `json:"net_profit" msgpack:"net_profit"`
	ROI                  float64 `json:"roi" msgpack:"roi"`
	InterestPaidEstimate float64 `json:"interest_paid_estimate" msgpack:"interest_paid_estimate"`
	IsPartial            bool    `json:"is_partial" msgpack:"is_partial"`
}

// FinancingPatch is a partial update of FinancingInputs.
type FinancingPatch struct {
	PurchasePrice      Field[float64] `json:"purchase_price"`
	SalePrice          Field[float64] `json:"sale_price"`
	DownPaymentPercent Field[float64] `json:"down_payment_percent"`
	TermMonths         Field[int]     `json:"term_months"`
	CET                Field[float64] `json:"cet"`
	InterestRate       Field[float64] `json:"interest_rate"`
	Insurance          Field[float64] `json:"insurance"`
	AppraisalFee       Field[float64] `json:"appraisal_fee"`
	OtherFees          Field[float64] `json:"other_fees"`
	RemainingDebt      Field[float64] `json:"remaining_debt"`
}

// Apply returns a copy of current with the patch applied.
func (p FinancingPatch) Apply(current FinancingInputs) FinancingInputs {
	current.PurchasePrice = p.PurchasePrice.Merge(current.PurchasePrice)
	current.SalePrice = p.SalePrice.Merge(current.SalePrice)
	current.DownPaymentPercent = p.DownPaymentPercent.Merge(current.DownPaymentPercent)
	current.TermMonths = p.TermMonths.Merge(current.TermMonths)
	current.CET = p.CET.Merge(current.CET)
	current.InterestRate = p.InterestRate.Merge(current.InterestRate)
	current.Insurance = p.Insurance.Merge(current.Insurance)
	current.AppraisalFee = p.AppraisalFee.Merge(current.AppraisalFee)
	current.OtherFees = p.OtherFees.Merge(current.OtherFees)
	current.RemainingDebt = p.RemainingDebt.Merge(current.RemainingDebt)
	return current
}

// FullFinancingPatch sets every field to the given inputs, nulls included.
func FullFinancingPatch(in FinancingInputs) FinancingPatch {
	return FinancingPatch{
		PurchasePrice:      Field[float64]{Set: true, Value: in.PurchasePrice},
		SalePrice:          Field[float64]{Set: true, Value: in.SalePrice},
		DownPaymentPercent: Field[float64]{Set: true, Value: in.DownPaymentPercent},
		TermMonths:         Field[int]{Set: true, Value: in.TermMonths},
		CET:                Field[float64]{Set: true, Value: in.CET},
		InterestRate:       Field[float64]{Set: true, Value: in.InterestRate},
		Insurance:          Field[float64]{Set: true, Value: in.Insurance},
		AppraisalFee:       Field[float64]{Set: true, Value: in.AppraisalFee},
		OtherFees:          Field[float64]{Set: true, Value: in.OtherFees},
		RemainingDebt:      Field[float64]{Set: true, Value: in.RemainingDebt},
	}
}

// ValidateFinancingInputs rejects negative money, a down payment outside [0,1]
// and a non-positive term.
func ValidateFinancingInputs(in FinancingInputs) error {
	var v ValidationError
	v.checkNonNegative("purchase_price", in.PurchasePrice)
	v.checkNonNegative("sale_price", in.SalePrice)
	v.checkFraction("down_payment_percent", in.DownPaymentPercent)
	if in.TermMonths != nil && *in.TermMonths <= 0 {
		v.Add("term_months", "must be a positive integer")
	}
	v.checkNonNegative("cet", in.CET)
	v.checkNonNegative("interest_rate", in.InterestRate)
	v.checkNonNegative("insurance", in.Insurance)
	v.checkNonNegative("appraisal_fee", in.AppraisalFee)
	v.checkNonNegative("other_fees", in.OtherFees)
	v.checkNonNegative("remaining_debt", in.RemainingDebt)
	return v.OrNil()
}
