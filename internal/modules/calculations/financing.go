package calculations

import (
	"github.com/shopspring/decimal"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// ComputeFinancing derives the metrics of a financed purchase from its terms
// and the installments actually paid so far.
//
// ROI is measured against total_paid: the remaining debt is settled out of the
// sale proceeds, so only what was paid during the hold is capital at risk.
// Interest is estimated as whatever was paid beyond the principal amortized
// (financed value minus remaining debt), floored at zero.
func ComputeFinancing(in domain.FinancingInputs, payments []domain.FinancingPayment, rates domain.RateSet) domain.FinancingOutputs {
	purchase := amount(in.PurchasePrice)
	sale := amount(in.SalePrice)
	remainingDebt := amount(in.RemainingDebt)

	downPayment := purchase.Mul(amount(in.DownPaymentPercent))
	financed := purchase.Sub(downPayment)

	itbi := purchase.Mul(rate(rates.ItbiRate))
	registry := purchase.Mul(rate(rates.RegistryRate))
	acquisitionFees := itbi.Add(registry)

	bankFees := amount(in.Insurance).Add(amount(in.AppraisalFee)).Add(amount(in.OtherFees))
	paymentsTotal := SumPayments(payments)

	totalPaid := downPayment.Add(paymentsTotal).Add(bankFees).Add(acquisitionFees)
	investment := totalPaid.Add(remainingDebt)

	broker := sale.Mul(rate(rates.BrokerRate))
	gross := sale.Sub(broker).Sub(investment)
	tax := positivePart(gross).Mul(rate(rates.PJTaxRate))
	net := gross.Sub(tax)

	interest := positivePart(paymentsTotal.Sub(financed.Sub(remainingDebt)))

	return domain.FinancingOutputs{
		DownPaymentValue:     out(downPayment),
		FinancedValue:        out(financed),
		PaymentsTotal:        out(paymentsTotal),
		BankFeesTotal:        out(bankFees),
		ItbiValue:            out(itbi),
		RegistryValue:        out(registry),
		AcquisitionFees:      out(acquisitionFees),
		TotalPaid:            out(totalPaid),
		InvestmentTotal:      out(investment),
		BrokerFee:            out(broker),
		GrossProfit:          out(gross),
		PJTaxValue:           out(tax),
		NetProfit:            out(net),
		ROI:                  out(percentOf(net, totalPaid)),
		InterestPaidEstimate: out(interest),
		IsPartial:            IsFinancingPartial(in),
	}
}

// IsFinancingPartial reports whether the terms needed for a meaningful result are missing.
func IsFinancingPartial(in domain.FinancingInputs) bool {
	return in.IsPartial()
}

// SumPayments adds up payment amounts exactly.
func SumPayments(payments []domain.FinancingPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	return total
}
