package calculations

import "github.com/widia-io/widia-flip-sub001/internal/domain"

// ComputeCash derives the metrics of an all-cash purchase.
//
// Missing figures count as zero so a live estimate is always available; the
// result is partial while purchase or sale price is missing. Renovation and
// other costs are optional and never make the result partial.
func ComputeCash(in domain.CashInputs, rates domain.RateSet) domain.CashOutputs {
	purchase := amount(in.PurchasePrice)
	sale := amount(in.SalePrice)

	itbi := purchase.Mul(rate(rates.ItbiRate))
	registry := purchase.Mul(rate(rates.RegistryRate))
	acquisition := itbi.Add(registry)
	investment := purchase.Add(amount(in.RenovationCost)).Add(amount(in.OtherCosts)).Add(acquisition)

	broker := sale.Mul(rate(rates.BrokerRate))
	gross := sale.Sub(broker).Sub(investment)
	tax := positivePart(gross).Mul(rate(rates.PJTaxRate))
	net := gross.Sub(tax)

	return domain.CashOutputs{
		ItbiValue:       out(itbi),
		RegistryValue:   out(registry),
		AcquisitionCost: out(acquisition),
		InvestmentTotal: out(investment),
		BrokerFee:       out(broker),
		GrossProfit:     out(gross),
		PJTaxValue:      out(tax),
		NetProfit:       out(net),
		ROI:             out(percentOf(net, investment)),
		IsPartial:       in.IsPartial(),
	}
}
