package domain

// RateSet is a fully resolved set of fee and tax rates, each a fraction in [0,1].
type RateSet struct {
	ItbiRate     float64 `json:"itbi_rate"`
	RegistryRate float64 `json:"registry_rate"`
	BrokerRate   float64 `json:"broker_rate"`
	PJTaxRate    float64 `json:"pj_tax_rate"`
}

// PartialRateSet holds independently nullable rates.
// A nil field means "inherit from the next level".
type PartialRateSet struct {
	ItbiRate     *float64 `json:"itbi_rate"`
	RegistryRate *float64 `json:"registry_rate"`
	BrokerRate   *float64 `json:"broker_rate"`
	PJTaxRate    *float64 `json:"pj_tax_rate"`
}

// Partial lifts a full rate set into a partial one with every field set.
func (r RateSet) Partial() PartialRateSet {
	return PartialRateSet{
		ItbiRate:     Float(r.ItbiRate),
		RegistryRate: Float(r.RegistryRate),
		BrokerRate:   Float(r.BrokerRate),
		PJTaxRate:    Float(r.PJTaxRate),
	}
}

// IsEmpty reports whether no field is customized.
func (p PartialRateSet) IsEmpty() bool {
	return p.ItbiRate == nil && p.RegistryRate == nil && p.BrokerRate == nil && p.PJTaxRate == nil
}

// IsComplete reports whether every field is set.
func (p PartialRateSet) IsComplete() bool {
	return p.ItbiRate != nil && p.RegistryRate != nil && p.BrokerRate != nil && p.PJTaxRate != nil
}

// RatePatch is a tri-state update of a PartialRateSet.
type RatePatch struct {
	ItbiRate     Field[float64] `json:"itbi_rate"`
	RegistryRate Field[float64] `json:"registry_rate"`
	BrokerRate   Field[float64] `json:"broker_rate"`
	PJTaxRate    Field[float64] `json:"pj_tax_rate"`
}

// Apply returns a copy of current with the patch applied.
func (p RatePatch) Apply(current PartialRateSet) PartialRateSet {
	current.ItbiRate = p.ItbiRate.Merge(current.ItbiRate)
	current.RegistryRate = p.RegistryRate.Merge(current.RegistryRate)
	current.BrokerRate = p.BrokerRate.Merge(current.BrokerRate)
	current.PJTaxRate = p.PJTaxRate.Merge(current.PJTaxRate)
	return current
}

// ValidateRates checks every non-nil rate lies in [0,1].
func ValidateRates(r PartialRateSet) error {
	var v ValidationError
	v.checkFraction("itbi_rate", r.ItbiRate)
	v.checkFraction("registry_rate", r.RegistryRate)
	v.checkFraction("broker_rate", r.BrokerRate)
	v.checkFraction("pj_tax_rate", r.PJTaxRate)
	return v.OrNil()
}
