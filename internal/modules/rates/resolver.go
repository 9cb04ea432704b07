package rates

import "github.com/widia-io/widia-flip-sub001/internal/domain"

// Resolve picks each rate independently: the property override when set,
// otherwise the workspace default, otherwise the fallback. The fallback is
// only reached while a workspace is being bootstrapped.
func Resolve(custom, workspace domain.PartialRateSet, fallback domain.RateSet) domain.RateSet {
	return domain.RateSet{
		ItbiRate:     pick(custom.ItbiRate, workspace.ItbiRate, fallback.ItbiRate),
		RegistryRate: pick(custom.RegistryRate, workspace.RegistryRate, fallback.RegistryRate),
		BrokerRate:   pick(custom.BrokerRate, workspace.BrokerRate, fallback.BrokerRate),
		PJTaxRate:    pick(custom.PJTaxRate, workspace.PJTaxRate, fallback.PJTaxRate),
	}
}

func pick(custom, workspace *float64, fallback float64) float64 {
	if custom != nil {
		return *custom
	}
	if workspace != nil {
		return *workspace
	}
	return fallback
}
