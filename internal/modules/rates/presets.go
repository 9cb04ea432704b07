// Package rates resolves the effective fee and tax rates of a property.
package rates

import (
	"sort"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// Preset is a named regional default rate set.
type Preset struct {
	Region string         `json:"region"`
	Label  string         `json:"label"`
	Rates  domain.RateSet `json:"rates"`
}

// systemDefault backs workspaces that have never been configured.
var systemDefault = domain.RateSet{
	ItbiRate:     0.03,
	RegistryRate: 0.01,
	BrokerRate:   0.06,
	PJTaxRate:    0.15,
}

// presetCatalogue is read-only; accessors hand out copies.
var presetCatalogue = map[string]Preset{
	"sp":           {Region: "sp", Label: "São Paulo", Rates: domain.RateSet{ItbiRate: 0.03, RegistryRate: 0.01, BrokerRate: 0.06, PJTaxRate: 0.15}},
	"rj":           {Region: "rj", Label: "Rio de Janeiro", Rates: domain.RateSet{ItbiRate: 0.03, RegistryRate: 0.012, BrokerRate: 0.05, PJTaxRate: 0.15}},
	"mg":           {Region: "mg", Label: "Minas Gerais", Rates: domain.RateSet{ItbiRate: 0.03, RegistryRate: 0.011, BrokerRate: 0.06, PJTaxRate: 0.15}},
	"sul":          {Region: "sul", Label: "Sul", Rates: domain.RateSet{ItbiRate: 0.025, RegistryRate: 0.01, BrokerRate: 0.06, PJTaxRate: 0.15}},
	"nordeste":     {Region: "nordeste", Label: "Nordeste", Rates: domain.RateSet{ItbiRate: 0.03, RegistryRate: 0.012, BrokerRate: 0.05, PJTaxRate: 0.15}},
	"centro-oeste": {Region: "centro-oeste", Label: "Centro-Oeste", Rates: domain.RateSet{ItbiRate: 0.02, RegistryRate: 0.01, BrokerRate: 0.05, PJTaxRate: 0.15}},
	"norte":        {Region: "norte", Label: "Norte", Rates: domain.RateSet{ItbiRate: 0.02, RegistryRate: 0.012, BrokerRate: 0.05, PJTaxRate: 0.15}},
}

// SystemDefault returns the hard default used to bootstrap a workspace.
func SystemDefault() domain.RateSet {
	return systemDefault
}

// LookupPreset returns the preset for a region label.
func LookupPreset(region string) (Preset, bool) {
	p, ok := presetCatalogue[region]
	return p, ok
}

// Presets returns every preset ordered by region.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetCatalogue))
	for _, p := range presetCatalogue {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}
