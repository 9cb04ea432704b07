package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

var workspace = domain.RateSet{ItbiRate: 0.02, RegistryRate: 0.015, BrokerRate: 0.05, PJTaxRate: 0.10}

func TestResolve_OnlyBrokerCustomized(t *testing.T) {
	custom := domain.PartialRateSet{BrokerRate: domain.Float(0.04)}

	got := Resolve(custom, workspace.Partial(), SystemDefault())

	assert.Equal(t, workspace.ItbiRate, got.ItbiRate)
	assert.Equal(t, workspace.RegistryRate, got.RegistryRate)
	assert.Equal(t, 0.04, got.BrokerRate)
	assert.Equal(t, workspace.PJTaxRate, got.PJTaxRate)
}

func TestResolve_EachFieldIndependently(t *testing.T) {
	fields := []struct {
		name   string
		custom domain.PartialRateSet
		read   func(domain.RateSet) float64
	}{
		{"itbi", domain.PartialRateSet{ItbiRate: domain.Float(0.5)}, func(r domain.RateSet) float64 { return r.ItbiRate }},
		{"registry", domain.PartialRateSet{RegistryRate: domain.Float(0.5)}, func(r domain.RateSet) float64 { return r.RegistryRate }},
		{"broker", domain.PartialRateSet{BrokerRate: domain.Float(0.5)}, func(r domain.RateSet) float64 { return r.BrokerRate }},
		{"pj_tax", domain.PartialRateSet{PJTaxRate: domain.Float(0.5)}, func(r domain.RateSet) float64 { return r.PJTaxRate }},
	}

	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			got := Resolve(f.custom, workspace.Partial(), SystemDefault())
			assert.Equal(t, 0.5, f.read(got))

			// every other field comes from the workspace
			others := 0
			for _, v := range []float64{got.ItbiRate, got.RegistryRate, got.BrokerRate, got.PJTaxRate} {
				if v != 0.5 {
					others++
				}
			}
			assert.Equal(t, 3, others)
		})
	}
}

func TestResolve_ZeroOverrideIsAnOverride(t *testing.T) {
	custom := domain.PartialRateSet{ItbiRate: domain.Float(0)}
	got := Resolve(custom, workspace.Partial(), SystemDefault())
	assert.Equal(t, 0.0, got.ItbiRate)
}

func TestResolve_BootstrapFallsBackToSystemDefault(t *testing.T) {
	partialWorkspace := domain.PartialRateSet{PJTaxRate: domain.Float(0.2)}

	got := Resolve(domain.PartialRateSet{}, partialWorkspace, SystemDefault())

	assert.Equal(t, SystemDefault().ItbiRate, got.ItbiRate)
	assert.Equal(t, SystemDefault().BrokerRate, got.BrokerRate)
	assert.Equal(t, 0.2, got.PJTaxRate)
}

func TestResolve_FullCustomIgnoresWorkspace(t *testing.T) {
	custom := domain.RateSet{ItbiRate: 0.01, RegistryRate: 0.01, BrokerRate: 0.01, PJTaxRate: 0.01}
	assert.Equal(t, custom, Resolve(custom.Partial(), workspace.Partial(), SystemDefault()))
}

func TestPresets(t *testing.T) {
	presets := Presets()
	assert.Len(t, presets, 7)
	for i := 1; i < len(presets); i++ {
		assert.Less(t, presets[i-1].Region, presets[i].Region)
	}

	// Mutating the returned slice must not leak into the catalogue
	presets[0].Rates.ItbiRate = 0.99
	again, ok := LookupPreset(presets[0].Region)
	assert.True(t, ok)
	assert.NotEqual(t, 0.99, again.Rates.ItbiRate)

	_, ok = LookupPreset("atlantis")
	assert.False(t, ok)

	for _, p := range Presets() {
		assert.NoError(t, domain.ValidateRates(p.Rates.Partial()), p.Region)
	}
}

func TestSystemDefault(t *testing.T) {
	assert.Equal(t, domain.RateSet{ItbiRate: 0.03, RegistryRate: 0.01, BrokerRate: 0.06, PJTaxRate: 0.15}, SystemDefault())
}
