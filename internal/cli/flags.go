package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
)

// Unset flags mean "no value", which is different from zero.

func optionalFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return domain.Float(v)
}

func optionalInt(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return domain.Int(v)
}

func floatField(cmd *cobra.Command, name string, v float64) domain.Field[float64] {
	if !cmd.Flags().Changed(name) {
		return domain.Field[float64]{}
	}
	return domain.Set(v)
}

func intField(cmd *cobra.Command, name string, v int) domain.Field[int] {
	if !cmd.Flags().Changed(name) {
		return domain.Field[int]{}
	}
	return domain.Set(v)
}

// rateOptions resolves rates the way the server does: explicit flags override
// the regional preset, which overrides the system default.
type rateOptions struct {
	region   string
	itbi     float64
	registry float64
	broker   float64
	pjTax    float64
}

func (o *rateOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.region, "region", "", "regional rate preset (see 'flipcalc presets')")
	f.Float64Var(&o.itbi, "itbi", 0, "ITBI transfer tax rate, as a fraction")
	f.Float64Var(&o.registry, "registry", 0, "registry fee rate, as a fraction")
	f.Float64Var(&o.broker, "broker", 0, "broker commission rate, as a fraction")
	f.Float64Var(&o.pjTax, "pj-tax", 0, "company tax rate on gross profit, as a fraction")
}

func (o *rateOptions) resolve(cmd *cobra.Command) (domain.RateSet, error) {
	var workspace domain.PartialRateSet
	if o.region != "" {
		preset, ok := rates.LookupPreset(strings.ToLower(o.region))
		if !ok {
			return domain.RateSet{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown region %q", o.region))
		}
		workspace = preset.Rates.Partial()
	}

	custom := domain.PartialRateSet{
		ItbiRate:     optionalFloat(cmd, "itbi", o.itbi),
		RegistryRate: optionalFloat(cmd, "registry", o.registry),
		BrokerRate:   optionalFloat(cmd, "broker", o.broker),
		PJTaxRate:    optionalFloat(cmd, "pj-tax", o.pjTax),
	}
	if err := domain.ValidateRates(custom); err != nil {
		return domain.RateSet{}, WrapExitError(ExitCommandError, "invalid rates", err)
	}

	return rates.Resolve(custom, workspace, rates.SystemDefault()), nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
