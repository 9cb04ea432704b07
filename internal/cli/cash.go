package cli

import (
	"github.com/spf13/cobra"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/calculations"
)

// CashResult is the output of the cash command.
type CashResult struct {
	Inputs  domain.CashInputs  `json:"inputs"`
	Rates   domain.RateSet     `json:"rates"`
	Outputs domain.CashOutputs `json:"outputs"`
}

type cashOptions struct {
	purchasePrice  float64
	renovationCost float64
	otherCosts     float64
	salePrice      float64
}

func (o *cashOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&o.purchasePrice, "purchase-price", 0, "purchase price")
	f.Float64Var(&o.renovationCost, "renovation-cost", 0, "renovation cost")
	f.Float64Var(&o.otherCosts, "other-costs", 0, "other acquisition or holding costs")
	f.Float64Var(&o.salePrice, "sale-price", 0, "expected sale price")
}

func (o *cashOptions) inputs(cmd *cobra.Command) domain.CashInputs {
	return domain.CashInputs{
		PurchasePrice:  optionalFloat(cmd, "purchase-price", o.purchasePrice),
		RenovationCost: optionalFloat(cmd, "renovation-cost", o.renovationCost),
		OtherCosts:     optionalFloat(cmd, "other-costs", o.otherCosts),
		SalePrice:      optionalFloat(cmd, "sale-price", o.salePrice),
	}
}

func (o *cashOptions) patch(cmd *cobra.Command) domain.CashPatch {
	return domain.CashPatch{
		PurchasePrice:  floatField(cmd, "purchase-price", o.purchasePrice),
		RenovationCost: floatField(cmd, "renovation-cost", o.renovationCost),
		OtherCosts:     floatField(cmd, "other-costs", o.otherCosts),
		SalePrice:      floatField(cmd, "sale-price", o.salePrice),
	}
}

// NewCashCommand creates the cash command.
func NewCashCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &cashOptions{}
	rateOpts := &rateOptions{}

	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Compute the viability of a cash purchase",
		Long: `Compute acquisition costs, profit and ROI of a flip paid in cash.

Missing prices yield a partial result with zeroed derived values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := opts.inputs(cmd)
			if err := domain.ValidateCashInputs(in); err != nil {
				return WrapExitError(ExitCommandError, "invalid inputs", err)
			}
			rs, err := rateOpts.resolve(cmd)
			if err != nil {
				return err
			}
			return newFormatter(rootOpts, cmd).Print(CashResult{
				Inputs:  in,
				Rates:   rs,
				Outputs: calculations.ComputeCash(in, rs),
			})
		},
	}

	opts.bind(cmd)
	rateOpts.bind(cmd)
	return cmd
}
