package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/calculations"
)

// FinancingResult is the output of the financing command.
type FinancingResult struct {
	Inputs   domain.FinancingInputs    `json:"inputs"`
	Payments []domain.FinancingPayment `json:"payments"`
	Rates    domain.RateSet            `json:"rates"`
	Outputs  domain.FinancingOutputs   `json:"outputs"`
}

type financingOptions struct {
	purchasePrice      float64
	salePrice          float64
	downPaymentPercent float64
	termMonths         int
	cet                float64
	interestRate       float64
	insurance          float64
	appraisalFee       float64
	otherFees          float64
	remainingDebt      float64
}

func (o *financingOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&o.purchasePrice, "purchase-price", 0, "purchase price")
	f.Float64Var(&o.salePrice, "sale-price", 0, "expected sale price")
	f.Float64Var(&o.downPaymentPercent, "down-payment-percent", 0, "down payment, as a fraction of the purchase price")
	f.IntVar(&o.termMonths, "term-months", 0, "loan term in months")
	f.Float64Var(&o.cet, "cet", 0, "effective total cost rate of the loan (informational)")
	f.Float64Var(&o.interestRate, "interest-rate", 0, "monthly interest rate, as a fraction")
	f.Float64Var(&o.insurance, "insurance", 0, "insurance paid to the bank")
	f.Float64Var(&o.appraisalFee, "appraisal-fee", 0, "bank appraisal fee")
	f.Float64Var(&o.otherFees, "other-fees", 0, "other bank fees")
	f.Float64Var(&o.remainingDebt, "remaining-debt", 0, "loan balance settled on sale")
}

func (o *financingOptions) inputs(cmd *cobra.Command) domain.FinancingInputs {
	return domain.FinancingInputs{
		PurchasePrice:      optionalFloat(cmd, "purchase-price", o.purchasePrice),
		SalePrice:          optionalFloat(cmd, "sale-price", o.salePrice),
		DownPaymentPercent: optionalFloat(cmd, "down-payment-percent", o.downPaymentPercent),
		TermMonths:         optionalInt(cmd, "term-months", o.termMonths),
		CET:                optionalFloat(cmd, "cet", o.cet),
		InterestRate:       optionalFloat(cmd, "interest-rate", o.interestRate),
		Insurance:          optionalFloat(cmd, "insurance", o.insurance),
		AppraisalFee:       optionalFloat(cmd, "appraisal-fee", o.appraisalFee),
		OtherFees:          optionalFloat(cmd, "other-fees", o.otherFees),
		RemainingDebt:      optionalFloat(cmd, "remaining-debt", o.remainingDebt),
	}
}

func (o *financingOptions) patch(cmd *cobra.Command) domain.FinancingPatch {
	return domain.FinancingPatch{
		PurchasePrice:      floatField(cmd, "purchase-price", o.purchasePrice),
		SalePrice:          floatField(cmd, "sale-price", o.salePrice),
		DownPaymentPercent: floatField(cmd, "down-payment-percent", o.downPaymentPercent),
		TermMonths:         intField(cmd, "term-months", o.termMonths),
		CET:                floatField(cmd, "cet", o.cet),
		InterestRate:       floatField(cmd, "interest-rate", o.interestRate),
		Insurance:          floatField(cmd, "insurance", o.insurance),
		AppraisalFee:       floatField(cmd, "appraisal-fee", o.appraisalFee),
		OtherFees:          floatField(cmd, "other-fees", o.otherFees),
		RemainingDebt:      floatField(cmd, "remaining-debt", o.remainingDebt),
	}
}

// NewFinancingCommand creates the financing command.
func NewFinancingCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &financingOptions{}
	rateOpts := &rateOptions{}
	var rawPayments []string

	cmd := &cobra.Command{
		Use:   "financing",
		Short: "Compute the viability of a financed purchase",
		Long: `Compute cash outlay, profit and ROI of a flip bought with a bank loan.

Payments already made are given as --payment month:amount and may be repeated.`,
		Example: "  flipcalc financing --purchase-price 500000 --sale-price 700000 \\\n" +
			"    --down-payment-percent 0.2 --payment 1:20000 --payment 2:25000",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := opts.inputs(cmd)
			if err := domain.ValidateFinancingInputs(in); err != nil {
				return WrapExitError(ExitCommandError, "invalid inputs", err)
			}
			payments, err := parsePayments(rawPayments)
			if err != nil {
				return err
			}
			rs, err := rateOpts.resolve(cmd)
			if err != nil {
				return err
			}
			return newFormatter(rootOpts, cmd).Print(FinancingResult{
				Inputs:   in,
				Payments: payments,
				Rates:    rs,
				Outputs:  calculations.ComputeFinancing(in, payments, rs),
			})
		},
	}

	opts.bind(cmd)
	rateOpts.bind(cmd)
	cmd.Flags().StringArrayVar(&rawPayments, "payment", nil, "payment made, as month:amount (repeatable)")
	return cmd
}

// parsePayments reads "month:amount" pairs in the order given. Each month may
// appear once.
func parsePayments(raw []string) ([]domain.FinancingPayment, error) {
	payments := make([]domain.FinancingPayment, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for i, r := range raw {
		p, err := parsePayment(r)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --payment %q", r), err)
		}
		if seen[p.MonthIndex] {
			err := domain.NewValidationError("month_index",
				fmt.Sprintf("a payment for month %d already exists", p.MonthIndex))
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --payment %q", r), err)
		}
		seen[p.MonthIndex] = true
		payments = append(payments, domain.FinancingPayment{
			ID:         fmt.Sprintf("payment-%d", i+1),
			MonthIndex: p.MonthIndex,
			Amount:     p.Amount,
		})
	}
	return payments, nil
}

func parsePayment(raw string) (domain.NewPayment, error) {
	month, amount, ok := strings.Cut(raw, ":")
	if !ok {
		return domain.NewPayment{}, fmt.Errorf("expected month:amount")
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil {
		return domain.NewPayment{}, fmt.Errorf("month: %w", err)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return domain.NewPayment{}, fmt.Errorf("amount: %w", err)
	}
	p := domain.NewPayment{MonthIndex: m, Amount: a}
	if err := p.Validate(); err != nil {
		return domain.NewPayment{}, err
	}
	return p, nil
}
