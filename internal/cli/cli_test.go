package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var scenarioCashArgs = []string{
	"cash",
	"--purchase-price", "500000",
	"--renovation-cost", "50000",
	"--other-costs", "10000",
	"--sale-price", "700000",
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"cash", "financing", "presets", "remote"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "json", formatFlag.DefValue)
}

func TestCash_Scenario(t *testing.T) {
	out, err := run(t, scenarioCashArgs...)
	require.NoError(t, err)

	var result CashResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Outputs.IsPartial)
	assert.Equal(t, 20000.0, result.Outputs.AcquisitionCost)
	assert.Equal(t, 42000.0, result.Outputs.BrokerFee)
	assert.Equal(t, 66300.0, result.Outputs.NetProfit)
}

func TestCash_PartialWithoutSalePrice(t *testing.T) {
	out, err := run(t, "cash", "--purchase-price", "500000")
	require.NoError(t, err)

	var result CashResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Outputs.IsPartial)
	assert.Nil(t, result.Inputs.SalePrice)
	assert.Zero(t, result.Outputs.NetProfit)
}

func TestCash_RatePrecedence(t *testing.T) {
	out, err := run(t, "cash", "--purchase-price", "100", "--region", "rj", "--broker", "0.04")
	require.NoError(t, err)

	var result CashResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 0.03, result.Rates.ItbiRate)
	assert.Equal(t, 0.012, result.Rates.RegistryRate)
	assert.Equal(t, 0.04, result.Rates.BrokerRate)
	assert.Equal(t, 0.15, result.Rates.PJTaxRate)
}

func TestCash_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown region", []string{"cash", "--region", "atlantis"}},
		{"negative price", []string{"cash", "--purchase-price=-1"}},
		{"rate above one", []string{"cash", "--itbi", "1.5"}},
		{"bad format", []string{"cash", "--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestFinancing_WithPayments(t *testing.T) {
	out, err := run(t, "financing",
		"--purchase-price", "500000",
		"--sale-price", "700000",
		"--down-payment-percent", "0.2",
		"--term-months", "360",
		"--interest-rate", "0.0099",
		"--insurance", "5000",
		"--appraisal-fee", "1500",
		"--other-fees", "500",
		"--remaining-debt", "350000",
		"--payment", "1:20000",
		"--payment", "2:25000",
		"--payment", "5:15000",
	)
	require.NoError(t, err)

	var result FinancingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Payments, 3)
	assert.Equal(t, 5, result.Payments[2].MonthIndex)
	assert.Equal(t, 60000.0, result.Outputs.PaymentsTotal)
	assert.Equal(t, 102850.0, result.Outputs.NetProfit)
}

func TestParsePayment(t *testing.T) {
	tests := []struct {
		raw     string
		month   int
		amount  float64
		wantErr bool
	}{
		{raw: "1:20000", month: 1, amount: 20000},
		{raw: " 12 : 99.5 ", month: 12, amount: 99.5},
		{raw: "20000", wantErr: true},
		{raw: "x:1", wantErr: true},
		{raw: "0:100", wantErr: true},
		{raw: "1:-5", wantErr: true},
		{raw: "1:NaN", wantErr: true},
		{raw: "1:Inf", wantErr: true},
		{raw: "1:-Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := parsePayment(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, p.MonthIndex)
			assert.Equal(t, tt.amount, p.Amount)
		})
	}
}

func TestFinancing_BadPaymentExitCode(t *testing.T) {
	_, err := run(t, "financing", "--payment", "soon")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFinancing_NonFinitePaymentRejected(t *testing.T) {
	_, err := run(t, "financing", "--purchase-price", "500000", "--payment", "1:NaN")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "finite")
}

func TestFinancing_DuplicatePaymentMonthRejected(t *testing.T) {
	out, err := run(t, "financing",
		"--purchase-price", "500000",
		"--payment", "1:20000",
		"--payment", "1:20000",
	)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "month_index", verr.Errors[0].Field)
}

func TestPresets_TextFormat(t *testing.T) {
	out, err := run(t, "presets", "--format", "text")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^default\.itbi_rate\s+0\.03$`, out)
	assert.Regexp(t, `(?m)^presets\.0\.region\s+centro-oeste$`, out)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(io.EOF))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", io.EOF)))
}
