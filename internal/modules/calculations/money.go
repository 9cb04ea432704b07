// Package calculations turns analysis inputs and effective rates into
// profitability metrics. Every function here is pure.
package calculations

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// amount converts a nullable input into a decimal, treating nil as zero.
func amount(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

func rate(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// positivePart returns max(v, 0).
func positivePart(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// percentOf returns numerator/denominator*100, or zero when the denominator is not positive.
func percentOf(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred)
}

func out(v decimal.Decimal) float64 {
	return v.InexactFloat64()
}
