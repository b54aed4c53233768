// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"github.com/shopspring/decimal"
)

// Scales used for every monetary, rate and ratio value. Rounding is always
// half-up (away from zero for the positive values the engine handles).
const (
	MoneyScale int32 = 2
	RatioScale int32 = 4
	RateScale  int32 = 4
	// IntermediateScale is used for monthly rate divisions inside the
	// amortization formula.
	IntermediateScale int32 = 6
)

// Currency is the ISO 4217 code all amounts are expressed in.
const Currency = "COP"

// Common decimal constants.
var (
	Hundred = decimal.NewFromInt(100)
	Twelve  = decimal.NewFromInt(12)
)

// RoundMoney rounds an amount to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RoundRate rounds an annual rate to four decimal places.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}

// Ratio divides numerator by denominator at ratio scale. A zero denominator is
// reported as invalid input for the named field.
func Ratio(numerator, denominator decimal.Decimal, field string) (decimal.Decimal, error) {
	if denominator.IsZero() {
		return decimal.Zero, ZeroDenominator(field)
	}
	return numerator.DivRound(denominator, RatioScale), nil
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Clamp bounds d to the closed interval [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
