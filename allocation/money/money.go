package money

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// defaultExponent is the minor-unit exponent assumed for currencies not in
// the exponents table. Covers NGN (kobo), USD, EUR, GBP, and most fiat.
const defaultExponent int32 = 2

// exponents lists ISO 4217 minor-unit exponents that differ from the default.
var exponents = map[string]int32{
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"BIF": 0,
	"CLP": 0,
	"DJF": 0,
	"GNF": 0,
	"JPY": 0,
	"KRW": 0,
	"RWF": 0,
	"UGX": 0,
	"VND": 0,
	"XAF": 0,
	"XOF": 0,
}

// Exponent returns the minor-unit exponent for a currency code. Unknown or
// empty codes resolve to the two-decimal default.
func Exponent(currency string) int32 {
	if exp, ok := exponents[currency]; ok {
		return exp
	}

	return defaultExponent
}

// RoundToMinorUnit rounds an amount to the nearest minor unit of the given
// currency using round-half-to-even. The operation is idempotent: rounding an
// already-rounded amount returns it unchanged.
func RoundToMinorUnit(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.RoundBank(Exponent(currency))
}

// IsRounded reports whether an amount is exactly expressible in minor units
// of the given currency.
func IsRounded(amount decimal.Decimal, currency string) bool {
	return amount.Equal(RoundToMinorUnit(amount, currency))
}

// PercentOf computes total * percent / 100 rounded to the minor unit of the
// given currency. The product is taken at full decimal precision before the
// single final rounding step, so intermediate truncation cannot occur.
func PercentOf(total, percent decimal.Decimal, currency string) decimal.Decimal {
	return RoundToMinorUnit(total.Mul(percent).Div(oneHundred), currency)
}

// Clamp constrains an amount to the inclusive [minimum, maximum] range.
// Either bound may be nil; non-nil bounds are rounded to the minor unit
// before comparison. The second return reports whether the amount changed.
func Clamp(amount decimal.Decimal, minimum, maximum *decimal.Decimal, currency string) (decimal.Decimal, bool) {
	result := amount

	if minimum != nil {
		if floor := RoundToMinorUnit(*minimum, currency); result.LessThan(floor) {
			result = floor
		}
	}

	if maximum != nil {
		if ceil := RoundToMinorUnit(*maximum, currency); result.GreaterThan(ceil) {
			result = ceil
		}
	}

	return result, !result.Equal(amount)
}
