package valueobject

import "github.com/shopspring/decimal"

// hundred is used for percentage math
var hundred = decimal.NewFromInt(100)

// RoundCurrency rounds an amount half-up to a whole currency unit.
// Neither the Naira nor the CFA franc is priced in subunits at the counter.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// ApplyMultiplier marks an amount up by multiplier and rounds to a whole unit
func ApplyMultiplier(amount, multiplier decimal.Decimal) decimal.Decimal {
	return RoundCurrency(amount.Mul(multiplier))
}

// SafeDivide returns numerator/denominator, or zero when denominator is not positive
func SafeDivide(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// Percentage returns part/whole*100, or zero when whole is not positive
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Sum adds a list of amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
