package decimal

import (
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept on monetary amounts
const Places = 2

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds half-up to two fractional digits.
// shopspring rounds half away from zero, which is half-up for the
// non-negative amounts an invoice carries.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Mul multiplies two decimals without rounding
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// Percent computes amount * (rate/100) exactly, without rounding
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// HasMorePlaces reports whether d carries significant digits beyond places
func HasMorePlaces(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// Format renders an amount with exactly two fractional digits ("240.00")
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
