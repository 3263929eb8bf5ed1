// Package format converts invoice amounts between decimal currency values
// and integer minor units.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxIntegerDigits is the longest whole part whose cents still fit in int64.
const MaxIntegerDigits = 17

var (
	hundred     = decimal.NewFromInt(100)
	maxMinor    = decimal.NewFromInt(math.MaxInt64)
	minMinor    = decimal.NewFromInt(math.MinInt64)
	thousandSep = ","
)

// ToMinorUnits returns round(amount*100), rounding halves away from zero.
// Values outside int64 saturate; FitsMinorUnits reports that case up front.
func ToMinorUnits(amount decimal.Decimal) int64 {
	// Checked on the representation so huge exponents never reach Mul.
	digits := IntegerDigits(amount)
	switch {
	case digits <= -3:
		return 0
	case digits > MaxIntegerDigits+2 && amount.IsNegative():
		return math.MinInt64
	case digits > MaxIntegerDigits+2:
		return math.MaxInt64
	}
	cents := amount.Mul(hundred).Round(0)
	switch {
	case cents.GreaterThan(maxMinor):
		return math.MaxInt64
	case cents.LessThan(minMinor):
		return math.MinInt64
	}
	return cents.IntPart()
}

// FitsMinorUnits reports whether amount converts without saturating.
func FitsMinorUnits(amount decimal.Decimal) bool {
	switch digits := IntegerDigits(amount); {
	case digits > MaxIntegerDigits:
		return false
	case digits <= -3:
		return true
	}
	cents := amount.Mul(hundred).Round(0)
	return !cents.GreaterThan(maxMinor) && !cents.LessThan(minMinor)
}

// IntegerDigits returns the number of digits before the decimal point, read
// from the coefficient and exponent without rescaling. Values below 1 give
// zero or a negative count: 0.001 has -2.
func IntegerDigits(amount decimal.Decimal) int {
	if amount.IsZero() {
		return 0
	}
	return amount.NumDigits() + int(amount.Exponent())
}

// FromMinorUnits is the inverse used to prefill edit forms.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatCurrency renders minor units as "$1,234.50".
func FormatCurrency(minor int64, symbol string) string {
	amount := FromMinorUnits(minor)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + symbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandSep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
