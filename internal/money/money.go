// Package money holds the balance arithmetic and display formatting shared by
// the admin payments view, the dashboard and the client portal.
package money

import (
	"fmt"
	"strings"
)

// Remaining returns the outstanding balance for a payment. Overpayments clamp
// to zero so a negative balance is never serialized.
func Remaining(total, paid float64) float64 {
	if remaining := total - paid; remaining > 0 {
		return remaining
	}
	return 0
}

// Format renders an amount as a US dollar string with thousands separators,
// e.g. Format(1500) == "$1,500.00".
func Format(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-$" + b.String() + "." + fracPart
	}
	return "$" + b.String() + "." + fracPart
}
