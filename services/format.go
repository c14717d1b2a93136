package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every rendered amount.
const CurrencySymbol = "₹"

// FormatINR formats a float64 amount into Indian Rupee notation.
// It uses the Indian numbering system where, after the rightmost 3 digits,
// digits are grouped in pairs (e.g., ₹1,23,45,678.90).
// The result always includes exactly 2 decimal places.
func FormatINR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return CurrencySymbol + "0.00"
	}

	raw := decimal.NewFromFloat(amount).StringFixed(2)
	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	if negative && raw == "0.00" {
		negative = false
	}

	parts := strings.SplitN(raw, ".", 2)
	result := CurrencySymbol + applyIndianGrouping(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatPercent renders a discount percentage without trailing zeros.
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).Round(2).String() + "%"
}

// FormatDecimal renders v with a fixed number of decimal places.
func FormatDecimal(v float64, places int32) string {
	return formatFixed(v, places)
}

// formatFixed renders v with the given number of decimals, half away from zero.
func formatFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%.*f", int(places), 0.0)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}
