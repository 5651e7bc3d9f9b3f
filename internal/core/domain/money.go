package domain

import (
	"strconv"
	"strings"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "Rs"

// FormatPrice renders an amount in whole currency units with thousands
// separators, e.g. FormatPrice("Rs", 1250000) returns "Rs 1,250,000".
func FormatPrice(currency string, amount int64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return currency + " " + sign + b.String()
}
