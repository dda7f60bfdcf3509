package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatMarketCap renders a market capitalization as a short human-readable
// dollar amount: $1.23T, $45.60B, $789.00M, or $123.45 below a million.
func FormatMarketCap(v decimal.Decimal) string {
	f := v.InexactFloat64()
	switch {
	case f >= 1e12:
		return fmt.Sprintf("$%.2fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("$%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("$%.2fM", f/1e6)
	default:
		return fmt.Sprintf("$%.2f", f)
	}
}
