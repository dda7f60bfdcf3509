package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PairRecord is one row of a correlation snapshot.
type PairRecord struct {
	// Label identifies the token pair, e.g. "BTC-ETH". See PairLabel.
	Label             string
	Correlation       float64
	CombinedMarketCap decimal.Decimal
	CombinedChangePct float64
}

// PairLabel builds the canonical label for two tokens. Symbols are ordered
// lexicographically, ties are broken by token ID, so the same two tokens
// always produce the same label.
func PairLabel(a, b Token) string {
	if a.Symbol > b.Symbol || (a.Symbol == b.Symbol && a.ID > b.ID) {
		a, b = b, a
	}
	return fmt.Sprintf("%s-%s", a.Symbol, b.Symbol)
}
