// Package domain defines core data structures used throughout the correlation pipeline.
package domain

import "github.com/shopspring/decimal"

// Token is a single asset from the ranked market universe.
type Token struct {
	// ID is the market data provider identifier (e.g. "bitcoin").
	ID string
	// Symbol is the upper-case ticker symbol (e.g. "BTC").
	Symbol string
	// Name is the human-readable asset name.
	Name         string
	CurrentPrice decimal.Decimal
	MarketCap    decimal.Decimal
	Volume24h    decimal.Decimal

	// Provider-reported percentage changes. Nil when the provider omits the field.
	Change24h *float64
	Change7d  *float64
	Change30d *float64
	Change1y  *float64
}
