package clients

import (
	"github.com/adshao/go-binance/v2"
)

// NewBinance creates a Binance REST client. The market data endpoints the
// pipeline uses are public, so empty credentials are fine; keys only raise
// the request weight limits.
func NewBinance(apiKey, apiSecret string) *binance.Client {
	return binance.NewClient(apiKey, apiSecret)
}
