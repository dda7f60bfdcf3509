package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Creds carries optional provider credentials. Public market data works
// without any of them; keys only raise provider rate limits.
type Creds struct {
	BinanceAPIKey    string `env:"BINANCE_API_KEY"`
	BinanceAPISecret string `env:"BINANCE_API_SECRET"`
	BybitAPIKey      string `env:"BYBIT_API_KEY"`
	BybitAPISecret   string `env:"BYBIT_API_SECRET"`
	CoinGeckoAPIKey  string `env:"COINGECKO_API_KEY"`
}

// LoadCreds reads credentials from the environment, loading a .env file
// first when one is present.
func LoadCreds() (Creds, error) {
	_ = godotenv.Load()

	var c Creds
	if err := env.Parse(&c); err != nil {
		return Creds{}, errors.Wrap(err, "failed to parse credentials from environment")
	}
	return c, nil
}
