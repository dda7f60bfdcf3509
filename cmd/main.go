// Command cryptocorr writes ranked pair correlation snapshots for the top
// cryptocurrencies by market capitalization. It ranks the universe with
// CoinGecko, fetches daily price history from exchanges with a CoinGecko
// fallback and can be configured via a YAML configuration file or
// command-line arguments.
//
// Usage:
//
//	cryptocorr --init (interactive config wizard)
//	cryptocorr --config config.yaml
//	cryptocorr (uses CLI arguments)
//
// Optional environment variables raise provider rate limits:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For CoinGecko: COINGECKO_API_KEY
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/config"
	"github.com/vadiminshakov/cryptocorr/internal"
	"github.com/vadiminshakov/cryptocorr/internal/clients"
	"github.com/vadiminshakov/cryptocorr/internal/ratelimit"
	"github.com/vadiminshakov/cryptocorr/internal/services/aggregator"
	"github.com/vadiminshakov/cryptocorr/internal/services/history"
	"github.com/vadiminshakov/cryptocorr/internal/services/snapshot"
	"github.com/vadiminshakov/cryptocorr/internal/services/universe"
	"github.com/vadiminshakov/cryptocorr/internal/setup"
	"github.com/vadiminshakov/cryptocorr/pkg/retrier"
)

// vsCurrency prices the universe, CoinGecko reports market caps in it.
const vsCurrency = "usd"

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Init {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	creds, err := config.LoadCreds()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	retr := retrier.New(retrier.WithRetryIf(clients.IsRetryable))

	gecko := clients.NewCoinGecko(cfg.CallTimeout, creds.CoinGeckoAPIKey)
	geckoGate := ratelimit.NewGate("coingecko", cfg.CoinGeckoSpacing)
	tokens := universe.NewCoinGeckoFetcher(gecko, geckoGate, retr, vsCurrency, logger)

	sources := make([]history.Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case "binance":
			client := clients.NewBinance(creds.BinanceAPIKey, creds.BinanceAPISecret)
			gate := ratelimit.NewGate("binance", cfg.ExchangeSpacing)
			sources = append(sources, history.NewBinanceSource(client, gate, cfg.Quote, cfg.QuoteProxy, logger))
		case "bybit":
			client := clients.NewBybit(creds.BybitAPIKey, creds.BybitAPISecret)
			gate := ratelimit.NewGate("bybit", cfg.ExchangeSpacing)
			sources = append(sources, history.NewBybitSource(client, gate, cfg.Quote, logger))
		case "coingecko":
			sources = append(sources, history.NewCoinGeckoSource(gecko, geckoGate, vsCurrency, logger))
		default:
			log.Fatalf("unsupported price source %q", name)
		}
	}

	chain := history.NewChain(sources, retr, cfg.CallTimeout, logger)
	histories := history.NewFetcher(chain, cfg.Workers, cfg.CacheTTL, cfg.MaxGapFill, logger)
	agg := aggregator.New(cfg.MinOverlapRatio, logger)
	writer := snapshot.NewWriter(cfg.OutDir, cfg.FilePrefix, logger)

	ref, err := internal.NewRefresher(cfg, tokens, histories, agg, writer, nil, logger)
	if err != nil {
		log.Fatal(err)
	}

	if err := ref.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
