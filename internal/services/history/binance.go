package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/clients"
	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/internal/ratelimit"
)

const binanceDailyInterval = "1d"

// BinanceSource fetches daily klines from Binance spot. Tokens are mapped to
// trading pairs against the configured quote asset; the quote asset itself
// is priced through the proxy pair and inverted.
type BinanceSource struct {
	client *binance.Client
	gate   *ratelimit.Gate
	quote  string
	proxy  string
	logger *zap.Logger

	listedMu sync.Mutex
	listed   map[string]struct{}
}

// NewBinanceSource creates a Binance price source. proxy is the pair used to
// price the quote asset itself (e.g. USDCUSDT for a USDT quote); empty
// disables that shortcut and the quote asset falls through to the next
// source.
func NewBinanceSource(client *binance.Client, gate *ratelimit.Gate, quote, proxy string, logger *zap.Logger) *BinanceSource {
	return &BinanceSource{
		client: client,
		gate:   gate,
		quote:  strings.ToUpper(quote),
		proxy:  strings.ToUpper(proxy),
		logger: logger,
	}
}

// Name implements Source.
func (s *BinanceSource) Name() string { return "binance" }

// Fetch implements Source.
func (s *BinanceSource) Fetch(ctx context.Context, token domain.Token, days int) (domain.PriceSeries, error) {
	symbol, invert, ok := s.symbolFor(token)
	if !ok {
		return nil, errors.Wrapf(clients.ErrNotFound, "no binance pair for quote asset %s", token.Symbol)
	}

	if err := s.ensureListed(ctx); err != nil {
		return nil, err
	}
	if _, listed := s.listed[symbol]; !listed {
		return nil, errors.Wrapf(clients.ErrNotFound, "%s is not listed on binance", symbol)
	}

	if err := s.gate.Wait(ctx); err != nil {
		return nil, err
	}

	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceDailyInterval).
		Limit(days).
		Do(ctx)
	if err != nil {
		return nil, clients.ClassifyBinance(err)
	}

	series := make(domain.PriceSeries, 0, len(klines))
	for i, k := range klines {
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(clients.ErrMalformed, "binance close price at index %d: %q", i, k.Close)
		}
		series = append(series, domain.PricePoint{
			Time:  time.Unix(0, k.OpenTime*int64(time.Millisecond)),
			Price: closePrice,
		})
	}

	if invert {
		series = series.Invert()
	}
	return series, nil
}

// symbolFor maps a token to the Binance pair to fetch and whether the
// resulting series must be inverted.
func (s *BinanceSource) symbolFor(token domain.Token) (symbol string, invert, ok bool) {
	if token.Symbol == s.quote {
		if s.proxy == "" {
			return "", false, false
		}
		return s.proxy, true, true
	}
	return token.Symbol + s.quote, false, true
}

// ensureListed loads the set of tradable symbols once, so unlisted tokens
// skip straight to the next provider without burning a klines request. A
// failed load is retried on the next call.
func (s *BinanceSource) ensureListed(ctx context.Context) error {
	s.listedMu.Lock()
	defer s.listedMu.Unlock()

	if s.listed != nil {
		return nil
	}

	if err := s.gate.Wait(ctx); err != nil {
		return err
	}
	prices, err := s.client.NewListPricesService().Do(ctx)
	if err != nil {
		return errors.Wrap(clients.ClassifyBinance(err), "failed to list binance symbols")
	}

	listed := make(map[string]struct{}, len(prices))
	for _, p := range prices {
		listed[p.Symbol] = struct{}{}
	}
	s.listed = listed
	s.logger.Debug("binance symbols loaded", zap.Int("count", len(listed)))
	return nil
}
