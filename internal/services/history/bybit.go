package history

import (
	"context"
	"strconv"
	"strings"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/clients"
	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/internal/ratelimit"
)

// BybitSource fetches daily klines from Bybit spot V5.
type BybitSource struct {
	client *bybit.Client
	gate   *ratelimit.Gate
	quote  string
	logger *zap.Logger
}

// NewBybitSource creates a Bybit price source quoted against quote.
func NewBybitSource(client *bybit.Client, gate *ratelimit.Gate, quote string, logger *zap.Logger) *BybitSource {
	return &BybitSource{
		client: client,
		gate:   gate,
		quote:  strings.ToUpper(quote),
		logger: logger,
	}
}

// Name implements Source.
func (s *BybitSource) Name() string { return "bybit" }

// Fetch implements Source.
func (s *BybitSource) Fetch(ctx context.Context, token domain.Token, days int) (domain.PriceSeries, error) {
	if token.Symbol == s.quote {
		return nil, errors.Wrapf(clients.ErrNotFound, "no bybit pair for quote asset %s", token.Symbol)
	}

	if err := s.gate.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now().AddDate(0, 0, -days).UnixMilli()
	end := time.Now().UnixMilli()
	limit := days

	resp, err := s.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   bybit.SymbolV5(token.Symbol + s.quote),
		Interval: bybit.IntervalD,
		Start:    &start,
		End:      &end,
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get klines from Bybit")
	}
	if len(resp.Result.List) == 0 {
		return nil, errors.Wrapf(clients.ErrNotFound, "%s%s has no bybit history", token.Symbol, s.quote)
	}

	// Bybit returns klines newest first.
	list := resp.Result.List
	series := make(domain.PriceSeries, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		k := list[i]
		ms, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(clients.ErrMalformed, "bybit start time %q", k.StartTime)
		}
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(clients.ErrMalformed, "bybit close price %q", k.Close)
		}
		series = append(series, domain.PricePoint{
			Time:  time.Unix(0, ms*int64(time.Millisecond)),
			Price: closePrice,
		})
	}
	return series, nil
}
