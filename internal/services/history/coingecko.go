package history

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/clients"
	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/internal/ratelimit"
)

// CoinGeckoSource fetches daily price history from CoinGecko. Unlike the
// exchange sources it is keyed by the provider asset id rather than a
// trading pair, so it also covers tokens no configured exchange lists.
type CoinGeckoSource struct {
	api    *clients.CoinGecko
	gate   *ratelimit.Gate
	vs     string
	logger *zap.Logger
}

// NewCoinGeckoSource creates a CoinGecko price source priced in vsCurrency.
func NewCoinGeckoSource(api *clients.CoinGecko, gate *ratelimit.Gate, vsCurrency string, logger *zap.Logger) *CoinGeckoSource {
	return &CoinGeckoSource{
		api:    api,
		gate:   gate,
		vs:     strings.ToLower(vsCurrency),
		logger: logger,
	}
}

// Name implements Source.
func (s *CoinGeckoSource) Name() string { return "coingecko" }

// Fetch implements Source.
func (s *CoinGeckoSource) Fetch(ctx context.Context, token domain.Token, days int) (domain.PriceSeries, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return nil, err
	}

	points, err := s.api.MarketChart(ctx, token.ID, s.vs, days)
	if err != nil {
		return nil, err
	}

	series := make(domain.PriceSeries, 0, len(points))
	for _, p := range points {
		series = append(series, domain.PricePoint{
			Time:  time.Unix(0, int64(p[0])*int64(time.Millisecond)),
			Price: decimal.NewFromFloat(p[1]),
		})
	}
	return series, nil
}
