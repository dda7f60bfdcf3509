// Package universe selects the ranked token universe for a correlation run.
package universe

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/clients"
	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/internal/ratelimit"
	"github.com/vadiminshakov/cryptocorr/pkg/retrier"
)

// maxPerPage is the largest page size the markets endpoint accepts.
const maxPerPage = 250

// CoinGeckoFetcher ranks tokens by market capitalization using the CoinGecko
// markets listing.
type CoinGeckoFetcher struct {
	api     *clients.CoinGecko
	gate    *ratelimit.Gate
	retrier *retrier.Retrier
	vs      string
	logger  *zap.Logger
}

// NewCoinGeckoFetcher creates a universe fetcher ranking in vsCurrency.
func NewCoinGeckoFetcher(api *clients.CoinGecko, gate *ratelimit.Gate, r *retrier.Retrier, vsCurrency string, logger *zap.Logger) *CoinGeckoFetcher {
	return &CoinGeckoFetcher{
		api:     api,
		gate:    gate,
		retrier: r,
		vs:      strings.ToLower(vsCurrency),
		logger:  logger,
	}
}

// TopTokens returns up to n tokens ordered by descending market cap. Tokens
// without a reported market cap or symbol are skipped; when two tokens share
// a symbol the higher-ranked one wins. Fewer than n tokens is not an error,
// an empty universe is.
func (f *CoinGeckoFetcher) TopTokens(ctx context.Context, n int) ([]domain.Token, error) {
	if n <= 0 {
		return nil, errors.Errorf("universe size must be positive, got %d", n)
	}

	perPage := n
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	tokens := make([]domain.Token, 0, n)
	seen := make(map[string]struct{}, n)

	for page := 1; len(tokens) < n; page++ {
		rows, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) ([]clients.MarketRow, error) {
			if err := f.gate.Wait(ctx); err != nil {
				return nil, err
			}
			return f.api.Markets(ctx, f.vs, page, perPage)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch markets page %d", page)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			token, ok := f.toToken(row)
			if !ok {
				continue
			}
			if _, dup := seen[token.Symbol]; dup {
				f.logger.Debug("duplicate symbol skipped",
					zap.String("symbol", token.Symbol),
					zap.String("id", token.ID))
				continue
			}
			seen[token.Symbol] = struct{}{}
			tokens = append(tokens, token)
			if len(tokens) == n {
				break
			}
		}

		if len(rows) < perPage {
			break
		}
	}

	if len(tokens) == 0 {
		return nil, errors.New("universe fetch returned no usable tokens")
	}
	if len(tokens) < n {
		f.logger.Warn("universe smaller than requested",
			zap.Int("requested", n),
			zap.Int("got", len(tokens)))
	}

	return tokens, nil
}

func (f *CoinGeckoFetcher) toToken(row clients.MarketRow) (domain.Token, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(row.Symbol))
	if symbol == "" {
		f.logger.Debug("token without symbol skipped", zap.String("id", row.ID))
		return domain.Token{}, false
	}
	if row.MarketCap == nil || *row.MarketCap <= 0 {
		f.logger.Debug("token without market cap skipped", zap.String("id", row.ID))
		return domain.Token{}, false
	}

	token := domain.Token{
		ID:           row.ID,
		Symbol:       symbol,
		Name:         row.Name,
		CurrentPrice: decimal.NewFromFloat(row.CurrentPrice),
		MarketCap:    decimal.NewFromFloat(*row.MarketCap),
		Change24h:    row.Change24h,
		Change7d:     row.Change7d,
		Change30d:    row.Change30d,
		Change1y:     row.Change1y,
	}
	if row.TotalVolume != nil {
		token.Volume24h = decimal.NewFromFloat(*row.TotalVolume)
	}
	return token, true
}
