package history

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
)

// Fetcher loads daily history for a whole universe concurrently. Provider
// request spacing is enforced by the gates inside each source, so the worker
// count only bounds in-flight requests.
type Fetcher struct {
	chain  *Chain
	cache  *seriesCache
	pool   gopool.Pool
	maxGap int
	logger *zap.Logger
}

// Stats counts the outcome of one FetchAll pass.
type Stats struct {
	Fetched   int
	Dropped   int
	CacheHits int
}

// NewFetcher creates a fetcher running at most workers concurrent tokens.
// maxGapFill is handed to series normalization; cacheTTL bounds how long a
// fetched series is reused.
func NewFetcher(chain *Chain, workers int, cacheTTL time.Duration, maxGapFill int, logger *zap.Logger) *Fetcher {
	if workers <= 0 {
		workers = 1
	}
	return &Fetcher{
		chain:  chain,
		cache:  newSeriesCache(cacheTTL),
		pool:   gopool.NewPool("history-fetch", int32(workers), gopool.NewConfig()),
		maxGap: maxGapFill,
		logger: logger,
	}
}

// FetchAll fetches normalized history for every token, keyed by token ID.
// Tokens whose every source failed are dropped from the result rather than
// failing the pass; only context cancellation returns an error.
func (f *Fetcher) FetchAll(ctx context.Context, tokens []domain.Token, days int) (map[string]domain.PriceSeries, Stats, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		stats  Stats
		result = make(map[string]domain.PriceSeries, len(tokens))
	)

	for _, token := range tokens {
		if series, ok := f.cache.get(token.ID); ok {
			result[token.ID] = series
			stats.Fetched++
			stats.CacheHits++
			continue
		}

		wg.Add(1)
		f.pool.CtxGo(ctx, func() {
			defer wg.Done()

			series, err := f.chain.Fetch(ctx, token, days)
			if err != nil {
				if ctx.Err() == nil {
					f.logger.Warn("token dropped, history unavailable",
						zap.String("token", token.Symbol),
						zap.String("id", token.ID),
						zap.Error(err))
				}
				mu.Lock()
				stats.Dropped++
				mu.Unlock()
				return
			}

			normalized := series.Normalize(f.maxGap)
			f.cache.put(token.ID, normalized)

			mu.Lock()
			result[token.ID] = normalized
			stats.Fetched++
			mu.Unlock()
		})
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	return result, stats, nil
}
