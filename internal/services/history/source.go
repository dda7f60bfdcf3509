// Package history fetches daily price history for the token universe,
// falling back across providers and caching per-token series for a run.
package history

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/clients"
	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/pkg/retrier"
)

// Source fetches raw daily closes for one token from one provider.
type Source interface {
	// Name identifies the provider in logs.
	Name() string
	// Fetch returns up to days daily closes, oldest first. Implementations
	// classify failures with the clients error taxonomy so the chain can
	// tell a missing listing from a transient outage.
	Fetch(ctx context.Context, token domain.Token, days int) (domain.PriceSeries, error)
}

// Chain tries sources in order until one returns a usable series.
type Chain struct {
	sources []Source
	retr    *retrier.Retrier
	timeout time.Duration
	logger  *zap.Logger
}

// NewChain creates a fallback chain. The retrier governs per-source retries;
// construct it with a retry predicate so final errors are not retried.
// callTimeout bounds a single provider call, non-positive disables the bound.
func NewChain(sources []Source, retr *retrier.Retrier, callTimeout time.Duration, logger *zap.Logger) *Chain {
	return &Chain{sources: sources, retr: retr, timeout: callTimeout, logger: logger}
}

// Fetch walks the chain. Retryable failures are retried on the same source
// with backoff before moving on; not-found and malformed responses move on
// immediately. The last source's error is returned when every source fails.
func (c *Chain) Fetch(ctx context.Context, token domain.Token, days int) (domain.PriceSeries, error) {
	if len(c.sources) == 0 {
		return nil, errors.New("no price sources configured")
	}

	var lastErr error
	for _, src := range c.sources {
		series, err := retrier.DoWithData(c.retr, ctx, func(ctx context.Context) (domain.PriceSeries, error) {
			if c.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}
			return src.Fetch(ctx, token, days)
		})
		if err == nil {
			if len(series) == 0 {
				lastErr = errors.Wrapf(clients.ErrNotFound, "%s returned empty history for %s", src.Name(), token.Symbol)
				continue
			}
			return series, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Debug("price source failed",
			zap.String("source", src.Name()),
			zap.String("token", token.Symbol),
			zap.Error(err))
		lastErr = err
	}

	return nil, errors.Wrapf(lastErr, "all price sources failed for %s", token.ID)
}
