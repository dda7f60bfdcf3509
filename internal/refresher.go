package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/cryptocorr/config"
	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/internal/services/aggregator"
	"github.com/vadiminshakov/cryptocorr/internal/services/history"
	"github.com/vadiminshakov/cryptocorr/internal/summary"
)

// fetchBufferDays is how many extra days of history are requested beyond the
// widest window, to absorb provider gaps that normalization trims away.
const fetchBufferDays = 5

// UniverseFetcher selects the ranked token universe for a run.
type UniverseFetcher interface {
	TopTokens(ctx context.Context, n int) ([]domain.Token, error)
}

// HistoryFetcher loads daily price history for the whole universe.
type HistoryFetcher interface {
	FetchAll(ctx context.Context, tokens []domain.Token, days int) (map[string]domain.PriceSeries, history.Stats, error)
}

// SnapshotWriter persists one window's records and returns the file path.
type SnapshotWriter interface {
	Write(window domain.Window, records []domain.PairRecord) (string, error)
}

// Refresher runs the snapshot pipeline: universe selection, history fetch,
// per-window aggregation and snapshot files.
type Refresher struct {
	cfg       config.Config
	universe  UniverseFetcher
	histories HistoryFetcher
	agg       *aggregator.Aggregator
	writer    SnapshotWriter
	out       io.Writer
	logger    *zap.Logger
}

// NewRefresher wires the pipeline stages together. out receives the console
// summary; nil means stdout.
func NewRefresher(cfg config.Config, universe UniverseFetcher, histories HistoryFetcher, agg *aggregator.Aggregator, writer SnapshotWriter, out io.Writer, logger *zap.Logger) (*Refresher, error) {
	if len(cfg.Windows) == 0 {
		return nil, errors.New("at least one lookback window is required")
	}
	if out == nil {
		out = os.Stdout
	}
	return &Refresher{
		cfg:       cfg,
		universe:  universe,
		histories: histories,
		agg:       agg,
		writer:    writer,
		out:       out,
		logger:    logger,
	}, nil
}

// RunOnce executes one full pipeline pass. Every window gets aggregated and
// written independently; the first window failure is returned after the
// remaining windows finish.
func (r *Refresher) RunOnce(ctx context.Context) error {
	logger := r.logger.With(zap.String("run_id", uuid.NewString()))
	started := time.Now()

	logger.Info("correlation run started",
		zap.Int("universe", r.cfg.UniverseSize),
		zap.Int("windows", len(r.cfg.Windows)))

	tokens, err := r.universe.TopTokens(ctx, r.cfg.UniverseSize)
	if err != nil {
		return errors.Wrap(err, "failed to fetch token universe")
	}
	logger.Info("universe fetched", zap.Int("tokens", len(tokens)))

	days := maxWindow(r.cfg.Windows).Samples() + fetchBufferDays
	series, fetchStats, err := r.histories.FetchAll(ctx, tokens, days)
	if err != nil {
		return errors.Wrap(err, "failed to fetch price history")
	}
	logger.Info("history fetched",
		zap.Int("fetched", fetchStats.Fetched),
		zap.Int("dropped", fetchStats.Dropped),
		zap.Int("cache_hits", fetchStats.CacheHits))

	// windows are independent, so one failed write must not cancel the rest
	var g errgroup.Group
	reports := make([]string, len(r.cfg.Windows))
	for i, window := range r.cfg.Windows {
		g.Go(func() error {
			records, aggStats, err := r.agg.Build(window, tokens, series)
			if err != nil {
				return errors.Wrapf(err, "failed to aggregate %s window", window)
			}
			path, err := r.writer.Write(window, records)
			if err != nil {
				return errors.Wrapf(err, "failed to write %s snapshot", window)
			}

			logger.Info("window complete",
				zap.String("window", window.String()),
				zap.String("file", path),
				zap.Int("tokens", aggStats.Tokens),
				zap.Int("excluded", aggStats.Excluded),
				zap.Int("pairs", aggStats.Pairs),
				zap.Int("undefined", aggStats.Undefined))
			reports[i] = summary.Render(window, records)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, report := range reports {
		fmt.Fprint(r.out, report)
	}

	logger.Info("correlation run finished", zap.Duration("took", time.Since(started)))
	return nil
}

// Run executes the pipeline once, then again on every refresh interval tick
// until the context is cancelled. With a non-positive interval it is a plain
// RunOnce. A failed pass inside the loop is logged and retried on the next
// tick.
func (r *Refresher) Run(ctx context.Context) error {
	if r.cfg.RefreshInterval <= 0 {
		return r.RunOnce(ctx)
	}

	if err := r.runLogged(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(r.cfg.RefreshInterval)
	defer ticker.Stop()

	r.logger.Info("refresh loop started", zap.Duration("interval", r.cfg.RefreshInterval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.runLogged(ctx); err != nil {
				return err
			}
		}
	}
}

// runLogged runs one pass, swallowing and logging failures so the loop can
// retry, but passing cancellation through.
func (r *Refresher) runLogged(ctx context.Context) error {
	if err := r.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return err
		}
		r.logger.Error("correlation run failed", zap.Error(err))
	}
	return nil
}

func maxWindow(windows []domain.Window) domain.Window {
	max := windows[0]
	for _, w := range windows[1:] {
		if w > max {
			max = w
		}
	}
	return max
}
