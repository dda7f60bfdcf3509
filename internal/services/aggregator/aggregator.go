// Package aggregator builds ranked pair correlation records for a lookback
// window from fetched token histories.
package aggregator

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
	"github.com/vadiminshakov/cryptocorr/pkg/correlation"
)

// minOverlapFloor is the hard lower bound on overlapping samples, whatever
// the configured ratio works out to.
const minOverlapFloor = 3

// Aggregator computes pairwise correlation records over a token universe.
type Aggregator struct {
	minOverlapRatio float64
	logger          *zap.Logger
}

// Stats counts token and pair outcomes for one window.
type Stats struct {
	// Tokens with enough window coverage to participate.
	Tokens int
	// Excluded tokens whose trailing coverage fell short.
	Excluded int
	// Pairs is the number of records produced.
	Pairs int
	// Undefined pairs skipped because the correlation has no defined value.
	Undefined int
}

// New creates an aggregator requiring minOverlapRatio of a window's samples
// before a token participates in it.
func New(minOverlapRatio float64, logger *zap.Logger) *Aggregator {
	return &Aggregator{minOverlapRatio: minOverlapRatio, logger: logger}
}

// tokenSeries is the per-token precomputation for one window, done once so
// the pair loop only accumulates the cross term.
type tokenSeries struct {
	token     domain.Token
	returns   domain.ReturnSeries
	stats     correlation.Stats
	change    float64
	hasChange bool
}

// Build computes one record per unordered pair of eligible tokens, sorted by
// descending correlation with ties broken by label. Tokens without a series
// are ignored, under-covered tokens and undefined correlations are skipped
// and counted. Series of unequal length are correlated over their trailing
// aligned overlap.
func (a *Aggregator) Build(window domain.Window, tokens []domain.Token, series map[string]domain.PriceSeries) ([]domain.PairRecord, Stats, error) {
	need := a.minSamples(window)

	var stats Stats
	prepared := make([]tokenSeries, 0, len(tokens))
	for _, token := range tokens {
		s, ok := series[token.ID]
		if !ok {
			continue
		}
		trimmed := s.Tail(window.Samples())
		if len(trimmed) < need {
			stats.Excluded++
			a.logger.Debug("token excluded from window",
				zap.String("token", token.Symbol),
				zap.String("window", window.String()),
				zap.Int("samples", len(trimmed)),
				zap.Int("required", need))
			continue
		}

		returns := trimmed.Returns()
		ts := tokenSeries{
			token:   token,
			returns: returns,
			stats:   correlation.NewStats(returns),
		}
		ts.change, ts.hasChange = trimmed.ChangePct()
		prepared = append(prepared, ts)
	}
	stats.Tokens = len(prepared)

	records := make([]domain.PairRecord, 0, len(prepared)*(len(prepared)-1)/2)
	for i := 0; i < len(prepared); i++ {
		for j := i + 1; j < len(prepared); j++ {
			x, y := prepared[i], prepared[j]

			var (
				corr float64
				err  error
			)
			if len(x.returns) == len(y.returns) {
				corr, err = correlation.Corr(x.stats, y.stats, correlation.Dot(x.returns, y.returns, len(x.returns)))
			} else {
				n := len(x.returns)
				if len(y.returns) < n {
					n = len(y.returns)
				}
				corr, err = correlation.Pearson(x.returns.Tail(n), y.returns.Tail(n))
			}
			if err != nil {
				if errors.Is(err, correlation.ErrUndefined) {
					stats.Undefined++
					continue
				}
				return nil, stats, errors.Wrapf(err, "failed to correlate %s", domain.PairLabel(x.token, y.token))
			}

			records = append(records, domain.PairRecord{
				Label:             domain.PairLabel(x.token, y.token),
				Correlation:       corr,
				CombinedMarketCap: x.token.MarketCap.Add(y.token.MarketCap),
				CombinedChangePct: combinedChange(x, y),
			})
		}
	}
	stats.Pairs = len(records)

	sort.Slice(records, func(i, j int) bool {
		if records[i].Correlation != records[j].Correlation {
			return records[i].Correlation > records[j].Correlation
		}
		return records[i].Label < records[j].Label
	})

	return records, stats, nil
}

// minSamples converts the overlap ratio into a sample count for the window.
func (a *Aggregator) minSamples(window domain.Window) int {
	n := int(math.Ceil(a.minOverlapRatio * float64(window.Samples())))
	if n < minOverlapFloor {
		n = minOverlapFloor
	}
	return n
}

// combinedChange averages whichever window changes are defined.
func combinedChange(x, y tokenSeries) float64 {
	switch {
	case x.hasChange && y.hasChange:
		return (x.change + y.change) / 2
	case x.hasChange:
		return x.change
	case y.hasChange:
		return y.change
	default:
		return 0
	}
}
