// Package correlation implements Pearson correlation over return series.
package correlation

import (
	"math"

	"github.com/pkg/errors"
)

// ErrUndefined is returned when a correlation has no defined value: fewer
// than two samples, or a series with zero variance.
var ErrUndefined = errors.New("correlation undefined")

// Stats holds the running sums of one series, so per-series work is done
// once per token instead of once per pair.
type Stats struct {
	N     int
	Sum   float64
	SumSq float64
}

// NewStats accumulates the sums of xs.
func NewStats(xs []float64) Stats {
	s := Stats{N: len(xs)}
	for _, x := range xs {
		s.Sum += x
		s.SumSq += x * x
	}
	return s
}

// scaledVariance is n*Σx² - (Σx)², the variance term of the Pearson
// denominator before division by n².
func (s Stats) scaledVariance() float64 {
	return float64(s.N)*s.SumSq - s.Sum*s.Sum
}

// Dot returns Σ x[i]*y[i] over the first n elements.
func Dot(x, y []float64, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		sum += x[i] * y[i]
	}
	return sum
}

// Corr computes the Pearson coefficient from precomputed per-series sums and
// the cross sum. Both series must cover the same samples in the same order.
func Corr(sx, sy Stats, sumXY float64) (float64, error) {
	if sx.N != sy.N {
		return 0, errors.Errorf("sample count mismatch: %d vs %d", sx.N, sy.N)
	}
	if sx.N < 2 {
		return 0, ErrUndefined
	}

	vx := sx.scaledVariance()
	vy := sy.scaledVariance()
	if vx <= 0 || vy <= 0 {
		return 0, ErrUndefined
	}

	num := float64(sx.N)*sumXY - sx.Sum*sy.Sum
	return num / math.Sqrt(vx*vy), nil
}

// Pearson computes the Pearson correlation coefficient of two series over
// their first min(len(x), len(y)) samples.
func Pearson(x, y []float64) (float64, error) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	return Corr(NewStats(x[:n]), NewStats(y[:n]), Dot(x, y, n))
}
