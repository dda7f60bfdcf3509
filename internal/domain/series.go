package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// PricePoint is a single daily close.
type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
}

// PriceSeries daily close prices ordered by time.
type PriceSeries []PricePoint

// Normalize prepares a raw provider series for correlation math: timestamps
// are truncated to UTC days keeping the last sample per day, the series is
// sorted ascending, interior gaps of up to maxGapFill days are forward-filled
// with the last known price, and only the trailing contiguous run of days is
// kept. Gaps wider than maxGapFill therefore discard everything before them.
func (s PriceSeries) Normalize(maxGapFill int) PriceSeries {
	if len(s) == 0 {
		return nil
	}

	type sample struct {
		seen  time.Time
		price decimal.Decimal
	}
	byDay := make(map[time.Time]sample, len(s))
	for _, p := range s {
		d := p.Time.UTC().Truncate(day)
		prev, ok := byDay[d]
		if !ok || !p.Time.Before(prev.seen) {
			byDay[d] = sample{seen: p.Time, price: p.Price}
		}
	}

	days := make(PriceSeries, 0, len(byDay))
	for d, smp := range byDay {
		days = append(days, PricePoint{Time: d, Price: smp.price})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Time.Before(days[j].Time) })

	out := PriceSeries{days[0]}
	for i := 1; i < len(days); i++ {
		gap := int(days[i].Time.Sub(days[i-1].Time)/day) - 1
		switch {
		case gap == 0:
			out = append(out, days[i])
		case gap <= maxGapFill:
			last := out[len(out)-1]
			for d := 1; d <= gap; d++ {
				out = append(out, PricePoint{Time: last.Time.Add(time.Duration(d) * day), Price: last.Price})
			}
			out = append(out, days[i])
		default:
			out = append(out[:0], days[i])
		}
	}

	return out
}

// Tail returns the trailing n points, or the whole series when it is shorter.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Returns converts the series to daily percentage returns. The first element
// is always zero, so the result has the same length as the price series.
func (s PriceSeries) Returns() ReturnSeries {
	if len(s) == 0 {
		return nil
	}
	out := make(ReturnSeries, len(s))
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Price.InexactFloat64()
		if prev == 0 {
			continue
		}
		cur := s[i].Price.InexactFloat64()
		out[i] = (cur - prev) / prev * 100
	}
	return out
}

// ChangePct returns the percentage change between the first and last close.
// The second value is false when the series is too short to have a change.
func (s PriceSeries) ChangePct() (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	first := s[0].Price.InexactFloat64()
	if first == 0 {
		return 0, false
	}
	last := s[len(s)-1].Price.InexactFloat64()
	return (last - first) / first * 100, true
}

// Invert replaces every price with its reciprocal, dropping zero prices.
// Used when a token is priced through a proxy pair quoted the other way
// around.
func (s PriceSeries) Invert() PriceSeries {
	out := make(PriceSeries, 0, len(s))
	one := decimal.NewFromInt(1)
	for _, p := range s {
		if p.Price.IsZero() {
			continue
		}
		out = append(out, PricePoint{Time: p.Time, Price: one.Div(p.Price)})
	}
	return out
}

// ReturnSeries daily percentage returns aligned with a price series.
type ReturnSeries []float64

// Tail returns a copy of the trailing n returns with the first element
// zeroed, matching what Returns would produce on the trimmed prices.
func (r ReturnSeries) Tail(n int) ReturnSeries {
	if n > len(r) {
		n = len(r)
	}
	if n == 0 {
		return nil
	}
	out := make(ReturnSeries, n)
	copy(out, r[len(r)-n:])
	out[0] = 0
	return out
}
