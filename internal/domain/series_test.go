package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day0(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func point(d int, price float64) PricePoint {
	return PricePoint{Time: day0(d), Price: decimal.NewFromFloat(price)}
}

func TestPriceSeries_Normalize(t *testing.T) {
	t.Run("sorts and truncates to days", func(t *testing.T) {
		s := PriceSeries{
			{Time: day0(2).Add(5 * time.Hour), Price: decimal.NewFromInt(3)},
			{Time: day0(0).Add(23 * time.Hour), Price: decimal.NewFromInt(1)},
			{Time: day0(1), Price: decimal.NewFromInt(2)},
		}

		got := s.Normalize(3)
		require.Len(t, got, 3)
		for i, want := range []int64{1, 2, 3} {
			assert.Equal(t, day0(i), got[i].Time)
			assert.True(t, got[i].Price.Equal(decimal.NewFromInt(want)))
		}
	})

	t.Run("keeps last sample per day", func(t *testing.T) {
		s := PriceSeries{
			{Time: day0(0).Add(1 * time.Hour), Price: decimal.NewFromInt(10)},
			{Time: day0(0).Add(20 * time.Hour), Price: decimal.NewFromInt(11)},
		}

		got := s.Normalize(3)
		require.Len(t, got, 1)
		assert.True(t, got[0].Price.Equal(decimal.NewFromInt(11)))
	})

	t.Run("forward fills small gaps", func(t *testing.T) {
		s := PriceSeries{point(0, 100), point(3, 130)} // days 1 and 2 missing

		got := s.Normalize(3)
		require.Len(t, got, 4)
		assert.True(t, got[1].Price.Equal(decimal.NewFromInt(100)))
		assert.True(t, got[2].Price.Equal(decimal.NewFromInt(100)))
		assert.True(t, got[3].Price.Equal(decimal.NewFromInt(130)))
		assert.Equal(t, day0(2), got[2].Time)
	})

	t.Run("wide gap keeps only the trailing run", func(t *testing.T) {
		s := PriceSeries{point(0, 1), point(1, 2), point(10, 3), point(11, 4)}

		got := s.Normalize(3)
		require.Len(t, got, 2)
		assert.Equal(t, day0(10), got[0].Time)
		assert.Equal(t, day0(11), got[1].Time)
	})

	t.Run("empty series", func(t *testing.T) {
		assert.Nil(t, PriceSeries{}.Normalize(3))
	})
}

func TestPriceSeries_Returns(t *testing.T) {
	t.Run("same length with zero head", func(t *testing.T) {
		s := PriceSeries{point(0, 100), point(1, 101), point(2, 102.01)}

		rets := s.Returns()
		require.Len(t, rets, 3)
		assert.Zero(t, rets[0])
		assert.InDelta(t, 1.0, rets[1], 1e-9)
		assert.InDelta(t, 1.0, rets[2], 1e-9)
	})

	t.Run("negative return", func(t *testing.T) {
		s := PriceSeries{point(0, 200), point(1, 100)}

		rets := s.Returns()
		assert.InDelta(t, -50.0, rets[1], 1e-9)
	})

	t.Run("zero previous price yields zero return", func(t *testing.T) {
		s := PriceSeries{point(0, 0), point(1, 5)}

		rets := s.Returns()
		assert.Zero(t, rets[1])
	})
}

func TestPriceSeries_ChangePct(t *testing.T) {
	tests := []struct {
		name   string
		series PriceSeries
		want   float64
		ok     bool
	}{
		{name: "up 4 percent", series: PriceSeries{point(0, 100), point(1, 102), point(2, 104)}, want: 4, ok: true},
		{name: "down 50 percent", series: PriceSeries{point(0, 10), point(1, 5)}, want: -50, ok: true},
		{name: "single point", series: PriceSeries{point(0, 10)}, ok: false},
		{name: "zero first price", series: PriceSeries{point(0, 0), point(1, 5)}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.series.ChangePct()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestPriceSeries_Tail(t *testing.T) {
	s := PriceSeries{point(0, 1), point(1, 2), point(2, 3)}

	assert.Len(t, s.Tail(2), 2)
	assert.Equal(t, day0(1), s.Tail(2)[0].Time)
	assert.Len(t, s.Tail(10), 3)
}

func TestPriceSeries_Invert(t *testing.T) {
	s := PriceSeries{point(0, 2), point(1, 0), point(2, 4)}

	got := s.Invert()
	require.Len(t, got, 2) // zero price dropped
	assert.True(t, got[0].Price.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, got[1].Price.Equal(decimal.NewFromFloat(0.25)))
}

func TestReturnSeries_Tail(t *testing.T) {
	t.Run("zeroes the first element", func(t *testing.T) {
		r := ReturnSeries{0, 1, 2, 3}

		got := r.Tail(2)
		require.Len(t, got, 2)
		assert.Zero(t, got[0])
		assert.Equal(t, 3.0, got[1])
	})

	t.Run("copy does not alias the source", func(t *testing.T) {
		r := ReturnSeries{0, 1, 2}

		got := r.Tail(3)
		got[1] = 42
		assert.Equal(t, 1.0, r[1])
	})

	t.Run("matches Returns on trimmed prices", func(t *testing.T) {
		s := PriceSeries{point(0, 100), point(1, 110), point(2, 99), point(3, 120)}

		fromTail := s.Returns().Tail(3)
		direct := s.Tail(3).Returns()
		assert.Equal(t, direct, fromTail)
	})

	t.Run("n larger than series", func(t *testing.T) {
		assert.Len(t, ReturnSeries{0, 1}.Tail(5), 2)
	})
}
