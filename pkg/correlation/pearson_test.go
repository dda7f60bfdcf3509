package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	t.Run("self correlation is one", func(t *testing.T) {
		x := []float64{0, 1.2, -0.5, 3.4, 0.1}

		r, err := Pearson(x, x)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, r, 1e-12)
	})

	t.Run("symmetry", func(t *testing.T) {
		x := []float64{0, 1, 2, 1, 3}
		y := []float64{0, 2, 1, 4, 2}

		rxy, err := Pearson(x, y)
		require.NoError(t, err)
		ryx, err := Pearson(y, x)
		require.NoError(t, err)
		assert.Equal(t, rxy, ryx)
	})

	t.Run("invariant under affine scaling", func(t *testing.T) {
		x := []float64{0, 1, -2, 3, 0.5}
		y := []float64{0, 0.3, 1.1, -0.2, 2}

		scaled := make([]float64, len(x))
		for i, v := range x {
			scaled[i] = 2*v + 3
		}

		r, err := Pearson(x, y)
		require.NoError(t, err)
		rScaled, err := Pearson(scaled, y)
		require.NoError(t, err)
		assert.InDelta(t, r, rScaled, 1e-12)
	})

	t.Run("perfect inverse correlation", func(t *testing.T) {
		x := []float64{1, 2, 3, 4}
		y := []float64{4, 3, 2, 1}

		r, err := Pearson(x, y)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, r, 1e-12)
	})

	t.Run("known value", func(t *testing.T) {
		// r = (n*Σxy - Σx*Σy) / sqrt((n*Σx²-(Σx)²)(n*Σy²-(Σy)²))
		// x = {1,2,3}, y = {1,2,4}: Σx=6 Σy=7 Σxy=17 Σx²=14 Σy²=21
		// r = (51-42)/sqrt((42-36)(63-49)) = 9/sqrt(84) ≈ 0.98198
		r, err := Pearson([]float64{1, 2, 3}, []float64{1, 2, 4})
		require.NoError(t, err)
		assert.InDelta(t, 0.9819805060619659, r, 1e-12)
	})

	t.Run("truncates to the shorter series", func(t *testing.T) {
		x := []float64{1, 2, 3}
		yLong := []float64{1, 2, 4, 100, -50}

		r, err := Pearson(x, yLong)
		require.NoError(t, err)
		rShort, err := Pearson(x, yLong[:3])
		require.NoError(t, err)
		assert.Equal(t, rShort, r)
	})

	t.Run("zero variance is undefined", func(t *testing.T) {
		_, err := Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrUndefined)

		_, err = Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})
		assert.ErrorIs(t, err, ErrUndefined)
	})

	t.Run("fewer than two samples is undefined", func(t *testing.T) {
		_, err := Pearson([]float64{1}, []float64{2})
		assert.ErrorIs(t, err, ErrUndefined)

		_, err = Pearson(nil, []float64{1, 2})
		assert.ErrorIs(t, err, ErrUndefined)
	})
}

func TestCorr(t *testing.T) {
	t.Run("matches Pearson", func(t *testing.T) {
		x := []float64{0, 1.5, -2.2, 0.7}
		y := []float64{0, -0.4, 1.9, 2.3}

		want, err := Pearson(x, y)
		require.NoError(t, err)

		got, err := Corr(NewStats(x), NewStats(y), Dot(x, y, len(x)))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("sample count mismatch", func(t *testing.T) {
		_, err := Corr(NewStats([]float64{1, 2}), NewStats([]float64{1, 2, 3}), 0)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUndefined)
	})
}

func TestNewStats(t *testing.T) {
	s := NewStats([]float64{1, 2, 3})
	assert.Equal(t, 3, s.N)
	assert.Equal(t, 6.0, s.Sum)
	assert.Equal(t, 14.0, s.SumSq)
}
