package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesCache(t *testing.T) {
	t.Run("entry expires after ttl", func(t *testing.T) {
		cache := newSeriesCache(time.Minute)
		current := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return current }

		cache.put("bitcoin", dailySeries(3))

		got, ok := cache.get("bitcoin")
		require.True(t, ok)
		assert.Len(t, got, 3)

		current = current.Add(time.Minute + time.Second)
		_, ok = cache.get("bitcoin")
		assert.False(t, ok)
	})

	t.Run("fresh put resets the clock", func(t *testing.T) {
		cache := newSeriesCache(time.Minute)
		current := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return current }

		cache.put("bitcoin", dailySeries(3))
		current = current.Add(50 * time.Second)
		cache.put("bitcoin", dailySeries(5))
		current = current.Add(50 * time.Second)

		got, ok := cache.get("bitcoin")
		require.True(t, ok)
		assert.Len(t, got, 5)
	})

	t.Run("zero ttl keeps entries forever", func(t *testing.T) {
		cache := newSeriesCache(0)
		current := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return current }

		cache.put("bitcoin", dailySeries(3))
		current = current.Add(240 * time.Hour)

		_, ok := cache.get("bitcoin")
		assert.True(t, ok)
	})

	t.Run("unknown key misses", func(t *testing.T) {
		cache := newSeriesCache(time.Minute)
		_, ok := cache.get("nope")
		assert.False(t, ok)
	})
}
