package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoinGecko(t *testing.T, handler http.HandlerFunc) *CoinGecko {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCoinGecko(5*time.Second, "").WithBaseURL(srv.URL)
}

func TestCoinGecko_Markets(t *testing.T) {
	t.Run("decodes rows and sends ranking params", func(t *testing.T) {
		var gotQuery map[string]string
		api := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/markets", r.URL.Path)
			gotQuery = map[string]string{
				"vs_currency":             r.URL.Query().Get("vs_currency"),
				"order":                   r.URL.Query().Get("order"),
				"per_page":                r.URL.Query().Get("per_page"),
				"page":                    r.URL.Query().Get("page"),
				"price_change_percentage": r.URL.Query().Get("price_change_percentage"),
			}
			w.Write([]byte(`[
				{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,
				 "market_cap":1000000000000,"total_volume":25000000000,
				 "price_change_percentage_24h":1.5,
				 "price_change_percentage_7d_in_currency":-2.25},
				{"id":"tether","symbol":"usdt","name":"Tether","current_price":1,
				 "market_cap":90000000000,"total_volume":50000000000}
			]`))
		})

		rows, err := api.Markets(context.Background(), "usd", 2, 250)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "usd", gotQuery["vs_currency"])
		assert.Equal(t, "market_cap_desc", gotQuery["order"])
		assert.Equal(t, "250", gotQuery["per_page"])
		assert.Equal(t, "2", gotQuery["page"])
		assert.Equal(t, "24h,7d,30d,1y", gotQuery["price_change_percentage"])

		assert.Equal(t, "bitcoin", rows[0].ID)
		assert.Equal(t, "btc", rows[0].Symbol)
		require.NotNil(t, rows[0].MarketCap)
		assert.Equal(t, 1e12, *rows[0].MarketCap)
		require.NotNil(t, rows[0].Change7d)
		assert.Equal(t, -2.25, *rows[0].Change7d)
		assert.Nil(t, rows[1].Change24h)
	})

	t.Run("rate limited", func(t *testing.T) {
		api := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := api.Markets(context.Background(), "usd", 1, 10)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("malformed payload", func(t *testing.T) {
		api := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"a list"}`))
		})

		_, err := api.Markets(context.Background(), "usd", 1, 10)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestCoinGecko_MarketChart(t *testing.T) {
	t.Run("decodes daily prices", func(t *testing.T) {
		api := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
			assert.Equal(t, "91", r.URL.Query().Get("days"))
			assert.Equal(t, "daily", r.URL.Query().Get("interval"))
			w.Write([]byte(`{"prices":[[1700000000000,37000.5],[1700086400000,37500.25]]}`))
		})

		prices, err := api.MarketChart(context.Background(), "bitcoin", "usd", 91)
		require.NoError(t, err)
		require.Len(t, prices, 2)
		assert.Equal(t, 1700000000000.0, prices[0][0])
		assert.Equal(t, 37000.5, prices[0][1])
	})

	t.Run("unknown coin", func(t *testing.T) {
		api := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := api.MarketChart(context.Background(), "nope", "usd", 30)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error is retryable", func(t *testing.T) {
		api := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := api.MarketChart(context.Background(), "bitcoin", "usd", 30)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.True(t, IsRetryable(err))
	})
}

func TestCoinGecko_APIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-cg-demo-api-key")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	api := NewCoinGecko(5*time.Second, "demo-key").WithBaseURL(srv.URL)
	_, err := api.Markets(context.Background(), "usd", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "demo-key", gotKey)
}
