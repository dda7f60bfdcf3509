package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGecko is a minimal REST client for the CoinGecko v3 API, covering the
// two endpoints the pipeline needs: the ranked markets listing and per-coin
// daily price history.
type CoinGecko struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewCoinGecko creates a CoinGecko client. The API key is optional; when set
// it is sent as the demo key header, which raises the rate limit.
func NewCoinGecko(timeout time.Duration, apiKey string) *CoinGecko {
	return &CoinGecko{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    coingeckoBaseURL,
		apiKey:     apiKey,
	}
}

// WithBaseURL overrides the API base URL, for tests.
func (c *CoinGecko) WithBaseURL(u string) *CoinGecko {
	c.baseURL = u
	return c
}

// MarketRow is one row of the /coins/markets listing.
type MarketRow struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice float64  `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	TotalVolume  *float64 `json:"total_volume"`
	Change24h    *float64 `json:"price_change_percentage_24h"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
	Change1y     *float64 `json:"price_change_percentage_1y_in_currency"`
}

// Markets fetches one page of coins ordered by descending market cap,
// including price, volume and the percentage change fields.
func (c *CoinGecko) Markets(ctx context.Context, vsCurrency string, page, perPage int) ([]MarketRow, error) {
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("price_change_percentage", "24h,7d,30d,1y")

	var rows []MarketRow
	if err := c.get(ctx, "/coins/markets", q, &rows); err != nil {
		return nil, errors.Wrap(err, "coingecko markets")
	}
	return rows, nil
}

// chartResponse mirrors /coins/{id}/market_chart: prices as [unix_ms, price].
type chartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// MarketChart fetches daily prices for one coin covering the last days days.
func (c *CoinGecko) MarketChart(ctx context.Context, id, vsCurrency string, days int) ([][2]float64, error) {
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")

	var resp chartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q, &resp); err != nil {
		return nil, errors.Wrapf(err, "coingecko market_chart for %s", id)
	}
	return resp.Prices, nil
}

func (c *CoinGecko) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.Wrapf(ErrRateLimited, "GET %s", path)
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "GET %s", path)
	case resp.StatusCode >= 500:
		return errors.Wrapf(ErrUnavailable, "GET %s: status %d", path, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("GET %s: unexpected status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrMalformed, "GET %s: %s", path, err)
	}
	return nil
}
