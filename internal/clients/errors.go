package clients

import (
	"context"
	"net"

	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
)

// Sentinel errors classifying provider failures. Callers branch on these
// with errors.Is to decide between retrying, falling back and dropping.
var (
	// ErrRateLimited the provider asked us to slow down (HTTP 429 or an
	// exchange-specific rate limit code).
	ErrRateLimited = errors.New("provider rate limited")
	// ErrNotFound the requested symbol or asset is unknown to the provider.
	ErrNotFound = errors.New("not found")
	// ErrMalformed the provider answered with a payload we cannot decode.
	ErrMalformed = errors.New("malformed provider response")
	// ErrUnavailable the provider failed transiently (HTTP 5xx).
	ErrUnavailable = errors.New("provider unavailable")
)

// Binance API error codes that map onto the sentinels above.
const (
	binanceCodeTooManyRequests = -1003
	binanceCodeRateLimitBan    = -1015
	binanceCodeInvalidSymbol   = -1121
)

// ClassifyBinance folds a go-binance error into the client error taxonomy.
// Errors without a known mapping pass through unchanged.
func ClassifyBinance(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case binanceCodeInvalidSymbol:
			return errors.Wrapf(ErrNotFound, "binance: %s", apiErr.Message)
		case binanceCodeTooManyRequests, binanceCodeRateLimitBan:
			return errors.Wrapf(ErrRateLimited, "binance: %s", apiErr.Message)
		}
	}
	return err
}

// IsRetryable reports whether a failed call may succeed on a later attempt.
// Not-found and malformed responses are final; rate limits, provider
// outages and network timeouts are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
