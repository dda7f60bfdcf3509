package clients

import (
	"github.com/hirokisan/bybit/v2"
)

// NewBybit creates a Bybit V5 REST client. Public market endpoints need no
// credentials; auth is applied only when both keys are provided.
func NewBybit(apiKey, apiSecret string) *bybit.Client {
	client := bybit.NewClient()
	if apiKey != "" && apiSecret != "" {
		client = client.WithAuth(apiKey, apiSecret)
	}
	return client
}
