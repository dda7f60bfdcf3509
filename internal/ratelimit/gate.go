// Package ratelimit spaces outbound provider calls so a whole run shares one
// request budget per provider regardless of worker count.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate enforces a minimum interval between calls to one provider. A single
// Gate is shared by every worker for the lifetime of a run.
type Gate struct {
	name string
	lim  *rate.Limiter
}

// NewGate creates a gate allowing one call per minInterval. A non-positive
// interval disables spacing.
func NewGate(name string, minInterval time.Duration) *Gate {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Gate{name: name, lim: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call is allowed or the context is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.lim.Wait(ctx)
}

// Name returns the provider name the gate guards.
func (g *Gate) Name() string {
	return g.name
}
