package ratelimit

import (
	"context"
	"time"

	"github.com/noah-isme/backend-tax/internal/resilience"
)

// FallbackLimiter prefers Primary and switches to Secondary while the
// breaker reports Primary as unhealthy.
type FallbackLimiter struct {
	Primary   Allower
	Secondary Allower
	Breaker   *resilience.Breaker
}

// Allow implements Allower.
func (f FallbackLimiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if f.Primary == nil || f.Breaker == nil {
		return f.secondary(ctx, key, window, limit)
	}
	var (
		allowed   bool
		remaining int
		reset     time.Time
	)
	err := f.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		allowed, remaining, reset, err = f.Primary.Allow(ctx, key, window, limit)
		return err
	})
	if err != nil {
		return f.secondary(ctx, key, window, limit)
	}
	return allowed, remaining, reset, nil
}

func (f FallbackLimiter) secondary(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if f.Secondary == nil {
		return true, limit, time.Now().Add(window), nil
	}
	return f.Secondary.Allow(ctx, key, window, limit)
}
