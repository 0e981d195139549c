package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tax/internal/resilience"
)

type countingAllower struct {
	calls int
	err   error
}

func (c *countingAllower) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	c.calls++
	if c.err != nil {
		return false, 0, time.Time{}, c.err
	}
	return true, limit - 1, time.Now().Add(window), nil
}

func TestFallbackLimiterUsesPrimary(t *testing.T) {
	primary := &countingAllower{}
	secondary := &countingAllower{}
	f := FallbackLimiter{Primary: primary, Secondary: secondary, Breaker: resilience.NewBreaker(resilience.Options{})}

	allowed, remaining, _, err := f.Allow(context.Background(), "ip:1", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 4, remaining)
	require.Equal(t, 1, primary.calls)
	require.Zero(t, secondary.calls)
}

func TestFallbackLimiterSkipsOpenPrimary(t *testing.T) {
	primary := &countingAllower{err: errors.New("connection refused")}
	secondary := &countingAllower{}
	breaker := resilience.NewBreaker(resilience.Options{MinRequests: 1, OpenFor: time.Hour})
	f := FallbackLimiter{Primary: primary, Secondary: secondary, Breaker: breaker}
	ctx := context.Background()

	allowed, _, _, err := f.Allow(ctx, "ip:1", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, resilience.Open, breaker.State())

	_, _, _, err = f.Allow(ctx, "ip:1", time.Minute, 5)
	require.NoError(t, err)
	require.Equal(t, 1, primary.calls, "open breaker must not call primary")
	require.Equal(t, 2, secondary.calls)
}

func TestFallbackLimiterRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer func() { _ = client.Close() }()
	f := FallbackLimiter{
		Primary:   RedisLimiter{Client: client, Prefix: "test:"},
		Secondary: NewMemoryLimiter(),
		Breaker:   resilience.NewBreaker(resilience.Options{Target: "redis", OpenFor: time.Hour}),
	}
	ctx := context.Background()

	allowed, _, _, err := f.Allow(ctx, "ip:1", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	mr.Close()
	allowed, _, _, err = f.Allow(ctx, "ip:2", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, resilience.Open, f.Breaker.State())

	allowed, _, _, err = f.Allow(ctx, "ip:2", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, allowed)
}
