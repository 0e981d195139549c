package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProbe pings client within the probe timeout.
func RedisProbe(client *redis.Client) Probe {
	return func(ctx context.Context, timeout time.Duration) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}
