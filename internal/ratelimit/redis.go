package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiter shares fixed window counters between instances. Each key's
// counter expires with its window.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + key

	count, err := r.client.Do(ctx, r.client.B().Incr().Key(redisKey).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", redisKey, err)
	}

	if count == 1 {
		cmd := r.client.B().Expire().Key(redisKey).Seconds(int64(r.window / time.Second)).Build()
		if err := r.client.Do(ctx, cmd).Error(); err != nil {
			return false, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	return count <= int64(r.limit), nil
}
