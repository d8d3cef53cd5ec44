package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// usageCounterTTL keeps a day's counter around long enough to cover every time zone.
const usageCounterTTL = 48 * time.Hour

// RedisUsageCounter counts presentations per user and UTC calendar day.
type RedisUsageCounter struct {
	client redis.UniversalClient
}

// NewRedisUsageCounter creates a usage counter on client.
func NewRedisUsageCounter(client redis.UniversalClient) *RedisUsageCounter {
	return &RedisUsageCounter{client: client}
}

func usageKey(userID string, day time.Time) string {
	return "user:" + userID + ":" + day.UTC().Format(time.DateOnly)
}

// Increment atomically increments the counter with INCR; no read-modify-write.
func (c *RedisUsageCounter) Increment(ctx context.Context, userID string, day time.Time) (int64, error) {
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	key := usageKey(userID, day)
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, usageCounterTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment usage: %w", err)
	}
	return incr.Val(), nil
}

// Count returns the counter value, zero when absent.
func (c *RedisUsageCounter) Count(ctx context.Context, userID string, day time.Time) (int64, error) {
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	n, err := c.client.Get(ctx, usageKey(userID, day)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read usage: %w", err)
	}
	return n, nil
}
