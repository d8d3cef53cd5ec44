package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/deckgen/internal/domain/model"
)

// DefaultQueueKey is the Redis list carrying presentation tasks.
const DefaultQueueKey = "deckgen:queue:presentations"

// RedisWorkQueue is a FIFO work queue backed by a Redis list (LPUSH / BRPOP).
type RedisWorkQueue struct {
	client redis.UniversalClient
	key    string
}

// NewRedisWorkQueue creates a queue on key, or DefaultQueueKey when key is empty.
func NewRedisWorkQueue(client redis.UniversalClient, key string) *RedisWorkQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisWorkQueue{client: client, key: key}
}

// Push enqueues a task.
func (q *RedisWorkQueue) Push(ctx context.Context, task *model.Task) error {
	if task == nil {
		return ErrNilTask
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("push task: %w", err)
	}
	return nil
}

// Pop waits up to timeout for the oldest task.
func (q *RedisWorkQueue) Pop(ctx context.Context, timeout time.Duration) (*model.Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoTasksAvailable
		}
		return nil, fmt.Errorf("pop task: %w", err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("pop task: unexpected reply length %d", len(res))
	}
	var task model.Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// Depth returns the number of waiting tasks.
func (q *RedisWorkQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}
