package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/deckgen/internal/testutil"
)

func TestRedisUsageCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	counter := NewRedisUsageCounter(client)
	ctx := context.Background()
	day := testutil.TestTime()

	n, err := counter.Count(ctx, "u1", day)
	require.NoError(t, err)
	assert.Zero(t, n)

	const workers = 25
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = counter.Increment(ctx, "u1", day)
		}()
	}
	wg.Wait()

	n, err = counter.Count(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), n, "concurrent increments must not be lost")

	next, err := counter.Count(ctx, "u1", day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, next, "counters are per calendar day")

	ttl := client.TTL(ctx, "user:u1:2024-01-01").Val()
	assert.Greater(t, ttl, 24*time.Hour)

	_, err = counter.Increment(ctx, "", day)
	assert.ErrorIs(t, err, ErrUserIDRequired)
}
