package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/deckgen/internal/domain/model"
	"github.com/target/deckgen/internal/testutil"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	store := NewRedisJobStore(client, JobStoreConfig{StatusTTL: time.Hour, URLTTL: 7 * 24 * time.Hour})
	ctx := context.Background()
	const jobID = "job-lifecycle"

	_, err := store.Get(ctx, jobID)
	require.ErrorIs(t, err, model.ErrJobNotFound)

	require.NoError(t, store.MarkQueued(ctx, jobID, "task-1"))
	view, err := store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, view.Status)
	assert.Equal(t, "task-1", view.TaskRef)
	assert.Nil(t, view.Result)
	assert.Empty(t, view.Error)

	require.NoError(t, store.Fail(ctx, jobID, "upload failed"))
	view, err = store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, view.Status)
	assert.Equal(t, "upload failed", view.Error)

	require.NoError(t, store.MarkProcessing(ctx, jobID))
	view, err = store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, view.Status)
	assert.Nil(t, view.Result)
	assert.Empty(t, view.Error, "processing must not expose the previous attempt's error")

	created := testutil.TestTime()
	require.NoError(t, store.Complete(ctx, jobID, model.JobResult{
		DownloadURL: "https://storage.example/presentations/job-lifecycle.pptx",
		StorageKey:  "presentations/job-lifecycle.pptx",
		CreatedAt:   created,
		Topic:       "Cloud Migration",
		SlideCount:  10,
	}))
	view, err = store.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, view.Status)
	require.NotNil(t, view.Result)
	assert.Equal(t, "https://storage.example/presentations/job-lifecycle.pptx", view.Result.DownloadURL)
	assert.Equal(t, 10, view.Result.SlideCount)
	assert.True(t, created.Equal(view.Result.CreatedAt))

	ttl := client.TTL(ctx, "job:{"+jobID+"}:url").Val()
	assert.Greater(t, ttl, time.Hour)
	ttl = client.TTL(ctx, "job:{"+jobID+"}:status").Val()
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestRedisJobStore_DeleteIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	store := NewRedisJobStore(client, JobStoreConfig{})
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-existed"))

	require.NoError(t, store.MarkQueued(ctx, "job-del", "task"))
	require.NoError(t, store.Delete(ctx, "job-del"))
	require.NoError(t, store.Delete(ctx, "job-del"))

	_, err := store.Get(ctx, "job-del")
	assert.ErrorIs(t, err, model.ErrJobNotFound)
}

func TestRedisJobStore_WritesAfterDeleteAreRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	store := NewRedisJobStore(client, JobStoreConfig{StatusTTL: time.Hour})
	ctx := context.Background()
	const jobID = "job-deleted-mid-attempt"

	require.NoError(t, store.MarkQueued(ctx, jobID, "task"))
	require.NoError(t, store.MarkProcessing(ctx, jobID))
	require.NoError(t, store.Delete(ctx, jobID))

	err := store.Complete(ctx, jobID, model.JobResult{DownloadURL: "https://x/" + jobID})
	require.ErrorIs(t, err, model.ErrJobDeleted)
	require.ErrorIs(t, store.Fail(ctx, jobID, "late failure"), model.ErrJobDeleted)
	require.ErrorIs(t, store.MarkProcessing(ctx, jobID), model.ErrJobDeleted)
	require.ErrorIs(t, store.MarkQueued(ctx, jobID, "task"), model.ErrJobDeleted)

	_, err = store.Get(ctx, jobID)
	require.ErrorIs(t, err, model.ErrJobNotFound)
	n, err := client.Exists(ctx, "job:{"+jobID+"}:url", "job:{"+jobID+"}:data").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.LessOrEqual(t, client.TTL(ctx, "job:{"+jobID+"}:deleted").Val(), time.Hour)
}

func TestRedisJobStore_ConcurrentJobsDoNotInterfere(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	store := NewRedisJobStore(client, JobStoreConfig{})
	ctx := context.Background()

	ids := []string{"a", "b", "c", "d", "e", "f"}
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.MarkProcessing(ctx, id)
			if i%2 == 0 {
				_ = store.Complete(ctx, id, model.JobResult{DownloadURL: "https://x/" + id})
				return
			}
			_ = store.Fail(ctx, id, "boom "+id)
		}()
	}
	wg.Wait()

	for i, id := range ids {
		view, err := store.Get(ctx, id)
		require.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, model.JobStatusCompleted, view.Status)
			assert.Equal(t, "https://x/"+id, view.Result.DownloadURL)
			continue
		}
		assert.Equal(t, model.JobStatusFailed, view.Status)
		assert.Equal(t, "boom "+id, view.Error)
	}
}
