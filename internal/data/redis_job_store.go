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

const (
	defaultStatusTTL = time.Hour
	defaultURLTTL    = 7 * 24 * time.Hour
)

// JobStoreConfig holds the retention windows for job keys.
type JobStoreConfig struct {
	StatusTTL time.Duration // status, data, error and task_ref keys
	URLTTL    time.Duration // durable storage URL
}

// RedisJobStore implements core.JobStore on Redis.
//
// Keys for job J are job:{J}:status, job:{J}:data, job:{J}:error, job:{J}:task_ref and
// job:{J}:url. The braces force every key of a job into one cluster hash slot so
// MULTI/EXEC, WATCH and MGET work in cluster mode.
//
// Delete leaves a job:{J}:deleted marker for StatusTTL. Writes for a marked job
// fail with model.ErrJobDeleted so a worker still running an attempt cannot
// recreate the job.
type RedisJobStore struct {
	client    redis.UniversalClient
	statusTTL time.Duration
	urlTTL    time.Duration
}

// NewRedisJobStore creates a job store with the given retention windows.
func NewRedisJobStore(client redis.UniversalClient, cfg JobStoreConfig) *RedisJobStore {
	s := &RedisJobStore{client: client, statusTTL: cfg.StatusTTL, urlTTL: cfg.URLTTL}
	if s.statusTTL <= 0 {
		s.statusTTL = defaultStatusTTL
	}
	if s.urlTTL <= 0 {
		s.urlTTL = defaultURLTTL
	}
	return s
}

type jobKeys struct {
	status, data, err, taskRef, url, deleted string
}

func keysFor(jobID string) jobKeys {
	base := "job:{" + jobID + "}:"
	return jobKeys{
		status:  base + "status",
		data:    base + "data",
		err:     base + "error",
		taskRef: base + "task_ref",
		url:     base + "url",
		deleted: base + "deleted",
	}
}

// write runs fn in MULTI/EXEC unless the job carries the deleted marker. The
// marker is watched, so a Delete racing the write aborts the transaction.
func (s *RedisJobStore) write(ctx context.Context, k jobKeys, fn func(redis.Pipeliner) error) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, k.deleted).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.ErrJobDeleted
		}
		_, err = tx.TxPipelined(ctx, fn)
		return err
	}, k.deleted)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrJobDeleted
	}
	return err
}

// MarkQueued records the job as queued along with the reference to its task.
func (s *RedisJobStore) MarkQueued(ctx context.Context, jobID, taskRef string) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	k := keysFor(jobID)
	err := s.write(ctx, k, func(p redis.Pipeliner) error {
		p.Set(ctx, k.taskRef, taskRef, s.statusTTL)
		p.Set(ctx, k.status, string(model.JobStatusQueued), s.statusTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark queued: %w", err)
	}
	return nil
}

// MarkProcessing sets status=processing and drops the error of a previous attempt.
func (s *RedisJobStore) MarkProcessing(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	k := keysFor(jobID)
	err := s.write(ctx, k, func(p redis.Pipeliner) error {
		p.Del(ctx, k.err)
		p.Set(ctx, k.status, string(model.JobStatusProcessing), s.statusTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

// Complete writes the result record, the storage URL and status=completed in a single
// MULTI/EXEC block, so no reader observes completed without its result.
func (s *RedisJobStore) Complete(ctx context.Context, jobID string, result model.JobResult) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	result.Status = model.JobStatusCompleted
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	k := keysFor(jobID)
	err = s.write(ctx, k, func(p redis.Pipeliner) error {
		p.Set(ctx, k.data, payload, s.statusTTL)
		p.Set(ctx, k.url, result.DownloadURL, s.urlTTL)
		p.Del(ctx, k.err)
		p.Set(ctx, k.status, string(model.JobStatusCompleted), s.statusTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// Fail records status=failed with a short cause message.
func (s *RedisJobStore) Fail(ctx context.Context, jobID, message string) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	k := keysFor(jobID)
	err := s.write(ctx, k, func(p redis.Pipeliner) error {
		p.Set(ctx, k.err, message, s.statusTTL)
		p.Set(ctx, k.status, string(model.JobStatusFailed), s.statusTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// Get returns the current view of a job. Result is only populated for completed jobs
// and Error only for failed ones.
func (s *RedisJobStore) Get(ctx context.Context, jobID string) (*model.JobView, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}
	k := keysFor(jobID)
	vals, err := s.client.MGet(ctx, k.status, k.data, k.err, k.taskRef, k.url).Result()
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	status, ok := vals[0].(string)
	if !ok || status == "" {
		return nil, model.ErrJobNotFound
	}

	view := &model.JobView{ID: jobID, Status: model.JobStatus(status)}
	if ref, ok := vals[3].(string); ok {
		view.TaskRef = ref
	}

	switch view.Status {
	case model.JobStatusCompleted:
		view.Result = decodeResult(vals[1], vals[4])
	case model.JobStatusFailed:
		if msg, ok := vals[2].(string); ok {
			view.Error = msg
		}
	}
	return view, nil
}

// decodeResult rebuilds the result record. The data key expires before the URL key,
// so a missing data record still yields the durable URL.
func decodeResult(data, url any) *model.JobResult {
	res := &model.JobResult{Status: model.JobStatusCompleted}
	if raw, ok := data.(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), res); err != nil {
			res = &model.JobResult{Status: model.JobStatusCompleted}
		}
	}
	if u, ok := url.(string); ok && u != "" {
		res.DownloadURL = u
	}
	return res
}

// Delete removes all keys for jobID and marks it deleted. It is a no-op for unknown ids.
func (s *RedisJobStore) Delete(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	k := keysFor(jobID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k.status, k.data, k.err, k.taskRef, k.url)
		p.Set(ctx, k.deleted, "1", s.statusTTL)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}
