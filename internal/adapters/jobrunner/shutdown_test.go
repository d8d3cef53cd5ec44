package jobrunner_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/deckgen/internal/adapters/jobrunner"
	"github.com/target/deckgen/internal/domain/model"
	"github.com/target/deckgen/internal/pptx"
	"github.com/target/deckgen/internal/testutil"
)

// memJobStore keeps job status in memory and, like the Redis client, refuses
// to run commands on a done context.
type memJobStore struct {
	mu     sync.Mutex
	status map[string]model.JobStatus
	errs   map[string]string
}

func newMemJobStore() *memJobStore {
	return &memJobStore{status: map[string]model.JobStatus{}, errs: map[string]string{}}
}

func (s *memJobStore) set(ctx context.Context, jobID string, st model.JobStatus, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[jobID] = st
	s.errs[jobID] = msg
	return nil
}

func (s *memJobStore) MarkQueued(ctx context.Context, jobID, _ string) error {
	return s.set(ctx, jobID, model.JobStatusQueued, "")
}

func (s *memJobStore) MarkProcessing(ctx context.Context, jobID string) error {
	return s.set(ctx, jobID, model.JobStatusProcessing, "")
}

func (s *memJobStore) Complete(ctx context.Context, jobID string, _ model.JobResult) error {
	return s.set(ctx, jobID, model.JobStatusCompleted, "")
}

func (s *memJobStore) Fail(ctx context.Context, jobID, message string) error {
	return s.set(ctx, jobID, model.JobStatusFailed, message)
}

func (s *memJobStore) Get(ctx context.Context, jobID string) (*model.JobView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[jobID]
	if !ok {
		return nil, model.ErrJobNotFound
	}
	return &model.JobView{ID: jobID, Status: st, Error: s.errs[jobID]}, nil
}

func (s *memJobStore) Delete(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.status, jobID)
	delete(s.errs, jobID)
	return nil
}

type memQueue struct {
	mu    sync.Mutex
	tasks []*model.Task
}

func (q *memQueue) Push(ctx context.Context, task *model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *memQueue) Pop(ctx context.Context, _ time.Duration) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, model.ErrNoTasksAvailable
}

func (q *memQueue) Depth(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.tasks)), nil
}

func shutdownRunner(t *testing.T, h *harness, jobs *memJobStore, queue *memQueue) *jobrunner.Runner {
	t.Helper()
	stores := jobrunner.Stores{Jobs: jobs, Usage: h.usage}
	if queue != nil {
		stores.Queue = queue
	}
	r, err := jobrunner.NewRunner(jobrunner.RunnerOptions{
		Pipeline: jobrunner.Pipeline{Generator: h.gen, Assembler: h.asm, Publisher: h.pub},
		Stores:   stores,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			return ctx.Err()
		},
	})
	require.NoError(t, err)
	return r
}

// cancelDuringAssemble makes the assembler observe a shutdown mid-attempt.
func cancelDuringAssemble(cancel context.CancelFunc) func(context.Context, []model.SlideRecord, string, string) (*pptx.Document, error) {
	return func(ctx context.Context, _ []model.SlideRecord, _, _ string) (*pptx.Document, error) {
		cancel()
		return nil, ctx.Err()
	}
}

func TestProcess_ShutdownMidAttemptRequeuesTask(t *testing.T) {
	h := newHarness(t)
	jobs, queue := newMemJobStore(), &memQueue{}
	task := testutil.NewTask().WithJobID("job-s1").WithUser("user-s1").Build()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(testutil.ContentSlides(2))
	h.asm.EXPECT().Assemble(gomock.Any(), gomock.Any(), "job-s1", gomock.Any()).DoAndReturn(cancelDuringAssemble(cancel))
	// Usage is never incremented: no expectation on h.usage.

	err := shutdownRunner(t, h, jobs, queue).Process(ctx, task)
	require.Error(t, err)

	view, err := jobs.Get(context.Background(), "job-s1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, view.Status)
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, task, queue.tasks[0])
}

func TestProcess_ShutdownWithoutQueueMarksFailed(t *testing.T) {
	h := newHarness(t)
	jobs := newMemJobStore()
	task := testutil.NewTask().WithJobID("job-s2").Build()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(testutil.ContentSlides(1))
	h.asm.EXPECT().Assemble(gomock.Any(), gomock.Any(), "job-s2", gomock.Any()).DoAndReturn(cancelDuringAssemble(cancel))

	require.Error(t, shutdownRunner(t, h, jobs, nil).Process(ctx, task))

	view, err := jobs.Get(context.Background(), "job-s2")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, view.Status)
	assert.Equal(t, "interrupted by shutdown", view.Error)
}

func TestProcess_CancelledBeforeAttemptSkipsPipeline(t *testing.T) {
	h := newHarness(t)
	jobs, queue := newMemJobStore(), &memQueue{}
	task := testutil.NewTask().WithJobID("job-s3").Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// No generator, assembler or publisher expectations: none may run.

	err := shutdownRunner(t, h, jobs, queue).Process(ctx, task)
	require.ErrorIs(t, err, context.Canceled)

	view, err := jobs.Get(context.Background(), "job-s3")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, view.Status)
	assert.Len(t, queue.tasks, 1)
}

func TestProcess_ShutdownDuringBackoffRequeuesTask(t *testing.T) {
	h := newHarness(t)
	jobs, queue := newMemJobStore(), &memQueue{}
	task := testutil.NewTask().WithJobID("job-s4").Build()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(testutil.ContentSlides(1))
	h.asm.EXPECT().Assemble(gomock.Any(), gomock.Any(), "job-s4", gomock.Any()).DoAndReturn(h.assembleToTempFile(t))
	h.pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, string) (string, error) {
			return "", assert.AnError
		})

	r, err := jobrunner.NewRunner(jobrunner.RunnerOptions{
		Pipeline: jobrunner.Pipeline{Generator: h.gen, Assembler: h.asm, Publisher: h.pub},
		Stores:   jobrunner.Stores{Jobs: jobs, Queue: queue, Usage: h.usage},
		Sleep: func(context.Context, time.Duration) error {
			cancel()
			return context.Canceled
		},
	})
	require.NoError(t, err)
	require.ErrorIs(t, r.Process(ctx, task), assert.AnError)

	view, err := jobs.Get(context.Background(), "job-s4")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, view.Status)
	assert.Len(t, queue.tasks, 1)
}
