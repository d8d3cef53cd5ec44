// Package jobrunner executes presentation generation tasks pulled from the work queue.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/target/deckgen/internal/core"
	"github.com/target/deckgen/internal/domain/model"
	obserrors "github.com/target/deckgen/internal/observability/errors"
	"github.com/target/deckgen/internal/observability/metrics"
	"github.com/target/deckgen/internal/observability/notify"
	"github.com/target/deckgen/internal/observability/statsd"
	"github.com/target/deckgen/internal/observability/tracing"
	"github.com/target/deckgen/internal/pptx"
	"github.com/target/deckgen/internal/storage"
)

// ContentGenerator produces slide records. It never fails.
type ContentGenerator interface {
	Generate(ctx context.Context, topic string, slideCount int) []model.SlideRecord
}

// DeckAssembler renders slide records into a transient document.
type DeckAssembler interface {
	Assemble(ctx context.Context, slides []model.SlideRecord, jobID, topic string) (*pptx.Document, error)
}

// FailureNotifier receives notices for jobs that exhausted every attempt.
type FailureNotifier interface {
	NotifyJobFailure(ctx context.Context, payload notify.JobFailurePayload)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 60 * time.Second
	defaultPollTimeout = 5 * time.Second
	defaultDepthEvery  = 30 * time.Second
	queueErrorBackoff  = time.Second
	detachedTimeout    = 5 * time.Second
	maxFailureMessage  = 512
)

// RetryPolicy bounds attempts per job.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first; defaults to 3
	Backoff     time.Duration // fixed delay between attempts; defaults to 60s
}

// Pipeline groups the stage implementations.
type Pipeline struct {
	Generator ContentGenerator
	Assembler DeckAssembler
	Publisher core.Publisher
}

// Stores groups the state the runner writes.
type Stores struct {
	Jobs    core.JobStore
	Queue   core.WorkQueue
	Usage   core.UsageCounter
	Catalog core.PresentationRepository // Optional
}

// RunnerOptions configures the runner.
type RunnerOptions struct {
	Pipeline Pipeline
	Stores   Stores
	Retry    RetryPolicy

	Concurrency int           // number of worker goroutines; defaults to 1
	PollTimeout time.Duration // blocking pop timeout; defaults to 5s
	KeyPrefix   string        // storage key prefix for published decks

	Logger          *slog.Logger
	Metrics         statsd.Sink
	FailureNotifier FailureNotifier

	Sleep SleepFunc
	Now   func() time.Time
}

// Runner pulls tasks and drives them through generate, assemble, publish and record.
type Runner struct {
	gen       ContentGenerator
	asm       DeckAssembler
	pub       core.Publisher
	jobs      core.JobStore
	queue     core.WorkQueue
	usage     core.UsageCounter
	catalog   core.PresentationRepository
	retry     RetryPolicy
	workers   int
	poll      time.Duration
	keyPrefix string
	logger    *slog.Logger
	metrics   statsd.Sink
	notifier  FailureNotifier
	sleep     SleepFunc
	now       func() time.Time
}

// NewRunner validates opts and constructs a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	switch {
	case opts.Pipeline.Generator == nil:
		return nil, errors.New("content generator is required")
	case opts.Pipeline.Assembler == nil:
		return nil, errors.New("deck assembler is required")
	case opts.Pipeline.Publisher == nil:
		return nil, errors.New("publisher is required")
	case opts.Stores.Jobs == nil:
		return nil, errors.New("job store is required")
	case opts.Stores.Usage == nil:
		return nil, errors.New("usage counter is required")
	}

	retry := opts.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.Backoff <= 0 {
		retry.Backoff = defaultBackoff
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = 1
	}
	poll := opts.PollTimeout
	if poll <= 0 {
		poll = defaultPollTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		gen:       opts.Pipeline.Generator,
		asm:       opts.Pipeline.Assembler,
		pub:       opts.Pipeline.Publisher,
		jobs:      opts.Stores.Jobs,
		queue:     opts.Stores.Queue,
		usage:     opts.Stores.Usage,
		catalog:   opts.Stores.Catalog,
		retry:     retry,
		workers:   workers,
		poll:      poll,
		keyPrefix: opts.KeyPrefix,
		logger:    logger.With("component", "job_runner"),
		metrics:   opts.Metrics,
		notifier:  opts.FailureNotifier,
		sleep:     sleep,
		now:       now,
	}, nil
}

// Run starts worker goroutines and processes tasks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.queue == nil {
		return errors.New("work queue is required to run workers")
	}
	r.logger.InfoContext(ctx, "starting job runner",
		"workers", r.workers, "max_attempts", r.retry.MaxAttempts, "backoff", r.retry.Backoff)

	g, gctx := errgroup.WithContext(ctx)
	for range r.workers {
		g.Go(func() error { return r.workerLoop(gctx) })
	}
	if r.metrics != nil {
		g.Go(func() error { return r.reportDepth(gctx) })
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) || err == nil {
		return ctx.Err()
	}
	return err
}

func (r *Runner) workerLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		task, err := r.queue.Pop(ctx, r.poll)
		switch {
		case err == nil:
			_ = r.Process(ctx, task)
		case errors.Is(err, model.ErrNoTasksAvailable):
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			r.logger.ErrorContext(ctx, "pop task failed", "error", err)
			if serr := r.sleep(ctx, queueErrorBackoff); serr != nil {
				return serr
			}
		}
	}
	return ctx.Err()
}

func (r *Runner) reportDepth(ctx context.Context) error {
	t := time.NewTicker(defaultDepthEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if depth, err := r.queue.Depth(ctx); err == nil {
				metrics.QueueDepth(r.metrics, depth)
			}
		}
	}
}

// Process runs task to a terminal state. Each attempt re-runs the whole pipeline;
// failed attempts are recorded before the backoff. The returned error is the
// last attempt's failure.
//
// A task interrupted by ctx cancellation is pushed back onto the queue with its
// job marked queued, or marked failed when that is not possible. Those writes
// use a context detached from ctx.
func (r *Runner) Process(ctx context.Context, task *model.Task) (err error) {
	if task == nil || task.JobID == "" {
		return errors.New("task with job id is required")
	}
	ctx, span := tracing.Start(ctx, "job.process",
		attribute.String("job_id", task.JobID), attribute.Int("slide_count", task.SlideCount))
	defer func() { tracing.End(span, err) }()

	start := r.now()
	log := r.logger.With("job_id", task.JobID, "user_id", task.UserID)

	var lastErr error
	for attempt := 1; attempt <= r.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if serr := r.sleep(ctx, r.retry.Backoff); serr != nil {
				log.WarnContext(ctx, "job interrupted during backoff", "attempt", attempt, "error", serr)
				r.requeue(ctx, task, log)
				return lastErr
			}
		}
		if cerr := ctx.Err(); cerr != nil {
			r.requeue(ctx, task, log)
			return cerr
		}

		result, aerr := r.attempt(ctx, task, attempt)
		switch {
		case aerr == nil:
			r.recordUsage(ctx, task, log)
			metrics.Emit(r.metrics, metrics.StageMetric{
				Stage: metrics.StageJob, Result: metrics.ResultSuccess, Attempt: attempt, Duration: r.now().Sub(start),
			})
			log.InfoContext(ctx, "job completed", "attempt", attempt, "slides", result.SlideCount)
			return nil
		case errors.Is(aerr, model.ErrJobDeleted):
			log.InfoContext(ctx, "job deleted while processing", "attempt", attempt)
			return aerr
		case ctx.Err() != nil:
			log.WarnContext(ctx, "job attempt interrupted", "attempt", attempt, "error", aerr)
			r.requeue(ctx, task, log)
			return aerr
		}

		lastErr = aerr
		r.recordFailure(ctx, task, failureMessage(aerr), log)
		metrics.Emit(r.metrics, metrics.StageMetric{
			Stage: metrics.StageJob, Result: metrics.ResultError, Attempt: attempt, Err: aerr,
		})
		log.ErrorContext(ctx, "job attempt failed",
			"attempt", attempt, "max_attempts", r.retry.MaxAttempts, "error", aerr)
	}

	span.SetAttributes(attribute.Int("attempts", r.retry.MaxAttempts))
	r.notifyExhausted(ctx, task, lastErr)
	return lastErr
}

// detached returns a context that survives cancellation of ctx for a bounded time.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
}

func (r *Runner) recordFailure(ctx context.Context, task *model.Task, msg string, log *slog.Logger) {
	dctx, cancel := detached(ctx)
	defer cancel()
	if err := r.jobs.Fail(dctx, task.JobID, msg); err != nil {
		log.ErrorContext(ctx, "record job failure", "error", err)
		return
	}
	r.upsertCatalog(dctx, task, model.JobStatusFailed, nil, log)
}

// requeue hands an interrupted task back to the queue. Attempts restart on the
// worker that picks it up.
func (r *Runner) requeue(ctx context.Context, task *model.Task, log *slog.Logger) {
	dctx, cancel := detached(ctx)
	defer cancel()
	if r.queue != nil {
		err := r.jobs.MarkQueued(dctx, task.JobID, task.ID)
		if errors.Is(err, model.ErrJobDeleted) {
			log.InfoContext(ctx, "interrupted job was deleted, dropping task")
			return
		}
		if err == nil {
			err = r.queue.Push(dctx, task)
		}
		if err == nil {
			r.upsertCatalog(dctx, task, model.JobStatusQueued, nil, log)
			log.InfoContext(ctx, "interrupted job requeued")
			return
		}
		log.ErrorContext(ctx, "requeue interrupted job", "error", err)
	}
	r.recordFailure(ctx, task, causeInterrupted, log)
}

func (r *Runner) attempt(ctx context.Context, task *model.Task, attempt int) (*model.JobResult, error) {
	if err := r.jobs.MarkProcessing(ctx, task.JobID); err != nil {
		return nil, stageFailed(causeStart, "mark processing", err)
	}
	r.upsertCatalog(ctx, task, model.JobStatusProcessing, nil, r.logger)

	slides := r.gen.Generate(ctx, task.Topic, task.SlideCount)

	doc, err := runStage(ctx, r, metrics.StageAssemble, attempt, func(ctx context.Context) (*pptx.Document, error) {
		return r.asm.Assemble(ctx, slides, task.JobID, task.Topic)
	})
	if err != nil {
		return nil, stageFailed(causeAssemble, "assemble", err)
	}
	defer func() {
		if rerr := doc.Remove(); rerr != nil {
			r.logger.WarnContext(ctx, "remove transient document", "job_id", task.JobID, "error", rerr)
		}
	}()

	key := storage.ObjectKey(r.keyPrefix, task.JobID)
	url, err := runStage(ctx, r, metrics.StagePublish, attempt, func(ctx context.Context) (string, error) {
		return r.pub.Publish(ctx, doc.Path, key)
	})
	if err != nil {
		return nil, stageFailed(causePublish, "publish", err)
	}

	result := model.JobResult{
		Status:         model.JobStatusCompleted,
		DownloadURL:    url,
		StorageKey:     key,
		CreatedAt:      r.now().UTC(),
		Topic:          task.Topic,
		SlideCount:     len(slides),
		RenderedSlides: doc.SlideCount,
	}
	if _, err := runStage(ctx, r, metrics.StageRecord, attempt, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.jobs.Complete(ctx, task.JobID, result)
	}); err != nil {
		if errors.Is(err, model.ErrJobDeleted) {
			r.discardUpload(ctx, task.JobID, key)
		}
		return nil, stageFailed(causeRecord, "record result", err)
	}
	r.upsertCatalog(ctx, task, model.JobStatusCompleted, &result, r.logger)
	return &result, nil
}

// discardUpload removes a deck published for a job deleted mid-attempt.
func (r *Runner) discardUpload(ctx context.Context, jobID, key string) {
	dctx, cancel := detached(ctx)
	defer cancel()
	if err := r.pub.Delete(dctx, key); err != nil {
		r.logger.WarnContext(ctx, "discard deck of deleted job", "job_id", jobID, "key", key, "error", err)
	}
}

// runStage runs fn inside a span and emits the stage metric.
func runStage[T any](ctx context.Context, r *Runner, stage metrics.Stage, attempt int, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracing.Start(ctx, "job."+string(stage), attribute.Int("attempt", attempt))
	start := time.Now()
	out, err := fn(ctx)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.Emit(r.metrics, metrics.StageMetric{
		Stage: stage, Result: result, Attempt: attempt, Duration: time.Since(start), Err: err,
	})
	tracing.End(span, err)
	return out, err
}

func (r *Runner) recordUsage(ctx context.Context, task *model.Task, log *slog.Logger) {
	if task.UserID == "" {
		return
	}
	dctx, cancel := detached(ctx)
	defer cancel()
	n, err := r.usage.Increment(dctx, task.UserID, r.now().UTC())
	if err != nil {
		log.ErrorContext(ctx, "increment usage counter", "error", err)
		return
	}
	log.DebugContext(ctx, "usage counter incremented", "presentations_today", n)
}

func (r *Runner) upsertCatalog(ctx context.Context, task *model.Task, status model.JobStatus, result *model.JobResult, log *slog.Logger) {
	if r.catalog == nil {
		return
	}
	p := &model.Presentation{
		ID:         task.JobID,
		UserID:     task.UserID,
		ClientID:   task.ClientID,
		Topic:      task.Topic,
		SlideCount: task.SlideCount,
		Status:     status,
		CreatedAt:  task.EnqueuedAt,
	}
	if result != nil {
		key, url, done := result.StorageKey, result.DownloadURL, result.CreatedAt
		p.StorageKey, p.DownloadURL, p.CompletedAt = &key, &url, &done
		p.SlideCount = result.SlideCount
	}
	if err := r.catalog.Upsert(ctx, p); err != nil {
		log.WarnContext(ctx, "update presentation catalog", "job_id", task.JobID, "status", status, "error", err)
	}
}

func (r *Runner) notifyExhausted(ctx context.Context, task *model.Task, err error) {
	if r.notifier == nil || err == nil {
		return
	}
	r.notifier.NotifyJobFailure(ctx, notify.JobFailurePayload{
		JobID:      task.JobID,
		UserID:     task.UserID,
		Topic:      task.Topic,
		Attempts:   r.retry.MaxAttempts,
		Error:      truncate(err.Error()),
		ErrorClass: obserrors.Classify(err),
		Severity:   notify.SeverityCritical,
		OccurredAt: r.now().UTC(),
		Metadata:   map[string]string{"component": "job_runner"},
	})
}

// Causes recorded on failed jobs. Status callers see these; the wrapped error is logged.
const (
	causeStart       = "failed to start job"
	causeAssemble    = "failed to assemble presentation"
	causePublish     = "failed to publish presentation"
	causeRecord      = "failed to record result"
	causeInterrupted = "interrupted by shutdown"
	causeUnknown     = "presentation generation failed"
)

// stageError ties a pipeline failure to the stage it happened in.
type stageError struct {
	cause string
	stage string
	err   error
}

func stageFailed(cause, stage string, err error) error {
	return &stageError{cause: cause, stage: stage, err: err}
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }

func (e *stageError) Unwrap() error { return e.err }

// failureMessage returns the short cause shown to status callers.
func failureMessage(err error) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.cause
	}
	return causeUnknown
}

// truncate caps msg at maxFailureMessage bytes on a rune boundary.
func truncate(msg string) string {
	if len(msg) <= maxFailureMessage {
		return msg
	}
	cut := maxFailureMessage
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
