package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/target/deckgen/internal/domain/model"
)

// This file contains the ports between the pipeline and its collaborators.
// Services depend on these interfaces; internal/data, internal/storage and the
// adapters provide implementations.

// JobStore tracks the lifecycle of generation jobs. Keys are namespaced by job id
// so concurrent writers for distinct jobs never interfere.
type JobStore interface {
	// MarkQueued records a new job as queued together with its task reference.
	MarkQueued(ctx context.Context, jobID, taskRef string) error
	// MarkProcessing moves a job to processing and clears any error left by an earlier attempt.
	MarkProcessing(ctx context.Context, jobID string) error
	// Complete writes the result record and the completed status atomically.
	Complete(ctx context.Context, jobID string, result model.JobResult) error
	// Fail records the failed status and a short cause message.
	Fail(ctx context.Context, jobID, message string) error
	// Get returns the current view of a job or model.ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*model.JobView, error)
	// Delete removes every key of a job. Deleting an unknown id is not an error.
	Delete(ctx context.Context, jobID string) error
}

// WorkQueue carries tasks from the front-end to the worker pool.
type WorkQueue interface {
	Push(ctx context.Context, task *model.Task) error
	// Pop blocks up to timeout and returns model.ErrNoTasksAvailable when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (*model.Task, error)
	Depth(ctx context.Context) (int64, error)
}

// UsageCounter counts completed presentations per user and calendar day.
type UsageCounter interface {
	// Increment atomically adds one to the user's counter for day and returns the new value.
	Increment(ctx context.Context, userID string, day time.Time) (int64, error)
	Count(ctx context.Context, userID string, day time.Time) (int64, error)
}

// PresentationRepository persists the durable presentation catalog.
type PresentationRepository interface {
	Upsert(ctx context.Context, p *model.Presentation) error
	GetByID(ctx context.Context, id string) (*model.Presentation, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Presentation, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CompletionRequest is a single prompt sent to the generative text capability.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// TextGenerator produces free text for a prompt. Responses are untrusted.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrNoImage is returned by image providers that had no match for a query.
var ErrNoImage = errors.New("no image for query")

// ImageProvider returns raw image bytes for a search query.
type ImageProvider interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]byte, error)
}

// Publisher uploads finished documents to durable storage.
type Publisher interface {
	// Publish uploads the file at localPath under key and returns a retrieval URL.
	Publish(ctx context.Context, localPath, key string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
