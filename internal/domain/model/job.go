// Package model defines the core data types shared across the deck generation pipeline.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current status of a generation job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusQueued indicates the job was accepted and is waiting for a worker.
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing indicates a worker is running an attempt for the job.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the deck was built and published.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the latest attempt failed.
	JobStatusFailed JobStatus = "failed"
)

// ErrJobNotFound is returned when no status is recorded for a job id.
var ErrJobNotFound = errors.New("job not found")

// ErrJobDeleted is returned by job writes that arrive after the job was deleted.
var ErrJobDeleted = errors.New("job deleted")

// ErrNoTasksAvailable is returned when the work queue had nothing to hand out.
var ErrNoTasksAvailable = errors.New("no tasks available")

// ErrDailyLimitReached is returned when a user exhausted their daily generation allowance.
var ErrDailyLimitReached = errors.New("daily presentation limit reached")

// Valid returns true if the JobStatus is one of the known states.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusProcessing || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// Terminal reports whether no further transition is expected from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", v)
	}
	*s = v
	return nil
}

// Task is the unit of work handed from the front-end to the worker pool.
type Task struct {
	ID         string    `json:"id"`
	JobID      string    `json:"job_id"`
	Topic      string    `json:"topic"`
	SlideCount int       `json:"slide_count"`
	UserID     string    `json:"user_id"`
	ClientID   string    `json:"client_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// JobResult is recorded once a job completes.
type JobResult struct {
	Status      JobStatus `json:"status"`
	DownloadURL string    `json:"download_url"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
	Topic       string    `json:"topic"`
	// SlideCount is the number of generated slide records.
	SlideCount int `json:"slide_count"`
	// RenderedSlides also counts title, divider and closing slides added by the assembler.
	RenderedSlides int `json:"rendered_slides,omitempty"`
}

// JobView is the read model exposed to status callers.
// Result is set only when Status is completed and Error only when it is failed.
type JobView struct {
	ID      string     `json:"presentation_id"`
	Status  JobStatus  `json:"status"`
	Result  *JobResult `json:"result,omitempty"`
	Error   string     `json:"error,omitempty"`
	TaskRef string     `json:"-"`
}
