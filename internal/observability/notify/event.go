// Package notify carries notices about generation jobs that ran out of attempts.
package notify

import (
	"context"
	"time"
)

// Severity values understood by the sinks.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// JobFailurePayload is one terminal failure. Error is the same short message the job
// store reports to callers; ErrorClass is the low-cardinality tag used in metrics.
type JobFailurePayload struct {
	JobID      string
	UserID     string
	Topic      string
	Attempts   int
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink delivers failure notices somewhere a human will see them.
type Sink interface {
	SendJobFailure(ctx context.Context, payload JobFailurePayload) error
}

// SinkFunc lets a plain function act as a Sink.
type SinkFunc func(ctx context.Context, payload JobFailurePayload) error

// SendJobFailure calls f. A nil SinkFunc drops the notice.
func (f SinkFunc) SendJobFailure(ctx context.Context, payload JobFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
