// Package testutil provides testing utilities and helpers for the deck generation service.
package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/target/deckgen/internal/domain/model"
)

// TaskBuilder provides a fluent interface for building Task values for testing.
type TaskBuilder struct {
	task *model.Task
}

// NewTask creates a new TaskBuilder with sensible defaults.
func NewTask() *TaskBuilder {
	return &TaskBuilder{
		task: &model.Task{
			ID:         uuid.NewString(),
			JobID:      uuid.NewString(),
			Topic:      "Cloud Migration Strategy for Mid-Size Enterprises",
			SlideCount: 10,
			UserID:     "user-1",
			ClientID:   "client-1",
			EnqueuedAt: TestTime(),
		},
	}
}

// WithJobID sets the job id.
func (b *TaskBuilder) WithJobID(id string) *TaskBuilder {
	b.task.JobID = id
	return b
}

// WithTopic sets the topic.
func (b *TaskBuilder) WithTopic(topic string) *TaskBuilder {
	b.task.Topic = topic
	return b
}

// WithSlideCount sets the requested slide count.
func (b *TaskBuilder) WithSlideCount(n int) *TaskBuilder {
	b.task.SlideCount = n
	return b
}

// WithUser sets the initiating user.
func (b *TaskBuilder) WithUser(userID string) *TaskBuilder {
	b.task.UserID = userID
	return b
}

// WithEnqueuedAt sets the enqueue timestamp.
func (b *TaskBuilder) WithEnqueuedAt(at time.Time) *TaskBuilder {
	b.task.EnqueuedAt = at
	return b
}

// Build returns the built task.
func (b *TaskBuilder) Build() *model.Task {
	t := *b.task
	return &t
}

// ContentSlides returns n plain content slides with three bullets each.
func ContentSlides(n int) []model.SlideRecord {
	out := make([]model.SlideRecord, 0, n)
	for i := range n {
		out = append(out, model.SlideRecord{
			Title:      "Slide " + string(rune('A'+i%26)),
			Content:    []string{"first point", "second point", "third point"},
			SlideType:  model.SlideTypeContent,
			Layout:     model.LayoutContent,
			ImageQuery: "business",
		})
	}
	return out
}
