package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu   sync.Mutex
	rows []recordedMetric
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.add(recordedMetric{"count", name, float64(value), tags})
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.add(recordedMetric{"gauge", name, value, tags})
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.add(recordedMetric{"timing", name, float64(value.Milliseconds()), tags})
}

func (s *recordingSink) add(m recordedMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, m)
}

func TestEmit(t *testing.T) {
	sink := &recordingSink{}
	Emit(sink, StageMetric{
		Stage:    StagePublish,
		Result:   ResultError,
		Attempt:  2,
		Duration: 1500 * time.Millisecond,
		Err:      context.DeadlineExceeded,
	})

	require.Len(t, sink.rows, 2)
	assert.Equal(t, "pipeline.stage", sink.rows[0].name)
	assert.Equal(t, map[string]string{
		"stage": "publish", "result": "error", "attempt": "2", "error_class": "timeout",
	}, sink.rows[0].tags)
	assert.Equal(t, "timing", sink.rows[1].kind)
	assert.InDelta(t, 1500, sink.rows[1].value, 0.1)

	Emit(nil, StageMetric{Stage: StageJob})
	QueueDepth(sink, 7)
	assert.Equal(t, "queue.depth", sink.rows[2].name)
}
