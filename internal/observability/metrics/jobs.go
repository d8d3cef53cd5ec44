// Package metrics emits the standard pipeline metrics for generation jobs.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/target/deckgen/internal/observability/errors"
	"github.com/target/deckgen/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultFallback = "fallback"
	ResultMiss     = "miss"
)

// Stage names the pipeline step a metric belongs to.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageAssemble Stage = "assemble"
	StagePublish  Stage = "publish"
	StageRecord   Stage = "record"
	StageJob      Stage = "job"
	StageImage    Stage = "image"
)

// StageMetric captures one pipeline event for metric emission.
type StageMetric struct {
	Stage    Stage
	Result   string
	Attempt  int
	Provider string
	Duration time.Duration
	Err      error
}

// Emit sends the counter and, when a duration is present, the timer for in.
func Emit(sink statsd.Sink, in StageMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"stage":  string(in.Stage),
		"result": in.Result,
	}
	if in.Attempt > 0 {
		tags["attempt"] = strconv.Itoa(in.Attempt)
	}
	if in.Provider != "" {
		tags["provider"] = in.Provider
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("pipeline.stage", 1, tags)
	if in.Duration > 0 {
		sink.Timing("pipeline.stage.duration", in.Duration, cloneTags(tags))
	}
}

// QueueDepth records the number of waiting tasks.
func QueueDepth(sink statsd.Sink, depth int64) {
	if sink == nil {
		return
	}
	sink.Gauge("queue.depth", float64(depth), nil)
}

func cloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
