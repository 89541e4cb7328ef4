package metrics

import (
	"time"

	obserrors "github.com/fixwave/fixwave-api/internal/observability/errors"
	"github.com/fixwave/fixwave-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// AuthMetric captures details about an auth state transition for metric emission.
type AuthMetric struct {
	Operation  string
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitAuthTransition emits standardised auth lifecycle metrics.
func EmitAuthTransition(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation":  in.Operation,
		"transition": in.Transition,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.duration", in.Duration, CloneTags(tags))
	}
}

// PollMetric captures a verification poll attempt for metric emission.
type PollMetric struct {
	Result  string
	Attempt int
	Err     error
}

// EmitPollAttempt emits per-attempt verification poll metrics.
func EmitPollAttempt(sink statsd.Sink, in PollMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("verification.poll", 1, tags)
	sink.Gauge("verification.attempt", float64(in.Attempt), CloneTags(tags))
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
