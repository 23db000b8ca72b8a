package metrics

import "time"

// Phase names a timed step of content processing.
type Phase string

const (
	PhaseLoadParse Phase = "load_parse"
	PhaseEvaluate  Phase = "evaluate"
	PhaseSummary   Phase = "summary"
)

// ResultLabel enumerates include resolution outcomes.
type ResultLabel string

const (
	ResultResolved ResultLabel = "resolved"
	ResultRejected ResultLabel = "rejected"
)

// Recorder defines observability hooks for content loading. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObservePhaseDuration(phase Phase, d time.Duration)
	ObserveLoadDuration(d time.Duration)
	IncMessage(severity string)
	AddItems(kind string, n int)
	IncIncludeResult(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(Phase, time.Duration) {}
func (NoopRecorder) ObserveLoadDuration(time.Duration)         {}
func (NoopRecorder) IncMessage(string)                         {}
func (NoopRecorder) AddItems(string, int)                      {}
func (NoopRecorder) IncIncludeResult(ResultLabel)              {}
