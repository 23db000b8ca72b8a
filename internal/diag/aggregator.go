package diag

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Aggregator collects diagnostics and statistics for a build run. It never
// panics and never stops the caller; it only observes.
type Aggregator struct {
	logger    *slog.Logger
	recorder  metrics.Recorder
	runID     string
	messages  []Message
	hasErrors bool
	stats     *Stats
}

// NewAggregator creates an aggregator logging through logger (slog.Default when nil).
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	rec := metrics.Recorder(metrics.NoopRecorder{})
	return &Aggregator{
		logger:   logger,
		recorder: rec,
		stats:    newStats(rec),
	}
}

// WithRecorder sets the metrics recorder used for messages and phase timings.
func (a *Aggregator) WithRecorder(r metrics.Recorder) *Aggregator {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	a.recorder = r
	a.stats.recorder = r
	return a
}

// Recorder returns the metrics recorder.
func (a *Aggregator) Recorder() metrics.Recorder {
	return a.recorder
}

// SetRunID tags subsequent log records with the given build run id.
func (a *Aggregator) SetRunID(id string) {
	a.runID = id
}

// RunID returns the current build run id.
func (a *Aggregator) RunID() string {
	return a.runID
}

// Logger returns the logger, tagged with the run id when one is set.
func (a *Aggregator) Logger() *slog.Logger {
	if a.runID == "" {
		return a.logger
	}
	return a.logger.With(logfields.RunID(a.runID))
}

// Record appends msg and raises the sticky error flag for Error and Critical.
func (a *Aggregator) Record(msg Message) {
	a.messages = append(a.messages, msg)
	if msg.Severity.IsError() {
		a.hasErrors = true
	}
	a.recorder.IncMessage(msg.Severity.String())

	attrs := make([]slog.Attr, 0, 5)
	if msg.Span.File != "" {
		attrs = append(attrs, logfields.File(msg.Span.File))
	}
	if msg.Span.Line > 0 {
		attrs = append(attrs, logfields.Line(msg.Span.Line))
	}
	if msg.Span.Column > 0 {
		attrs = append(attrs, logfields.Column(msg.Span.Column))
	}
	if a.runID != "" {
		attrs = append(attrs, logfields.RunID(a.runID))
	}
	a.logger.LogAttrs(context.Background(), msg.Severity.level(), msg.Text, attrs...)
}

// Error records an Error message.
func (a *Aggregator) Error(span Span, format string, args ...any) {
	a.Record(Message{Severity: SeverityError, Span: span, Text: fmt.Sprintf(format, args...)})
}

// Warning records a Warning message.
func (a *Aggregator) Warning(span Span, format string, args ...any) {
	a.Record(Message{Severity: SeverityWarning, Span: span, Text: fmt.Sprintf(format, args...)})
}

// Info records an Info message.
func (a *Aggregator) Info(span Span, format string, args ...any) {
	a.Record(Message{Severity: SeverityInfo, Span: span, Text: fmt.Sprintf(format, args...)})
}

// RecordAll records every message in order.
func (a *Aggregator) RecordAll(msgs []Message) {
	for _, m := range msgs {
		a.Record(m)
	}
}

// HasErrors reports whether an Error or Critical message was ever recorded
// since construction or the last ClearErrors.
func (a *Aggregator) HasErrors() bool {
	return a.hasErrors
}

// ClearErrors lowers the sticky error flag. Only a new build run should call it.
func (a *Aggregator) ClearErrors() {
	a.hasErrors = false
}

// Messages returns a copy of the recorded messages.
func (a *Aggregator) Messages() []Message {
	out := make([]Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// ErrorCount returns the number of Error and Critical messages recorded.
func (a *Aggregator) ErrorCount() int {
	n := 0
	for _, m := range a.messages {
		if m.Severity.IsError() {
			n++
		}
	}
	return n
}

// Stats returns the per item statistics.
func (a *Aggregator) Stats() *Stats {
	return a.stats
}

// GetContentStat returns (creating on first access) the timing record for key.
func (a *Aggregator) GetContentStat(key string) *ContentStat {
	return a.stats.GetContentStat(key)
}

// Reset drops recorded messages and statistics for a new build cycle. The
// sticky error flag is left untouched.
func (a *Aggregator) Reset() {
	a.messages = nil
	a.stats.Reset()
}
