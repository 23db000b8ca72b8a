package diag

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"github.com/stretchr/testify/require"
)

func quietAggregator() *Aggregator {
	return NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type countingRecorder struct {
	metrics.NoopRecorder
	messages map[string]int
	phases   map[metrics.Phase]int
}

func (c *countingRecorder) IncMessage(severity string) { c.messages[severity]++ }
func (c *countingRecorder) ObservePhaseDuration(p metrics.Phase, _ time.Duration) {
	c.phases[p]++
}

func TestRecord_ErrorSetsStickyFlag(t *testing.T) {
	agg := quietAggregator()
	require.False(t, agg.HasErrors())

	agg.Error(Span{File: "a.html", Line: 2}, "bad %s", "thing")
	require.True(t, agg.HasErrors())

	// Subsequent non-error activity never lowers the flag.
	agg.Info(Span{}, "all good")
	agg.Warning(Span{}, "careful")
	agg.Reset()
	require.True(t, agg.HasErrors())

	agg.ClearErrors()
	require.False(t, agg.HasErrors())
}

func TestRecord_InfoAndWarningNeverSetFlag(t *testing.T) {
	agg := quietAggregator()
	agg.Info(Span{}, "one")
	agg.Warning(FileSpan("b.html"), "two")
	require.False(t, agg.HasErrors())
	require.Len(t, agg.Messages(), 2)
	require.Equal(t, 0, agg.ErrorCount())
}

func TestRecord_CriticalSetsFlag(t *testing.T) {
	agg := quietAggregator()
	agg.Record(Message{Severity: SeverityCritical, Text: "disk gone"})
	require.True(t, agg.HasErrors())
	require.Equal(t, 1, agg.ErrorCount())
}

func TestRecord_LogsWithSpanAndRunID(t *testing.T) {
	var buf bytes.Buffer
	agg := NewAggregator(slog.New(slog.NewTextHandler(&buf, nil)))
	agg.SetRunID("run-42")
	agg.Error(Span{File: "page.html", Line: 3, Column: 7}, "unexpected token")

	out := buf.String()
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "file=page.html")
	require.Contains(t, out, "line=3")
	require.Contains(t, out, "column=7")
	require.Contains(t, out, "run_id=run-42")
}

func TestMessagesReturnsCopy(t *testing.T) {
	agg := quietAggregator()
	agg.Info(Span{}, "x")
	msgs := agg.Messages()
	msgs[0].Text = "mutated"
	require.Equal(t, "x", agg.Messages()[0].Text)
}

func TestRecorderReceivesMessagesAndPhases(t *testing.T) {
	rec := &countingRecorder{messages: map[string]int{}, phases: map[metrics.Phase]int{}}
	agg := quietAggregator().WithRecorder(rec)

	agg.Error(Span{}, "e")
	agg.Warning(Span{}, "w")
	agg.GetContentStat("/site/a.html").Add(metrics.PhaseEvaluate, time.Millisecond)

	require.Equal(t, 1, rec.messages["error"])
	require.Equal(t, 1, rec.messages["warning"])
	require.Equal(t, 1, rec.phases[metrics.PhaseEvaluate])
}

func TestSpanAndMessageString(t *testing.T) {
	require.Equal(t, "a.html(3,4)", Span{File: "a.html", Line: 3, Column: 4}.String())
	require.Equal(t, "a.html(3)", Span{File: "a.html", Line: 3}.String())
	require.Equal(t, "a.html", FileSpan("a.html").String())
	require.Equal(t, "error: boom", Message{Severity: SeverityError, Text: "boom"}.String())
	require.Equal(t, "a.html(1): warning: hm", Message{Severity: SeverityWarning, Span: Span{File: "a.html", Line: 1}, Text: "hm"}.String())
}
