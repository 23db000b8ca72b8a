package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	phaseDuration *prom.HistogramVec
	loadDuration  prom.Histogram
	messages      *prom.CounterVec
	items         *prom.CounterVec
	includes      *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "content_phase_duration_seconds",
			Help:      "Per item duration of content processing phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		loadDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a full content load cycle",
			Buckets:   prom.DefBuckets,
		}),
		messages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostic messages recorded by severity",
		}, []string{"severity"}),
		items: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "content_items_total",
			Help:      "Content items loaded by kind",
		}, []string{"kind"}),
		includes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "include_resolutions_total",
			Help:      "Include resolutions by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.phaseDuration, pr.loadDuration, pr.messages, pr.items, pr.includes)
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase Phase, d time.Duration) {
	if p == nil {
		return
	}
	p.phaseDuration.WithLabelValues(string(phase)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveLoadDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.loadDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncMessage(severity string) {
	if p == nil {
		return
	}
	p.messages.WithLabelValues(severity).Inc()
}

func (p *PrometheusRecorder) AddItems(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.items.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncIncludeResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.includes.WithLabelValues(string(result)).Inc()
}
