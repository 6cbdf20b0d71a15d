package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	tagsInjected   *prom.CounterVec
	resolutionMiss *prom.CounterVec
	buildOutcome   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the htmlres metrics on reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "htmlres",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual HTML rewrite stages",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "htmlres",
			Name:      "emit_duration_seconds",
			Help:      "Total duration of one emit pass",
			Buckets:   prom.DefBuckets,
		}),
		tagsInjected: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "htmlres",
			Name:      "tags_total",
			Help:      "Script, stylesheet and favicon tags written into the HTML output",
		}, []string{"kind", "inline"}),
		resolutionMiss: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "htmlres",
			Name:      "resolution_misses_total",
			Help:      "References left untouched because nothing resolved",
		}, []string{"kind"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "htmlres",
			Name:      "emit_outcomes_total",
			Help:      "Emit passes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.tagsInjected, pr.resolutionMiss, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTagsInjected(kind TagKind, inline bool) {
	if p == nil {
		return
	}
	p.tagsInjected.WithLabelValues(string(kind), strconv.FormatBool(inline)).Inc()
}

func (p *PrometheusRecorder) IncResolutionMiss(kind MissKind) {
	if p == nil {
		return
	}
	p.resolutionMiss.WithLabelValues(string(kind)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}
