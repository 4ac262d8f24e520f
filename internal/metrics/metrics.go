// Package metrics exposes Prometheus collectors for model calls, the result
// cache, the model load state and form submissions.
package metrics

import (
	"net/http"
	"time"

	"github.com/cozy-creator/greenlens/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greenlens"

// Submission outcomes.
const (
	OutcomeAnalyzed    = "analyzed"
	OutcomeEmpty       = "empty"
	OutcomeTooLong     = "too_long"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

type Metrics struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	cache           *prometheus.CounterVec
	modelState      *prometheus.GaugeVec
	submissions     *prometheus.CounterVec
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Model classification calls by kind and status.",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Latency of model classification calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		modelState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_state",
			Help:      "1 for the current model load state, 0 for the others.",
		}, []string{"state"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Claim submissions by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.classifications,
		m.duration,
		m.cache,
		m.modelState,
		m.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveClassification(kind string, err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.classifications.WithLabelValues(kind, status).Inc()
	m.duration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

func (m *Metrics) SetModelState(state model.State) {
	for _, s := range model.States() {
		v := 0.0
		if s == state {
			v = 1
		}
		m.modelState.WithLabelValues(string(s)).Set(v)
	}
}

func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
