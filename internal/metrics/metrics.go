package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/kakusu/internal/model"
)

const namespace = "kakusu"

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	candidates        *prometheus.CounterVec
	candidateDuration prometheus.Histogram
	inFlight          prometheus.Gauge
	lookups           *prometheus.CounterVec
	lookupDuration    *prometheus.HistogramVec
	cache             *prometheus.CounterVec
	unknownVerdicts   *prometheus.CounterVec
}

// New creates a Metrics with a fresh registry. Go runtime and process
// collectors are registered as well.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		candidates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "candidates_total",
			Help:      "Candidate evaluations by outcome.",
		}, []string{"status"}),
		candidateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "candidate_duration_seconds",
			Help:      "Time to evaluate one candidate on both oracles.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "candidates_in_flight",
			Help:      "Candidates currently being evaluated.",
		}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "lookups_total",
			Help:      "Oracle lookups by oracle and outcome.",
		}, []string{"oracle", "status"}),
		lookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "lookup_duration_seconds",
			Help:      "Oracle lookup latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"oracle"}),
		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "cache_requests_total",
			Help:      "Verdict cache lookups by oracle and result.",
		}, []string{"oracle", "result"}),
		unknownVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "unknown_verdicts_total",
			Help:      "Verdict words missing from the oracle's score table.",
		}, []string{"oracle", "category"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CandidateStarted implements pipeline.Observer.
func (m *Metrics) CandidateStarted() {
	m.inFlight.Inc()
}

// CandidateFinished implements pipeline.Observer.
func (m *Metrics) CandidateFinished(elapsed time.Duration, err error) {
	m.inFlight.Dec()
	m.candidateDuration.Observe(elapsed.Seconds())
	m.candidates.WithLabelValues(status(err)).Inc()
}

// ObserveLookup implements oracle.Observer.
func (m *Metrics) ObserveLookup(oracle model.OracleID, elapsed time.Duration, err error) {
	m.lookups.WithLabelValues(oracle.String(), status(err)).Inc()
	m.lookupDuration.WithLabelValues(oracle.String()).Observe(elapsed.Seconds())
}

// ObserveCache implements oracle.Observer.
func (m *Metrics) ObserveCache(oracle model.OracleID, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(oracle.String(), result).Inc()
}

// UnknownVerdict matches score.UnknownVerdictFunc.
func (m *Metrics) UnknownVerdict(oracle model.OracleID, category, _ string) {
	m.unknownVerdicts.WithLabelValues(oracle.String(), category).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
