// Package metrics exposes Prometheus collectors for the HTTP layer and the
// scoring engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/msomdec/taskflow/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskflow"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	transitions     *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	pointsWithdrawn prometheus.Counter
	conflicts       prometheus.Counter
}

// New creates a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "transitions_total",
			Help:      "Task updates by completion transition kind.",
		}, []string{"kind"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "points_awarded_total",
			Help:      "Points awarded by task completions.",
		}),
		pointsWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "points_withdrawn_total",
			Help:      "Points requested for withdrawal by reopened tasks, before clamping.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "update_conflicts_total",
			Help:      "Guarded task writes that lost a race and were retried.",
		}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.transitions,
		m.pointsAwarded,
		m.pointsWithdrawn,
		m.conflicts,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTransition implements service.ScoreRecorder.
func (m *Metrics) RecordTransition(delta domain.ScoreDelta) {
	m.transitions.WithLabelValues(string(delta.Kind)).Inc()
	switch {
	case delta.Points > 0:
		m.pointsAwarded.Add(float64(delta.Points))
	case delta.Points < 0:
		m.pointsWithdrawn.Add(float64(-delta.Points))
	}
}

// RecordConflict implements service.ScoreRecorder.
func (m *Metrics) RecordConflict() {
	m.conflicts.Inc()
}

// Instrument wraps next with request count, latency and in-flight metrics.
// Requests are labelled by the matched ServeMux pattern, so path parameters
// do not explode label cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
