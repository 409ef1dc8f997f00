// Package metrics provides the Prometheus collectors of the k9tracker service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var runBuckets = []float64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500}

// Option configures a Metrics instance.
type Option func(*Metrics)

// WithNamespace sets the namespace prefix of every collector.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers the collectors on reg instead of the default registerer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Metrics) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithLatencyBuckets overrides the request latency histogram buckets.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	namespace      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	comparisons        prometheus.Counter
	comparisonFailures *prometheus.CounterVec
	runsPerComparison  prometheus.Histogram
	parseDegradations  *prometheus.CounterVec

	publishFailures *prometheus.CounterVec
}

func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace:      "k9",
		latencyBuckets: prometheus.DefBuckets,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   m.latencyBuckets,
	}, []string{"route", "method"})

	m.comparisons = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "versus",
		Name:      "comparisons_total",
		Help:      "Head-to-head comparisons computed.",
	})

	m.comparisonFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "versus",
		Name:      "comparison_failures_total",
		Help:      "Head-to-head comparisons that returned an error, by reason.",
	}, []string{"reason"})

	m.runsPerComparison = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "versus",
		Name:      "shared_runs",
		Help:      "Shared runs found per comparison.",
		Buckets:   runBuckets,
	})

	m.parseDegradations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "versus",
		Name:      "parse_degradations_total",
		Help:      "Raw run fields that could not be parsed, by field.",
	}, []string{"field"})

	m.publishFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Events that could not be published, by subject.",
	}, []string{"subject"})

	return m
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ComparisonCompleted(runs int) {
	if m == nil {
		return
	}
	m.comparisons.Inc()
	m.runsPerComparison.Observe(float64(runs))
}

func (m *Metrics) ComparisonFailed(reason string) {
	if m == nil {
		return
	}
	m.comparisonFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ParseDegraded(field string) {
	if m == nil {
		return
	}
	m.parseDegradations.WithLabelValues(field).Inc()
}

func (m *Metrics) PublishFailed(subject string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(subject).Inc()
}
