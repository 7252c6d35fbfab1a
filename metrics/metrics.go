// Package metrics exposes ingest and HTTP counters for prometheus. All methods
// are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plantwatch"

// Ingest outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeUnknownToken = "unknown_token"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"
	OutcomeRateLimited  = "rate_limited"
)

type Metrics struct {
	registry *prometheus.Registry

	ingests       *prometheus.CounterVec
	plantsUpdated prometheus.Counter
	photoBytes    prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "requests_total",
			Help:      "Sensor readings received, by outcome.",
		}, []string{"outcome"}),
		plantsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "plants_updated_total",
			Help:      "Plant rows updated by committed readings.",
		}),
		photoBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "photo_bytes_total",
			Help:      "Bytes of photos written to disk.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		m.ingests,
		m.plantsUpdated,
		m.photoBytes,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Ingest(outcome string) {
	if m == nil {
		return
	}
	m.ingests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Committed(plants int, photoBytes int) {
	if m == nil {
		return
	}
	m.plantsUpdated.Add(float64(plants))
	m.photoBytes.Add(float64(photoBytes))
}

func (m *Metrics) Request(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
