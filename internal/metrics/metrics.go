// Package metrics provides Prometheus metrics for the ingestion pipeline and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector. A nil *Manager is valid and records nothing,
// so services can run without metrics in tests and CLIs.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	filesTotal     *prometheus.CounterVec
	fileDuration   prometheus.Histogram
	pageOCRSeconds prometheus.Histogram
	pagesTotal     prometheus.Counter
	queueSize      prometheus.Gauge
	jobsTotal      prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace (default "playertrack").
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithRegistry registers the collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithHistogramBuckets sets the buckets (in seconds) of the duration histograms.
func WithHistogramBuckets(b []float64) Option {
	return func(m *Manager) { m.buckets = b }
}

// New creates a Manager on its own registry so the Go runtime collectors
// are not exported.
func New(opts ...Option) *Manager {
	m := &Manager{
		namespace: "playertrack",
		buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.filesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "files_total",
		Help:      "Report files processed, by outcome (ingested, duplicate, failed)",
	}, []string{"status"})

	m.fileDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "file_duration_seconds",
		Help:      "Time to process one report file end to end",
		Buckets:   m.buckets,
	})

	m.pageOCRSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ocr",
		Name:      "page_duration_seconds",
		Help:      "Time to recognize one page",
		Buckets:   m.buckets,
	})

	m.pagesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ocr",
		Name:      "pages_total",
		Help:      "Pages rasterized and recognized",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "queue_size",
		Help:      "Ingestion jobs waiting for the worker",
	})

	m.jobsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "jobs_total",
		Help:      "Ingestion jobs completed",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status_code"})
}

// RecordFile counts one processed file and its duration.
func (m *Manager) RecordFile(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.filesTotal.WithLabelValues(status).Inc()
	m.fileDuration.Observe(d.Seconds())
}

// RecordPage counts one recognized page.
func (m *Manager) RecordPage(d time.Duration) {
	if m == nil {
		return
	}
	m.pagesTotal.Inc()
	m.pageOCRSeconds.Observe(d.Seconds())
}

// SetQueueSize reports the worker backlog.
func (m *Manager) SetQueueSize(n int) {
	if m == nil {
		return
	}
	m.queueSize.Set(float64(n))
}

// RecordJob counts one finished ingestion job.
func (m *Manager) RecordJob() {
	if m == nil {
		return
	}
	m.jobsTotal.Inc()
}

// RecordHTTP counts one HTTP request.
func (m *Manager) RecordHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
