// Package metrics exposes Prometheus instrumentation for datasight.
//
// All collectors live on a private registry so tests can build as many
// Metrics as they like without colliding on the global default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasight"

// Metrics implements core.Recorder and the HTTP request instrumentation.
type Metrics struct {
	reg *prometheus.Registry

	ingestTotal    *prometheus.CounterVec
	ingestRows     prometheus.Histogram
	ingestDuration *prometheus.HistogramVec
	viewDuration   prometheus.Histogram
	viewMatched    prometheus.Histogram
	evictions      *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var _ core.Recorder = (*Metrics)(nil)

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		ingestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "File ingestions by format and outcome.",
		}, []string{"format", "result"}),
		ingestRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingested_rows",
			Help:      "Rows in successfully ingested tables.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		}),
		ingestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Time to read, parse and normalize a file.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		viewDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_render_duration_seconds",
			Help:      "Time to sort, filter and cap a table view.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		viewMatched: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_matched_rows",
			Help:      "Rows matching the filters of a rendered view.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),
		evictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_evictions_total",
			Help:      "Datasets removed from the session store.",
		}, []string{"reason"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Registry returns the registry backing this instance.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// TrackDatasets exposes the live dataset count, read at scrape time.
func (m *Metrics) TrackDatasets(count func() int) {
	promauto.With(m.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "datasets_active",
		Help:      "Datasets currently held in memory.",
	}, func() float64 { return float64(count()) })
}

// TrackIngestLimiter exposes the in-flight ingestion count.
func (m *Metrics) TrackIngestLimiter(l *core.IngestLimiter) {
	promauto.With(m.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ingestions_in_flight",
		Help:      "Ingestions currently holding a limiter slot.",
	}, func() float64 { return float64(l.ActiveCount()) })
}

func (m *Metrics) IngestSucceeded(format core.Format, rows int, elapsed time.Duration) {
	m.ingestTotal.WithLabelValues(string(format), "ok").Inc()
	m.ingestRows.Observe(float64(rows))
	m.ingestDuration.WithLabelValues(string(format)).Observe(elapsed.Seconds())
}

func (m *Metrics) IngestFailed(kind core.ErrorKind) {
	result := string(kind)
	if result == "" {
		result = "error"
	}
	m.ingestTotal.WithLabelValues("", result).Inc()
}

func (m *Metrics) ViewRendered(matched int, elapsed time.Duration) {
	m.viewMatched.Observe(float64(matched))
	m.viewDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) DatasetEvicted(reason string) {
	m.evictions.WithLabelValues(reason).Inc()
}

// ObserveRequest records one HTTP request. route should be the router
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
