// Package metrics holds the Prometheus collectors for the request lifecycle and the store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	malformedTotal   prometheus.Counter
	badRequestsTotal prometheus.Counter
	fatalTotal       prometheus.Counter

	storeKeys    prometheus.Gauge
	storeFlushes prometheus.Histogram
}

// New creates the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdb_requests_total",
				Help: "Total number of answered requests",
			},
			[]string{"method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdb_request_duration_seconds",
				Help:    "Duration of a full read/handle/write cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		malformedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mdb_malformed_requests_total",
				Help: "Connections closed without a response because the request line was malformed",
			},
		),
		badRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mdb_bad_requests_total",
				Help: "Database requests answered with a server error",
			},
		),
		fatalTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mdb_fatal_errors_total",
				Help: "Errors that stopped the connection loop",
			},
		),
		storeKeys: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mdb_store_keys",
				Help: "Number of keys in the store",
			},
		),
		storeFlushes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mdb_store_flush_seconds",
				Help:    "Duration of whole-file store flushes in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one answered request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// IncMalformed counts a connection dropped for a malformed request line.
func (m *Metrics) IncMalformed() {
	m.malformedTotal.Inc()
}

// IncBadRequest counts a database request converted into a server error.
func (m *Metrics) IncBadRequest() {
	m.badRequestsTotal.Inc()
}

// IncFatal counts an error that stopped the server.
func (m *Metrics) IncFatal() {
	m.fatalTotal.Inc()
}

// ObserveFlush implements store.Observer.
func (m *Metrics) ObserveFlush(d time.Duration) {
	m.storeFlushes.Observe(d.Seconds())
}

// SetKeys implements store.Observer.
func (m *Metrics) SetKeys(n int) {
	m.storeKeys.Set(float64(n))
}
