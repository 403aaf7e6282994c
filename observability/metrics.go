package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat"

// Metrics groups the prometheus collectors of the chat server.
// Collectors live on a dedicated registry so several instances can coexist in tests.
type Metrics struct {
	registry       *prometheus.Registry
	evictions      prometheus.Counter
	sweepFailures  prometheus.Counter
	sweepDuration  prometheus.Histogram
	workerRestarts *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_evicted_total",
			Help:      "Participants removed by the presence sweeper.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_errors_total",
			Help:      "Presence sweeps abandoned because of an error.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a presence sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
		workerRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Supervised workers restarted after a crash.",
		}, []string{"worker"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.evictions,
		m.sweepFailures,
		m.sweepDuration,
		m.workerRestarts,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveSweep(elapsed time.Duration, evicted int, err error) {
	m.sweepDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.sweepFailures.Inc()
		return
	}
	m.evictions.Add(float64(evicted))
}

func (m *Metrics) WorkerRestarted(worker string) {
	m.workerRestarts.WithLabelValues(worker).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) Evictions() prometheus.Counter { return m.evictions }

func (m *Metrics) SweepFailures() prometheus.Counter { return m.sweepFailures }
