package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "connector"

// Metrics is the Prometheus backend of the connector counters. It implements
// the application SyncMetrics port, the Shopify client request observer and
// the HTTP middleware observer from one private registry.
type Metrics struct {
	registry *prometheus.Registry

	webhooksTotal      *prometheus.CounterVec
	queueLinesTotal    *prometheus.CounterVec
	automationTotal    *prometheus.CounterVec
	upsertDuration     *prometheus.HistogramVec
	remoteRequests     *prometheus.CounterVec
	remoteDuration     *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	drainRunsTotal     *prometheus.CounterVec
	drainLastCompleted prometheus.Gauge
}

// NewMetrics registers the connector collectors plus the Go runtime and
// process collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "webhooks_received_total",
			Help:      "Inbound webhook deliveries by topic and outcome.",
		}, []string{"topic", "outcome"}),
		queueLinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queue_lines_processed_total",
			Help:      "Sync queue lines processed by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		automationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "automation_steps_total",
			Help:      "Order automation steps by step and outcome.",
		}, []string{"step", "outcome"}),
		upsertDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upsert_duration_seconds",
			Help:      "Time spent mapping one payload into local records.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "shopify_requests_total",
			Help:      "Outbound Shopify Admin API requests by method, resource and status.",
		}, []string{"method", "resource", "status"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "shopify_request_duration_seconds",
			Help:      "Outbound Shopify Admin API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		drainRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queue_drain_runs_total",
			Help:      "Scheduled queue drain runs by status.",
		}, []string{"status"}),
		drainLastCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_drain_last_completed_timestamp_seconds",
			Help:      "Unix time of the last completed scheduled drain.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.webhooksTotal,
		m.queueLinesTotal,
		m.automationTotal,
		m.upsertDuration,
		m.remoteRequests,
		m.remoteDuration,
		m.httpRequests,
		m.httpDuration,
		m.drainRunsTotal,
		m.drainLastCompleted,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WebhookReceived counts one inbound delivery
func (m *Metrics) WebhookReceived(topic, outcome string) {
	m.webhooksTotal.WithLabelValues(topic, outcome).Inc()
}

// QueueLineProcessed counts one drained queue line
func (m *Metrics) QueueLineProcessed(kind, outcome string) {
	m.queueLinesTotal.WithLabelValues(kind, outcome).Inc()
}

// AutomationStep counts one automation step attempt
func (m *Metrics) AutomationStep(step, outcome string) {
	m.automationTotal.WithLabelValues(step, outcome).Inc()
}

// UpsertDuration observes the mapping time of one payload
func (m *Metrics) UpsertDuration(kind string, d time.Duration) {
	m.upsertDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveRemoteRequest records one Shopify request. status 0 means the
// request never got a response.
func (m *Metrics) ObserveRemoteRequest(method, resource string, status int, d time.Duration) {
	m.remoteRequests.WithLabelValues(method, resource, statusLabel(status)).Inc()
	m.remoteDuration.WithLabelValues(method, resource).Observe(d.Seconds())
}

// ObserveHTTPRequest records one inbound request on a route template
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// DrainRun records the outcome of a scheduled drain
func (m *Metrics) DrainRun(status string, completedAt time.Time) {
	m.drainRunsTotal.WithLabelValues(status).Inc()
	if !completedAt.IsZero() {
		m.drainLastCompleted.Set(float64(completedAt.Unix()))
	}
}

func statusLabel(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
