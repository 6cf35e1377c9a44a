package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one service
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// realtime
	WSConnectionsTotal  prometheus.Counter
	WSActiveConnections prometheus.Gauge
	PresenceOnlineUsers prometheus.Gauge
	FramesDropped       prometheus.Counter
	EventsTotal         *prometheus.CounterVec
	PersistFailures     *prometheus.CounterVec

	// background work
	JobsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every collector on the default registry
func New(namespace string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, namespace)
}

// NewWithRegistry registers on the given registry, tests pass a fresh prometheus.NewRegistry()
func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer, namespace string) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		WSConnectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "websocket_connections_total",
				Help:      "Total number of accepted WebSocket connections",
			},
		),
		WSActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_active_connections",
				Help:      "Number of open WebSocket connections",
			},
		),
		PresenceOnlineUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "presence_online_users",
				Help:      "Number of users with at least one live connection",
			},
		),
		FramesDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "websocket_frames_dropped_total",
				Help:      "Outbound frames dropped because a connection queue was full",
			},
		),
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Inbound realtime events by name and outcome",
			},
			[]string{"event", "success"},
		),
		PersistFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_failures_total",
				Help:      "Storage calls that failed by operation",
			},
			[]string{"op"},
		),
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Background jobs by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		gatherer: gatherer,
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

// RecordWebSocketConnection increments WebSocket connection counters
func (m *Metrics) RecordWebSocketConnection() {
	m.WSConnectionsTotal.Inc()
	m.WSActiveConnections.Inc()
}

// RecordWebSocketDisconnection decrements active WebSocket connection gauge
func (m *Metrics) RecordWebSocketDisconnection() {
	m.WSActiveConnections.Dec()
}

// RecordEvent counts one handled realtime event
func (m *Metrics) RecordEvent(event string, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	m.EventsTotal.WithLabelValues(event, label).Inc()
}
