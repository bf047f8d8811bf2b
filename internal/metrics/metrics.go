package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the session lifecycle.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Controller metrics
	TransitionsTotal *prometheus.CounterVec
	OutcomesTotal    *prometheus.CounterVec

	// Gateway metrics
	GatewayCallsTotal   *prometheus.CounterVec
	GatewayCallDuration *prometheus.HistogramVec
	ActiveControllers   prometheus.Gauge
}

// NewMetrics creates and registers all collectors on the given registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_session_transitions_total",
				Help: "Session controller state transitions",
			},
			[]string{"from", "to", "event"},
		),
		OutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_session_outcomes_total",
				Help: "Terminal and navigation outcomes signalled to the browser",
			},
			[]string{"action"},
		),
		GatewayCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_gateway_calls_total",
				Help: "Calls made to the authentication backend",
			},
			[]string{"operation", "outcome"},
		),
		GatewayCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_gateway_call_duration_seconds",
				Help:    "Authentication backend call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ActiveControllers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_session_active_controllers",
				Help: "Browser profiles with a live session controller",
			},
		),
	}

	registry.MustRegister(
		m.TransitionsTotal,
		m.OutcomesTotal,
		m.GatewayCallsTotal,
		m.GatewayCallDuration,
		m.ActiveControllers,
	)
	return m
}

func (m *Metrics) ObserveTransition(from, to, event string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(from, to, event).Inc()
}

func (m *Metrics) ObserveOutcome(action string) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveGatewayCall(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GatewayCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.GatewayCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) SetActiveControllers(n int) {
	if m == nil {
		return
	}
	m.ActiveControllers.Set(float64(n))
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
