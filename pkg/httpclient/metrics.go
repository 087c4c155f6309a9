package httpclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by Client.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// NewMetrics creates the client collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http_client",
				Name:      "requests_total",
				Help:      "Total number of outbound requests by method and status code",
			},
			[]string{"method", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http_client",
				Name:      "request_duration_seconds",
				Help:      "Outbound request latency",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
			},
			[]string{"method"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http_client",
				Name:      "requests_in_flight",
				Help:      "Outbound requests currently awaiting a response",
			},
		),
	}
}

// begin marks a request as in flight and returns the matching completion hook.
func (m *Metrics) begin(method string) func(out Outcome) {
	if m == nil {
		return func(Outcome) {}
	}
	start := time.Now()
	m.RequestsInFlight.Inc()
	return func(out Outcome) {
		m.RequestsInFlight.Dec()
		m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		m.RequestsTotal.WithLabelValues(method, statusLabel(out)).Inc()
	}
}

// statusLabel is "error" for transport failures, otherwise the numeric status.
func statusLabel(out Outcome) string {
	if out.Meta == nil {
		return "error"
	}
	return strconv.Itoa(out.Meta.StatusCode)
}
