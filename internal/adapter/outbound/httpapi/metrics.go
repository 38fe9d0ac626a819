package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side Prometheus metrics for backend calls.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
	Refreshes       *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "osvs",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of backend requests sent",
			},
			[]string{"method", "code"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "osvs",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		InFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "osvs",
				Subsystem: "api",
				Name:      "requests_in_flight",
				Help:      "Number of backend requests in flight",
			},
		),
		Refreshes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "osvs",
				Subsystem: "api",
				Name:      "session_refreshes_total",
				Help:      "Session refresh attempts triggered by a 401",
			},
			[]string{"result"}, // result=ok/failed
		),
	}
}

func (m *Metrics) instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(m.InFlight,
		promhttp.InstrumentRoundTripperCounter(m.RequestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.RequestDuration, next),
		),
	)
}
