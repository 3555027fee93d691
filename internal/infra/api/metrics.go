package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records event-log API calls by route and outcome.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventdash_api_request_duration_seconds",
			Help:    "Duration of event-log API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventdash_api_request_failures_total",
			Help: "Event-log API requests that failed in transport or returned a non-2xx status",
		}, []string{"route"}),
	}
	if registerer != nil {
		registerer.MustRegister(m.duration, m.failures)
	}
	return m
}

func (m *Metrics) observe(route, status string, elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(route, status).Observe(elapsed.Seconds())
	if failed {
		m.failures.WithLabelValues(route).Inc()
	}
}
