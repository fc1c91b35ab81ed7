package metrics

import (
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var apiLabels = []string{"endpoint", "method", "status"}

// APIMetrics counts the requests of the rpc server. A status of 400 or more
// is an error.
type APIMetrics struct {
	RequestsInFlight       metrics.Gauge
	RequestsTotal          metrics.Counter
	RequestErrorsTotal     metrics.Counter
	RequestDurationSeconds metrics.Histogram
}

// Begin marks one request in flight and returns when it began.
func (m *APIMetrics) Begin() time.Time {
	m.RequestsInFlight.Add(1)
	return time.Now()
}

// ObserveRequest records one request begun at `begin`.
func (m *APIMetrics) ObserveRequest(begin time.Time, endpoint, method string, status int) {
	m.RequestsInFlight.Add(-1)

	labels := []string{"endpoint", endpoint, "method", method, "status", strconv.Itoa(status)}
	m.RequestsTotal.With(labels...).Add(1)
	if status >= 400 {
		m.RequestErrorsTotal.With(labels...).Add(1)
	}
	m.RequestDurationSeconds.With(labels...).Observe(time.Since(begin).Seconds())
}

func PromAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsInFlight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "requests_in_flight",
			Help:      "Requests being served.",
		}, nil),
		RequestsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "requests_total",
			Help:      "Served requests.",
		}, apiLabels),
		RequestErrorsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_errors_total",
			Help:      "Requests answered with a client or server error.",
		}, apiLabels),
		RequestDurationSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_duration_seconds",
			Help:      "Time serving one request.",
			Buckets:   stdprometheus.DefBuckets,
		}, apiLabels),
	}
}

func NopAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsInFlight:       discard.NewGauge(),
		RequestsTotal:          discard.NewCounter(),
		RequestErrorsTotal:     discard.NewCounter(),
		RequestDurationSeconds: discard.NewHistogram(),
	}
}
