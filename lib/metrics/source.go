package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	SourceReasonError   = "error"
	SourceReasonPanic   = "panic"
	SourceReasonTimeout = "timeout"
	SourceReasonHops    = "hops"
)

type SourceMetrics struct {
	FailuresTotal   metrics.Counter
	DurationSeconds metrics.Histogram
}

func (s *SourceMetrics) AddFailure(source, reason string) {
	s.FailuresTotal.With(LabelSource, source, LabelReason, reason).Add(1)
}

func (s *SourceMetrics) ObserveDurationSeconds(begin time.Time, source string) {
	s.DurationSeconds.With(LabelSource, source).Observe(time.Since(begin).Seconds())
}

func PromSourceMetrics() *SourceMetrics {
	return &SourceMetrics{
		FailuresTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SourceSubsystem,
			Name:      "failures_total",
			Help:      "Number of voter source calls which contributed nothing.",
		}, []string{LabelSource, LabelReason}),
		DurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: SourceSubsystem,
			Name:      "duration_seconds",
			Help:      "Time spent in one voter source call.",
		}, []string{LabelSource}),
	}
}

func NopSourceMetrics() *SourceMetrics {
	return &SourceMetrics{
		FailuresTotal:   discard.NewCounter(),
		DurationSeconds: discard.NewHistogram(),
	}
}
