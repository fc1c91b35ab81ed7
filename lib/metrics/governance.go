package metrics

import (
	"strconv"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type GovernanceMetrics struct {
	Height metrics.Gauge

	VotesTotal        metrics.Counter
	StateChangesTotal metrics.Counter
	ExecutionsTotal   metrics.Counter
	RejectionsTotal   metrics.Counter

	OpenTallies metrics.Gauge
	Voters      metrics.Gauge
	Guardians   metrics.Gauge

	FundsDisbursed metrics.Counter
}

func (g *GovernanceMetrics) SetHeight(height uint64) {
	g.Height.Set(float64(height))
}
func (g *GovernanceMetrics) AddVote(action string) {
	g.VotesTotal.With(LabelAction, action).Add(1)
}
func (g *GovernanceMetrics) AddStateChange(action string) {
	g.StateChangesTotal.With(LabelAction, action).Add(1)
}
func (g *GovernanceMetrics) AddExecution(family string) {
	g.ExecutionsTotal.With(LabelFamily, family).Add(1)
}
func (g *GovernanceMetrics) AddRejection(code uint) {
	g.RejectionsTotal.With(LabelCode, strconv.FormatUint(uint64(code), 10)).Add(1)
}
func (g *GovernanceMetrics) SetOpenTallies(n uint64) {
	g.OpenTallies.Set(float64(n))
}
func (g *GovernanceMetrics) SetVoters(n int) {
	g.Voters.Set(float64(n))
}
func (g *GovernanceMetrics) SetGuardians(n int) {
	g.Guardians.Set(float64(n))
}
func (g *GovernanceMetrics) AddFundsDisbursed(amount uint64) {
	g.FundsDisbursed.Add(float64(amount))
}

func PromGovernanceMetrics() *GovernanceMetrics {
	return &GovernanceMetrics{
		Height: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "height",
			Help:      "Height seen by the last call.",
		}, []string{}),
		VotesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "votes_total",
			Help:      "Number of counted votes.",
		}, []string{LabelAction}),
		StateChangesTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "state_changes_total",
			Help:      "Number of tallies which reached the threshold.",
		}, []string{LabelAction}),
		ExecutionsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "executions_total",
			Help:      "Number of executed approvals.",
		}, []string{LabelFamily}),
		RejectionsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "rejections_total",
			Help:      "Number of rejected calls.",
		}, []string{LabelCode}),
		OpenTallies: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "open_tallies",
			Help:      "Number of open tallies.",
		}, []string{}),
		Voters: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "voters",
			Help:      "Number of voters counted for the threshold.",
		}, []string{}),
		Guardians: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "guardians",
			Help:      "Number of guardians.",
		}, []string{}),
		FundsDisbursed: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: GovernanceSubsystem,
			Name:      "funds_disbursed_total",
			Help:      "Amount paid by executed fund approvals.",
		}, []string{}),
	}
}

func NopGovernanceMetrics() *GovernanceMetrics {
	return &GovernanceMetrics{
		Height: discard.NewGauge(),

		VotesTotal:        discard.NewCounter(),
		StateChangesTotal: discard.NewCounter(),
		ExecutionsTotal:   discard.NewCounter(),
		RejectionsTotal:   discard.NewCounter(),

		OpenTallies: discard.NewGauge(),
		Voters:      discard.NewGauge(),
		Guardians:   discard.NewGauge(),

		FundsDisbursed: discard.NewCounter(),
	}
}
