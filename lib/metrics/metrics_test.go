package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/require"
)

// recordCounter sums every Add by label values.
type recordCounter struct {
	lvs    []string
	values map[string]float64
}

func newRecordCounter() *recordCounter {
	return &recordCounter{values: map[string]float64{}}
}

func (c *recordCounter) With(labelValues ...string) metrics.Counter {
	return &recordCounter{lvs: append(append([]string{}, c.lvs...), labelValues...), values: c.values}
}

func (c *recordCounter) Add(delta float64) {
	c.values[strings.Join(c.lvs, ",")] += delta
}

func TestGovernanceMetricsLabels(t *testing.T) {
	votes := newRecordCounter()
	rejections := newRecordCounter()

	m := NopGovernanceMetrics()
	m.VotesTotal = votes
	m.RejectionsTotal = rejections

	m.AddVote("add-guardian")
	m.AddVote("add-guardian")
	m.AddVote("fund")
	m.AddRejection(300)

	require.Equal(t, float64(2), votes.values["action,add-guardian"])
	require.Equal(t, float64(1), votes.values["action,fund"])
	require.Equal(t, float64(1), rejections.values["code,300"])
}

func TestAPIMetricsObserveRequest(t *testing.T) {
	requests := newRecordCounter()
	errs := newRecordCounter()

	inFlight := generic.NewGauge("in_flight")

	m := NopAPIMetrics()
	m.RequestsInFlight = inFlight
	m.RequestsTotal = requests
	m.RequestErrorsTotal = errs

	begin := m.Begin()
	m.Begin()
	require.Equal(t, float64(2), inFlight.Value())

	m.ObserveRequest(begin, "/rpc", "POST", 200)
	m.ObserveRequest(time.Now(), "/rpc", "POST", 429)
	require.Equal(t, float64(0), inFlight.Value())

	require.Equal(t, float64(1), requests.values["endpoint,/rpc,method,POST,status,200"])
	require.Equal(t, float64(1), requests.values["endpoint,/rpc,method,POST,status,429"])
	require.Equal(t, 1, len(errs.values))
}
