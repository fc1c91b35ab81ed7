package voter

import (
	"context"
	"fmt"
	"time"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/metrics"
)

type hopsKey struct{}

// Hops returns the number of nested source lookups `ctx` went through.
func Hops(ctx context.Context) int {
	n, _ := ctx.Value(hopsKey{}).(int)
	return n
}

// WithHops restores the nested lookup count received from a remote node.
func WithHops(ctx context.Context, n int) context.Context {
	if n < 0 {
		n = 0
	}
	return context.WithValue(ctx, hopsKey{}, n)
}

// nextHop counts one more nested lookup; false once `MaxSourceHops` is
// reached, which breaks cycles between engines using each other as sources.
func nextHop(ctx context.Context) (context.Context, bool) {
	n := Hops(ctx)
	if n >= common.MaxSourceHops {
		return ctx, false
	}

	return context.WithValue(ctx, hopsKey{}, n+1), true
}

type callFailure struct {
	reason string
	err    error
}

func (f *callFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.reason, f.err)
}

// Adapter calls voter sources and turns every error, panic and timeout into
// an empty contribution.
type Adapter struct {
	Timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = common.DefaultSourceTimeout
	}

	return &Adapter{Timeout: timeout}
}

func (a *Adapter) call(ctx context.Context, f func(context.Context) (interface{}, error)) (interface{}, *callFailure) {
	ctx, ok := nextHop(ctx)
	if !ok {
		return nil, &callFailure{reason: metrics.SourceReasonHops, err: fmt.Errorf("more than %d nested lookups", common.MaxSourceHops)}
	}

	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	type result struct {
		v       interface{}
		failure *callFailure
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{failure: &callFailure{reason: metrics.SourceReasonPanic, err: fmt.Errorf("%v", r)}}
			}
		}()

		v, err := f(ctx)
		if err != nil {
			done <- result{failure: &callFailure{reason: metrics.SourceReasonError, err: err}}
			return
		}
		done <- result{v: v}
	}()

	select {
	case r := <-done:
		return r.v, r.failure
	case <-ctx.Done():
		return nil, &callFailure{reason: metrics.SourceReasonTimeout, err: ctx.Err()}
	}
}

func (a *Adapter) fail(name common.Address, query string, failure *callFailure) {
	metrics.Source.AddFailure(name.Hex(), failure.reason)
	log.Warn(
		"voter source contributed nothing",
		"source", name,
		"query", query,
		"reason", failure.reason,
		"error", failure.err,
	)
}

// ListVoters returns the voters of `s`, or nothing when `s` fails.
func (a *Adapter) ListVoters(ctx context.Context, name common.Address, s Source) []common.Address {
	defer metrics.Source.ObserveDurationSeconds(time.Now(), name.Hex())

	v, failure := a.call(ctx, func(ctx context.Context) (interface{}, error) {
		return s.ListVoters(ctx)
	})
	if failure != nil {
		a.fail(name, "list-voters", failure)
		return nil
	}

	voters, _ := v.([]common.Address)
	return voters
}

// IsVoter asks `s` about `voter`; a failing source answers false.
func (a *Adapter) IsVoter(ctx context.Context, name common.Address, s Source, voter common.Address) bool {
	defer metrics.Source.ObserveDurationSeconds(time.Now(), name.Hex())

	v, failure := a.call(ctx, func(ctx context.Context) (interface{}, error) {
		return s.IsVoter(ctx, voter)
	})
	if failure != nil {
		a.fail(name, "is-voter", failure)
		return false
	}

	ok, _ := v.(bool)
	return ok
}

// Probe exercises both queries of `s` once and fails on the first problem,
// unlike ListVoters and IsVoter.
func (a *Adapter) Probe(ctx context.Context, name common.Address, s Source) error {
	probeFailed := func(query string, failure *callFailure) error {
		log.Debug("voter source failed the probe", "source", name, "query", query, "reason", failure.reason, "error", failure.err)
		return errors.SourceProbeFailed.Clone().
			SetData("source", name.Hex()).
			SetData("query", query).
			SetData("reason", failure.reason)
	}

	v, failure := a.call(ctx, func(ctx context.Context) (interface{}, error) {
		return s.ListVoters(ctx)
	})
	if failure != nil {
		return probeFailed("list-voters", failure)
	}

	probe := name
	if voters, _ := v.([]common.Address); len(voters) > 0 {
		probe = voters[0]
	}

	if _, failure = a.call(ctx, func(ctx context.Context) (interface{}, error) {
		return s.IsVoter(ctx, probe)
	}); failure != nil {
		return probeFailed("is-voter", failure)
	}

	return nil
}
