package gasmanager

import (
	"context"
	"encoding/json"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/storage"
	"boscoin.io/gasmanager/lib/voting"
)

// TallyInfo is the public view of one tally.
type TallyInfo struct {
	Action           voting.ActionType `json:"action"`
	Target           common.Target     `json:"target"`
	TotalVotes       uint64            `json:"total_votes"`
	StartHeight      uint64            `json:"start_height"`
	ExpirationHeight uint64            `json:"expiration_height"`
	Voters           []common.Address  `json:"voters"`
	Expired          bool              `json:"expired"`
}

func (e *Engine) requireSetup() (*setup, error) {
	s := e.getSetup()
	if s == nil {
		return nil, errors.NotInitialized
	}

	return s, nil
}

// IsVoter reports whether `a` is a voter now; with ListVoters it makes the
// engine a `voter.Source` of other engines.
func (e *Engine) IsVoter(ctx context.Context, a common.Address) (bool, error) {
	s, err := e.requireSetup()
	if err != nil {
		return false, err
	}

	return e.isVoter(ctx, e.st, s, a)
}

func (e *Engine) ListVoters(ctx context.Context) ([]common.Address, error) {
	s, err := e.requireSetup()
	if err != nil {
		return nil, err
	}

	return e.listVoters(ctx, e.st, s)
}

func (e *Engine) ListLocalVoters() ([]common.Address, error) {
	return registry.Voters.List(e.st)
}

func (e *Engine) ListVoterSources() ([]common.Address, error) {
	return registry.Sources.List(e.st)
}

func (e *Engine) IsGuardian(a common.Address) (bool, error) {
	return registry.Guardians.Has(e.st, a)
}

func (e *Engine) ListGuardians() ([]common.Address, error) {
	return registry.Guardians.List(e.st)
}

func (e *Engine) GuardianCount() (uint64, error) {
	return registry.Guardians.Count(e.st)
}

func (e *Engine) ListWhitelist() ([]common.Address, error) {
	return registry.Whitelist.List(e.st)
}

func (e *Engine) newTallyInfo(tally *voting.Tally, window uint64) TallyInfo {
	return TallyInfo{
		Action:           tally.Action,
		Target:           tally.Target,
		TotalVotes:       tally.TotalVotes,
		StartHeight:      tally.StartHeight,
		ExpirationHeight: tally.ExpirationHeight(window),
		Voters:           tally.Voters,
		Expired:          tally.IsExpired(e.height.Height(), window),
	}
}

// GetTally returns the stored tally of (`action`, `target`). An expired
// tally is returned as it is until a vote or a reclaim resets it.
func (e *Engine) GetTally(action voting.ActionType, target common.Target) (info TallyInfo, err error) {
	if !action.IsValid() {
		err = errors.UnknownActionType.Clone().SetData("action", uint8(action))
		return
	}

	var params Parameters
	if params, err = loadParameters(e.st); err != nil {
		return
	}

	var tally *voting.Tally
	if tally, err = loadTally(e.st, action, target); err != nil {
		return
	}

	info = e.newTallyInfo(tally, params.ExpirationWindow)

	return
}

// ListTallies returns every open tally.
func (e *Engine) ListTallies() (tallies []TallyInfo, err error) {
	var params Parameters
	if params, err = loadParameters(e.st); err != nil {
		return
	}

	tallies = []TallyInfo{}
	err = e.st.Walk(TallyPrefix, nil, func(item storage.IterItem) (bool, error) {
		var tally voting.Tally
		if err := json.Unmarshal(item.Value, &tally); err != nil {
			return false, err
		}
		tallies = append(tallies, e.newTallyInfo(&tally, params.ExpirationWindow))
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return
}

// Threshold is the number of votes a tally needs now.
func (e *Engine) Threshold(ctx context.Context) (int, error) {
	s, err := e.requireSetup()
	if err != nil {
		return 0, err
	}

	voters, err := e.listVoters(ctx, e.st, s)
	if err != nil {
		return 0, err
	}

	return s.policy.Threshold(len(voters))
}

func (e *Engine) MajorityThreshold(ctx context.Context) (int, error) {
	voters, err := e.ListVoters(ctx)
	if err != nil {
		return 0, err
	}

	return voting.MajorityPolicy{}.Threshold(len(voters))
}

func (e *Engine) SupermajorityThreshold(ctx context.Context) (int, error) {
	voters, err := e.ListVoters(ctx)
	if err != nil {
		return 0, err
	}

	return voting.SupermajorityPolicy{}.Threshold(len(voters))
}

func (e *Engine) ActiveVoteCount() (uint64, error) {
	return loadActiveVotes(e.st)
}

func (e *Engine) Parameters() (Parameters, error) {
	return loadParameters(e.st)
}

func (e *Engine) Totals() (Totals, error) {
	return loadTotals(e.st)
}

// IsApproved reports the approval flag of a value-moving action.
func (e *Engine) IsApproved(action voting.ActionType, fingerprint common.Target) (bool, error) {
	if !action.IsValueMoving() {
		return false, errors.UnknownActionType.Clone().SetData("action", action.String())
	}

	return isApproved(e.st, action, fingerprint)
}

// Config returns the deployment configuration.
func (e *Engine) Config() (common.Config, error) {
	s, err := e.requireSetup()
	if err != nil {
		return common.Config{}, err
	}

	return s.config, nil
}

// Balance is the native balance of the engine account.
func (e *Engine) Balance(ctx context.Context) (common.Amount, error) {
	s, err := e.requireSetup()
	if err != nil {
		return 0, err
	}

	return e.ledger.Balance(ctx, e.st, s.config.EngineAccount)
}

func (e *Engine) TokenBalance(ctx context.Context, token common.Address) (common.Amount, error) {
	s, err := e.requireSetup()
	if err != nil {
		return 0, err
	}

	return e.ledger.TokenBalance(ctx, e.st, token, s.config.EngineAccount)
}
