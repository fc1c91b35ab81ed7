package gasmanager

import (
	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/common/observer"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/metrics"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/voting"
)

// voteDetail is what a typed entry point knows beyond the target, used only
// for the events.
type voteDetail struct {
	Subject common.Address
	Amount  common.Amount
	// HasAmount is set when `Amount` is meaningful
	HasAmount bool
}

type voteChecker struct {
	common.DefaultChecker

	c      *call
	action voting.ActionType
	target common.Target
	detail voteDetail

	tally     *voting.Tally
	votes     uint64
	voters    []common.Address
	threshold int
}

// VoteCheckerFuncs is the pipeline of one vote. It stops early, without an
// error, when the tally stays below the threshold.
var VoteCheckerFuncs = []common.CheckerFunc{
	checkActionSupported,
	checkTarget,
	checkCallerIsVoter,
	loadVoteTally,
	checkNotVoted,
	checkRosterOpen,
	checkPrecondition,
	recordVote,
	checkThreshold,
	applyEffect,
	resolveTally,
}

func (e *Engine) vote(c *call, action voting.ActionType, target common.Target, detail voteDetail) error {
	checker := &voteChecker{
		DefaultChecker: common.DefaultChecker{Funcs: VoteCheckerFuncs},
		c:              c,
		action:         action,
		target:         target,
		detail:         detail,
	}

	if err := common.RunChecker(checker, nil); err != nil {
		return err
	}

	c.emit(observer.Event{
		Name:   observer.EventVoteCast,
		Action: action.String(),
		Target: target.Hex(),
		Votes:  checker.votes,
	})

	return nil
}

func checkActionSupported(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)

	if !checker.action.IsValid() {
		return errors.UnknownActionType.Clone().SetData("action", uint8(checker.action))
	}

	config := checker.c.setup.config
	if checker.action.IsLegacyOnly() && !config.IsLegacy() {
		return errors.ActionNotSupported.Clone().SetData("action", checker.action.String())
	}
	if checker.action.ChangesRoster() && config.Membership == common.MembershipAllowList {
		return errors.RosterManagedExternally.Clone().SetData("action", checker.action.String())
	}

	return nil
}

func checkTarget(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)

	if checker.target == common.ZeroTarget {
		return errors.ZeroTarget
	}
	if checker.action == voting.ActionClearGuardians && checker.target != ClearGuardiansTarget {
		return errors.InvalidTarget.Clone().
			SetData("action", checker.action.String()).
			SetData("target", checker.target.Hex())
	}

	return nil
}

func checkCallerIsVoter(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)

	isVoter, err := checker.c.isVoter(checker.c.caller)
	if err != nil {
		return err
	}
	if !isVoter {
		return errors.NotVoter.Clone().SetData("caller", checker.c.caller.Hex())
	}

	return nil
}

// loadVoteTally loads the tally and resets it first when it is expired.
func loadVoteTally(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*voteChecker)
	call := checker.c

	if checker.tally, err = loadTally(call.st, checker.action, checker.target); err != nil {
		return
	}

	if !checker.tally.IsExpired(call.height, call.params.ExpirationWindow) {
		return
	}

	votes := checker.tally.TotalVotes
	if err = closeTally(call.st, checker.tally); err != nil {
		return
	}

	log.Debug("expired tally reset", "action", checker.action, "target", checker.target.Hex(), "votes", votes)
	call.emit(observer.Event{
		Name:   observer.EventTallyReset,
		Action: checker.action.String(),
		Target: checker.target.Hex(),
		Votes:  votes,
	})

	return
}

func checkNotVoted(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)

	voted, err := hasVoted(checker.c.st, checker.action, checker.target, checker.c.caller)
	if err != nil {
		return err
	}
	if voted {
		return errors.AlreadyVoted.Clone().
			SetData("action", checker.action.String()).
			SetData("target", checker.target.Hex())
	}

	return nil
}

// checkRosterOpen refuses roster votes while any other tally is open; the
// tally being voted on does not count.
func checkRosterOpen(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)
	if !checker.action.ChangesRoster() {
		return nil
	}

	active, err := loadActiveVotes(checker.c.st)
	if err != nil {
		return err
	}

	if checker.tally.IsActive() {
		active--
	}
	if active > 0 {
		return errors.RosterChangeBlocked.Clone().SetData("open", active)
	}

	return nil
}

func targetAddress(target common.Target) (common.Address, error) {
	a := common.TargetAddress(target)
	if common.AddressTarget(a) != target {
		return common.ZeroAddress, errors.InvalidAddress.Clone().SetData("target", target.Hex())
	}

	return a, nil
}

func requireAbsent(set registry.Set, checker *voteChecker) error {
	a, err := targetAddress(checker.target)
	if err != nil {
		return err
	}

	found, err := set.Has(checker.c.st, a)
	if err != nil {
		return err
	}
	if found {
		return errors.AlreadyMember.Clone().SetData(set.Prefix(), a.Hex())
	}

	return nil
}

func requirePresent(set registry.Set, checker *voteChecker) error {
	a, err := targetAddress(checker.target)
	if err != nil {
		return err
	}

	found, err := set.Has(checker.c.st, a)
	if err != nil {
		return err
	}
	if !found {
		return errors.NotMember.Clone().SetData(set.Prefix(), a.Hex())
	}

	return nil
}

// requireNotLast fails when removing from `set` would leave neither a member
// of `set` nor of `other`.
func requireNotLast(set, other registry.Set, checker *voteChecker, e *errors.Error) error {
	n, err := set.Count(checker.c.st)
	if err != nil {
		return err
	}
	if n > 1 {
		return nil
	}

	m, err := other.Count(checker.c.st)
	if err != nil {
		return err
	}
	if m < 1 {
		return e
	}

	return nil
}

func targetParameter(target common.Target, min, max uint64) (uint64, error) {
	v, ok := common.TargetValue(target)
	if !ok || v < min || v > max {
		return 0, errors.ParameterOutOfRange.Clone().
			SetData("target", target.Hex()).
			SetData("min", min).
			SetData("max", max)
	}

	return v, nil
}

// checkPrecondition checks on every vote what the effect will need, so the
// effect can not fail once the threshold is reached.
func checkPrecondition(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*voteChecker)
	call := checker.c

	switch checker.action {
	case voting.ActionAddVoter:
		return requireAbsent(registry.Voters, checker)
	case voting.ActionRemoveVoter:
		if err = requirePresent(registry.Voters, checker); err != nil {
			return
		}
		return requireNotLast(registry.Voters, registry.Sources, checker, errors.LastVoter)
	case voting.ActionAddGuardian:
		return requireAbsent(registry.Guardians, checker)
	case voting.ActionRemoveGuardian:
		return requirePresent(registry.Guardians, checker)
	case voting.ActionClearGuardians:
		var n uint64
		if n, err = registry.Guardians.Count(call.st); err != nil {
			return
		}
		if n < 1 {
			return errors.NoGuardians
		}
	case voting.ActionAddVoterSource:
		if err = requireAbsent(registry.Sources, checker); err != nil {
			return
		}

		a := common.TargetAddress(checker.target)
		source, found := call.engine.directory.Resolve(a)
		if !found {
			return errors.UnknownVoterSource.Clone().SetData("source", a.Hex())
		}
		return call.setup.adapter.Probe(call.ctx, a, source)
	case voting.ActionRemoveVoterSource:
		if err = requirePresent(registry.Sources, checker); err != nil {
			return
		}
		return requireNotLast(registry.Sources, registry.Voters, checker, errors.LastVoterSource)
	case voting.ActionExpirationWindow:
		_, err = targetParameter(checker.target, common.MinExpirationWindow, common.MaxExpirationWindow)
	case voting.ActionPeriodLimit, voting.ActionMaxBalance:
		_, err = targetParameter(checker.target, 1, uint64(common.MaximumBalance))
	case voting.ActionFundingPeriod:
		_, err = targetParameter(checker.target, 1, ^uint64(0))
	case voting.ActionWhitelistAdd:
		return requireAbsent(registry.Whitelist, checker)
	case voting.ActionWhitelistRemove:
		return requirePresent(registry.Whitelist, checker)
	case voting.ActionFund, voting.ActionBurnTokens, voting.ActionBurnCoins:
		var approved bool
		if approved, err = isApproved(call.st, checker.action, checker.target); err != nil {
			return
		}
		if approved {
			return errors.AlreadyApproved.Clone().
				SetData("action", checker.action.String()).
				SetData("target", checker.target.Hex())
		}
	}

	return
}

func recordVote(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*voteChecker)
	call := checker.c

	opened := checker.tally.Record(call.caller, call.height)
	if err = checker.tally.Invariant(); err != nil {
		return
	}
	if err = setVoted(call.st, checker.action, checker.target, call.caller); err != nil {
		return
	}
	if opened {
		if _, err = addActiveVotes(call.st, 1); err != nil {
			return
		}
	}
	if err = saveTally(call.st, checker.tally); err != nil {
		return
	}

	checker.votes = checker.tally.TotalVotes

	action := checker.action.String()
	call.afterCommit(func() {
		metrics.Governance.AddVote(action)
	})

	return
}

// checkThreshold compares the tally against the voters counted now, so a
// roster change lowers or raises the bar of every open tally.
func checkThreshold(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*voteChecker)

	if checker.voters, err = checker.c.listVoters(); err != nil {
		return
	}
	if checker.threshold, err = checker.c.setup.policy.Threshold(len(checker.voters)); err != nil {
		return
	}

	voters := len(checker.voters)
	checker.c.afterCommit(func() {
		metrics.Governance.SetVoters(voters)
	})

	if checker.tally.TotalVotes < uint64(checker.threshold) {
		return common.CheckerStop{Message: "below threshold"}
	}

	return nil
}

func applyEffect(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)

	log.Debug(
		"threshold reached",
		"action", checker.action,
		"target", checker.target.Hex(),
		"votes", checker.tally.TotalVotes,
		"threshold", checker.threshold,
		"voters", len(checker.voters),
	)

	return checker.c.applyEffect(checker.action, checker.target, checker.detail)
}

func resolveTally(c common.Checker, args ...interface{}) error {
	checker := c.(*voteChecker)

	return closeTally(checker.c.st, checker.tally)
}
