package gasmanager

import (
	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/common/observer"
	"boscoin.io/gasmanager/lib/metrics"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/voting"
)

var setEvents = map[voting.ActionType]string{
	voting.ActionAddVoter:          observer.EventVoterAdded,
	voting.ActionRemoveVoter:       observer.EventVoterRemoved,
	voting.ActionAddGuardian:       observer.EventGuardianAdded,
	voting.ActionRemoveGuardian:    observer.EventGuardianRemoved,
	voting.ActionAddVoterSource:    observer.EventSourceAdded,
	voting.ActionRemoveVoterSource: observer.EventSourceRemoved,
	voting.ActionWhitelistAdd:      observer.EventWhitelistAdded,
	voting.ActionWhitelistRemove:   observer.EventWhitelistRemoved,
}

var approvalEvents = map[voting.ActionType]string{
	voting.ActionFund:       observer.EventFundApproved,
	voting.ActionBurnTokens: observer.EventBurnApproved,
	voting.ActionBurnCoins:  observer.EventCoinBurnApproved,
}

// applyEffect changes the state for a passed tally and emits the domain
// event followed by `state-changed`.
func (c *call) applyEffect(action voting.ActionType, target common.Target, detail voteDetail) (err error) {
	event := observer.Event{
		Action: action.String(),
		Target: target.Hex(),
	}

	switch action {
	case voting.ActionAddVoter, voting.ActionAddGuardian, voting.ActionAddVoterSource, voting.ActionWhitelistAdd:
		a := common.TargetAddress(target)
		if err = effectSet(action).Add(c.st, a); err != nil {
			return
		}
		event.Name = setEvents[action]
		event.Subject = a.Hex()
	case voting.ActionRemoveVoter, voting.ActionRemoveGuardian, voting.ActionRemoveVoterSource, voting.ActionWhitelistRemove:
		a := common.TargetAddress(target)
		if err = effectSet(action).Remove(c.st, a); err != nil {
			return
		}
		event.Name = setEvents[action]
		event.Subject = a.Hex()
	case voting.ActionClearGuardians:
		var removed []common.Address
		if removed, err = registry.Guardians.Clear(c.st); err != nil {
			return
		}
		event.Name = observer.EventGuardiansCleared
		event.Value = uint64(len(removed))
	case voting.ActionExpirationWindow, voting.ActionPeriodLimit, voting.ActionMaxBalance, voting.ActionFundingPeriod:
		if event, err = c.updateParameter(action, target); err != nil {
			return
		}
	case voting.ActionFund, voting.ActionBurnTokens, voting.ActionBurnCoins:
		if err = setApproved(c.st, action, target); err != nil {
			return
		}
		event.Name = approvalEvents[action]
		if !common.IsZeroAddress(detail.Subject) {
			event.Subject = detail.Subject.Hex()
		}
		if detail.HasAmount {
			event.Amount = detail.Amount.String()
		}
	}

	c.emit(event)
	c.emit(observer.Event{
		Name:   observer.EventStateChanged,
		Action: action.String(),
		Target: target.Hex(),
	})

	name := action.String()
	c.afterCommit(func() {
		metrics.Governance.AddStateChange(name)
	})
	if action.ChangesRoster() {
		ctx, e := c.ctx, c.engine
		c.afterCommit(func() {
			if voters, err := e.ListVoters(ctx); err == nil {
				metrics.Governance.SetVoters(len(voters))
			}
		})
	}

	log.Info("state changed", "action", action, "target", target.Hex(), "event", event.Name)

	return nil
}

func effectSet(action voting.ActionType) registry.Set {
	switch action {
	case voting.ActionAddVoter, voting.ActionRemoveVoter:
		return registry.Voters
	case voting.ActionAddGuardian, voting.ActionRemoveGuardian:
		return registry.Guardians
	case voting.ActionAddVoterSource, voting.ActionRemoveVoterSource:
		return registry.Sources
	}

	return registry.Whitelist
}

func (c *call) updateParameter(action voting.ActionType, target common.Target) (event observer.Event, err error) {
	v, _ := common.TargetValue(target)

	event = observer.Event{
		Action: action.String(),
		Target: target.Hex(),
		Value:  v,
	}

	switch action {
	case voting.ActionExpirationWindow:
		c.params.ExpirationWindow = v
		event.Name = observer.EventExpirationWindowUpdated
	case voting.ActionPeriodLimit:
		c.params.PeriodLimit = common.Amount(v)
		event.Name = observer.EventPeriodLimitUpdated
		event.Amount = c.params.PeriodLimit.String()
	case voting.ActionMaxBalance:
		c.params.MaxBalance = common.Amount(v)
		event.Name = observer.EventMaxBalanceUpdated
		event.Amount = c.params.MaxBalance.String()
	case voting.ActionFundingPeriod:
		c.params.FundingPeriod = v
		event.Name = observer.EventFundingPeriodUpdated
	}

	err = saveParameters(c.st, c.params)

	return
}
