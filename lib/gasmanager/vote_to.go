package gasmanager

import (
	"context"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/voting"
)

// Vote casts the vote of `caller` on (`action`, `target`).
func (e *Engine) Vote(ctx context.Context, caller common.Address, action voting.ActionType, target common.Target) (*Receipt, error) {
	var detail voteDetail
	if action.IsValid() && !action.IsValueMoving() && action.Family() != voting.FamilyParameter && action != voting.ActionClearGuardians {
		detail.Subject = common.TargetAddress(target)
	}

	return e.mutate(ctx, "vote-"+action.String(), caller, func(c *call) error {
		return e.vote(c, action, target, detail)
	})
}

func (e *Engine) voteAddress(ctx context.Context, caller common.Address, action voting.ActionType, a common.Address) (*Receipt, error) {
	return e.mutate(ctx, "vote-"+action.String(), caller, func(c *call) error {
		return e.vote(c, action, common.AddressTarget(a), voteDetail{Subject: a})
	})
}

func (e *Engine) voteValue(ctx context.Context, caller common.Address, action voting.ActionType, v uint64) (*Receipt, error) {
	return e.mutate(ctx, "vote-"+action.String(), caller, func(c *call) error {
		return e.vote(c, action, common.ValueTarget(v), voteDetail{})
	})
}

func (e *Engine) VoteToAddVoter(ctx context.Context, caller, voter common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionAddVoter, voter)
}

func (e *Engine) VoteToRemoveVoter(ctx context.Context, caller, voter common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionRemoveVoter, voter)
}

func (e *Engine) VoteToAddVoterSource(ctx context.Context, caller, source common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionAddVoterSource, source)
}

func (e *Engine) VoteToRemoveVoterSource(ctx context.Context, caller, source common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionRemoveVoterSource, source)
}

func (e *Engine) VoteToAddGuardian(ctx context.Context, caller, guardian common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionAddGuardian, guardian)
}

func (e *Engine) VoteToRemoveGuardian(ctx context.Context, caller, guardian common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionRemoveGuardian, guardian)
}

func (e *Engine) VoteToClearGuardians(ctx context.Context, caller common.Address) (*Receipt, error) {
	return e.mutate(ctx, "vote-"+voting.ActionClearGuardians.String(), caller, func(c *call) error {
		return e.vote(c, voting.ActionClearGuardians, ClearGuardiansTarget, voteDetail{})
	})
}

func (e *Engine) VoteToUpdateExpirationWindow(ctx context.Context, caller common.Address, window uint64) (*Receipt, error) {
	return e.voteValue(ctx, caller, voting.ActionExpirationWindow, window)
}

func checkAmount(amount common.Amount) error {
	if amount == 0 {
		return errors.ZeroAmount
	}
	if amount > common.MaximumBalance {
		return errors.ParameterOutOfRange.Clone().SetData("amount", uint64(amount))
	}

	return nil
}

// VoteToFund votes on paying `amount` to `recipient`; once approved any
// guardian or the recipient can execute it.
func (e *Engine) VoteToFund(ctx context.Context, caller, recipient common.Address, amount common.Amount) (*Receipt, error) {
	return e.mutate(ctx, "vote-"+voting.ActionFund.String(), caller, func(c *call) error {
		if common.IsZeroAddress(recipient) {
			return errors.ZeroAddress.Clone().SetData("recipient", recipient.Hex())
		}
		if err := checkAmount(amount); err != nil {
			return err
		}

		detail := voteDetail{Subject: recipient, Amount: amount, HasAmount: true}
		return e.vote(c, voting.ActionFund, common.FundFingerprint(recipient, amount), detail)
	})
}

func (e *Engine) VoteToBurnTokens(ctx context.Context, caller, token common.Address, amount common.Amount) (*Receipt, error) {
	return e.mutate(ctx, "vote-"+voting.ActionBurnTokens.String(), caller, func(c *call) error {
		if common.IsZeroAddress(token) {
			return errors.ZeroAddress.Clone().SetData("token", token.Hex())
		}
		if err := checkAmount(amount); err != nil {
			return err
		}

		detail := voteDetail{Subject: token, Amount: amount, HasAmount: true}
		return e.vote(c, voting.ActionBurnTokens, common.TokenBurnFingerprint(token, amount), detail)
	})
}

func (e *Engine) VoteToBurnCoins(ctx context.Context, caller common.Address, amount common.Amount) (*Receipt, error) {
	return e.mutate(ctx, "vote-"+voting.ActionBurnCoins.String(), caller, func(c *call) error {
		if err := checkAmount(amount); err != nil {
			return err
		}

		detail := voteDetail{Amount: amount, HasAmount: true}
		return e.vote(c, voting.ActionBurnCoins, common.CoinBurnFingerprint(amount), detail)
	})
}

func (e *Engine) VoteToAddWhitelist(ctx context.Context, caller, recipient common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionWhitelistAdd, recipient)
}

func (e *Engine) VoteToRemoveWhitelist(ctx context.Context, caller, recipient common.Address) (*Receipt, error) {
	return e.voteAddress(ctx, caller, voting.ActionWhitelistRemove, recipient)
}

func (e *Engine) VoteToSetPeriodLimit(ctx context.Context, caller common.Address, limit common.Amount) (*Receipt, error) {
	return e.voteValue(ctx, caller, voting.ActionPeriodLimit, uint64(limit))
}

func (e *Engine) VoteToSetMaxBalance(ctx context.Context, caller common.Address, max common.Amount) (*Receipt, error) {
	return e.voteValue(ctx, caller, voting.ActionMaxBalance, uint64(max))
}

func (e *Engine) VoteToSetFundingPeriod(ctx context.Context, caller common.Address, period uint64) (*Receipt, error) {
	return e.voteValue(ctx, caller, voting.ActionFundingPeriod, period)
}
