package gasmanager

import (
	"context"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/common/observer"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/metrics"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/voting"
)

func (c *call) requireGuardian() error {
	guardian, err := registry.Guardians.Has(c.st, c.caller)
	if err != nil {
		return err
	}
	if !guardian {
		return errors.NotGuardian.Clone().SetData("caller", c.caller.Hex())
	}

	return nil
}

// consumeApproval clears the approval of `fingerprint`; without one the call
// fails.
func (c *call) consumeApproval(action voting.ActionType, fingerprint common.Target) error {
	approved, err := isApproved(c.st, action, fingerprint)
	if err != nil {
		return err
	}
	if !approved {
		return errors.ApprovalMissing.Clone().
			SetData("action", action.String()).
			SetData("fingerprint", fingerprint.Hex())
	}

	return clearApproved(c.st, action, fingerprint)
}

func (c *call) balanceOf(token, account common.Address) (common.Amount, error) {
	if common.IsZeroAddress(token) {
		return c.engine.ledger.Balance(c.ctx, c.st, account)
	}

	return c.engine.ledger.TokenBalance(c.ctx, c.st, token, account)
}

// transfer pays `amount` of `token`, native when zero, from the engine
// account to `to`. The engine balance must drop by exactly `amount` and the
// balance of `to` must grow by exactly `amount`. The ledger sees a context
// marked in flight.
func (c *call) transfer(token, to common.Address, amount common.Amount) (err error) {
	from := c.setup.config.EngineAccount

	var before, after, received, receivedAfter common.Amount
	if before, err = c.balanceOf(token, from); err != nil {
		return
	}
	if received, err = c.balanceOf(token, to); err != nil {
		return
	}

	ctx := c.inFlightContext()
	err = c.engine.whileTransferring(func() error {
		if common.IsZeroAddress(token) {
			return c.engine.ledger.Transfer(ctx, c.st, from, to, amount)
		}
		return c.engine.ledger.TransferToken(ctx, c.st, token, from, to, amount)
	})
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return
		}
		return errors.TransferFailed.Clone().SetData("error", err.Error())
	}

	if after, err = c.balanceOf(token, from); err != nil {
		return
	}
	if after > before || before-after != amount {
		return errors.TransferAmountMismatch.Clone().
			SetData("expected", uint64(amount)).
			SetData("before", uint64(before)).
			SetData("after", uint64(after))
	}

	if receivedAfter, err = c.balanceOf(token, to); err != nil {
		return
	}
	if receivedAfter < received || receivedAfter-received != amount {
		return errors.TransferAmountMismatch.Clone().
			SetData("expected", uint64(amount)).
			SetData("to", to.Hex()).
			SetData("received-before", uint64(received)).
			SetData("received-after", uint64(receivedAfter))
	}

	log.Debug("transferred", "token", token, "from", from, "to", to, "amount", amount)

	return nil
}

// checkFundLimits applies the legacy maximum balance and period limit to a
// payment of `amount` to `recipient` and records it in the period.
func (c *call) checkFundLimits(recipient common.Address, amount common.Amount) error {
	if c.params.MaxBalance > 0 {
		balance, err := c.engine.ledger.Balance(c.ctx, c.st, recipient)
		if err != nil {
			return err
		}
		if total, err := balance.Add(amount); err != nil || total > c.params.MaxBalance {
			return errors.MaxBalanceExceeded.Clone().
				SetData("balance", uint64(balance)).
				SetData("amount", uint64(amount)).
				SetData("max-balance", uint64(c.params.MaxBalance))
		}
	}

	if c.params.PeriodLimit < 1 || c.params.FundingPeriod < 1 {
		return nil
	}

	period := c.height / c.params.FundingPeriod
	funded, err := loadFunded(c.st, recipient, period)
	if err != nil {
		return err
	}

	total, err := funded.Add(amount)
	if err != nil || total > c.params.PeriodLimit {
		return errors.PeriodLimitExceeded.Clone().
			SetData("period", period).
			SetData("funded", uint64(funded)).
			SetData("amount", uint64(amount)).
			SetData("period-limit", uint64(c.params.PeriodLimit))
	}

	return saveFunded(c.st, recipient, period, total)
}

func (c *call) executed(family string, amount common.Amount) {
	c.afterCommit(func() {
		metrics.Governance.AddExecution(family)
		metrics.Governance.AddFundsDisbursed(uint64(amount))
	})
}

// ExecuteFund pays an approved fund. The caller is a guardian or the
// recipient itself.
func (e *Engine) ExecuteFund(ctx context.Context, caller, recipient common.Address, amount common.Amount) (*Receipt, error) {
	return e.mutate(ctx, "execute-fund", caller, func(c *call) (err error) {
		if common.IsZeroAddress(recipient) {
			return errors.ZeroAddress.Clone().SetData("recipient", recipient.Hex())
		}
		if err = checkAmount(amount); err != nil {
			return
		}

		if caller != recipient {
			if err = c.requireGuardian(); err != nil {
				return errors.NotGuardianOrRecipient.Clone().SetData("caller", caller.Hex())
			}
		}

		legacy := c.setup.config.IsLegacy()
		if legacy {
			var whitelisted bool
			if whitelisted, err = registry.Whitelist.Has(c.st, recipient); err != nil {
				return
			}
			if !whitelisted {
				return errors.RecipientNotWhitelisted.Clone().SetData("recipient", recipient.Hex())
			}
		}

		fingerprint := common.FundFingerprint(recipient, amount)
		if err = c.consumeApproval(voting.ActionFund, fingerprint); err != nil {
			return
		}

		if legacy {
			if err = c.checkFundLimits(recipient, amount); err != nil {
				return
			}
		}

		if err = c.transfer(common.ZeroAddress, recipient, amount); err != nil {
			return
		}

		var totals Totals
		if totals, err = loadTotals(c.st); err != nil {
			return
		}
		if totals.Funded, err = totals.Funded.Add(amount); err != nil {
			return
		}
		if err = saveTotals(c.st, totals); err != nil {
			return
		}

		c.emit(observer.Event{
			Name:    observer.EventFundExecuted,
			Action:  voting.ActionFund.String(),
			Target:  fingerprint.Hex(),
			Subject: recipient.Hex(),
			Amount:  amount.String(),
		})
		c.executed(approvalFund, amount)

		return
	})
}

// ExecuteTokenBurn sends an approved amount of `token` to the burn address.
func (e *Engine) ExecuteTokenBurn(ctx context.Context, caller, token common.Address, amount common.Amount) (*Receipt, error) {
	return e.mutate(ctx, "execute-token-burn", caller, func(c *call) (err error) {
		if common.IsZeroAddress(token) {
			return errors.ZeroAddress.Clone().SetData("token", token.Hex())
		}
		if err = checkAmount(amount); err != nil {
			return
		}
		if err = c.requireGuardian(); err != nil {
			return
		}

		fingerprint := common.TokenBurnFingerprint(token, amount)
		if err = c.consumeApproval(voting.ActionBurnTokens, fingerprint); err != nil {
			return
		}
		if err = c.transfer(token, c.setup.config.BurnAddress, amount); err != nil {
			return
		}

		var totals Totals
		if totals, err = loadTotals(c.st); err != nil {
			return
		}
		if totals.TokensBurned, err = totals.TokensBurned.Add(amount); err != nil {
			return
		}
		if err = saveTotals(c.st, totals); err != nil {
			return
		}

		c.emit(observer.Event{
			Name:    observer.EventBurnExecuted,
			Action:  voting.ActionBurnTokens.String(),
			Target:  fingerprint.Hex(),
			Subject: token.Hex(),
			Amount:  amount.String(),
		})
		c.executed(approvalBurn, amount)

		return
	})
}

// ExecuteCoinBurn sends an approved amount of native coins to the burn
// address.
func (e *Engine) ExecuteCoinBurn(ctx context.Context, caller common.Address, amount common.Amount) (*Receipt, error) {
	return e.mutate(ctx, "execute-coin-burn", caller, func(c *call) (err error) {
		if err = checkAmount(amount); err != nil {
			return
		}
		if err = c.requireGuardian(); err != nil {
			return
		}

		fingerprint := common.CoinBurnFingerprint(amount)
		if err = c.consumeApproval(voting.ActionBurnCoins, fingerprint); err != nil {
			return
		}
		if err = c.transfer(common.ZeroAddress, c.setup.config.BurnAddress, amount); err != nil {
			return
		}

		var totals Totals
		if totals, err = loadTotals(c.st); err != nil {
			return
		}
		if totals.CoinsBurned, err = totals.CoinsBurned.Add(amount); err != nil {
			return
		}
		if err = saveTotals(c.st, totals); err != nil {
			return
		}

		c.emit(observer.Event{
			Name:   observer.EventCoinBurnExecuted,
			Action: voting.ActionBurnCoins.String(),
			Target: fingerprint.Hex(),
			Amount: amount.String(),
		})
		c.executed(approvalCoin, amount)

		return
	})
}

// ReclaimExpiredTally closes an expired tally without casting a vote, which
// frees the roster for changes.
func (e *Engine) ReclaimExpiredTally(ctx context.Context, caller common.Address, action voting.ActionType, target common.Target) (*Receipt, error) {
	return e.mutate(ctx, "reclaim-expired-tally", caller, func(c *call) (err error) {
		if !action.IsValid() {
			return errors.UnknownActionType.Clone().SetData("action", uint8(action))
		}

		var isVoter bool
		if isVoter, err = c.isVoter(caller); err != nil {
			return
		}
		if !isVoter {
			return errors.NotVoter.Clone().SetData("caller", caller.Hex())
		}

		tally, err := loadTally(c.st, action, target)
		if err != nil {
			return
		}
		if !tally.IsActive() {
			return errors.NoActiveTally.Clone().
				SetData("action", action.String()).
				SetData("target", target.Hex())
		}
		if !tally.IsExpired(c.height, c.params.ExpirationWindow) {
			return errors.TallyNotExpired.Clone().
				SetData("height", c.height).
				SetData("expiration-height", tally.ExpirationHeight(c.params.ExpirationWindow))
		}

		votes := tally.TotalVotes
		if err = closeTally(c.st, tally); err != nil {
			return
		}

		c.emit(observer.Event{
			Name:   observer.EventTallyReset,
			Action: action.String(),
			Target: target.Hex(),
			Votes:  votes,
		})

		return
	})
}
