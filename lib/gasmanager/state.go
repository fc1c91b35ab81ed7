package gasmanager

import (
	"fmt"
	"strings"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/storage"
	"boscoin.io/gasmanager/lib/voting"
)

// models
//  * 'gm-config': `common.Config` of the deployment, written once by genesis
//  * 'gm-parameters': `Parameters`
//  * 'gm-totals': `Totals`
//  * 'gm-active-votes': number of open tallies
//  * 'gm-tally-<action>-<target>': `voting.Tally`
//  * 'gm-voted-<action>-<target>-<voter>': has voted flag
//  * 'gm-approval-<family>-<fingerprint>': approval flag
//  * 'gm-funded-<recipient>-<period>': amount funded in one funding period
const (
	ConfigKey      = "gm-config"
	ParametersKey  = "gm-parameters"
	TotalsKey      = "gm-totals"
	ActiveVotesKey = "gm-active-votes"
	TallyPrefix    = "gm-tally-"
	VotedPrefix    = "gm-voted-"
	ApprovalPrefix = "gm-approval-"
	FundedPrefix   = "gm-funded-"
)

const (
	approvalFund = "fund"
	approvalBurn = "burn"
	approvalCoin = "coin-burn"
)

// ClearGuardiansTarget is the target `VoteToClearGuardians` votes on.
var ClearGuardiansTarget = common.ValueTarget(1)

// Parameters are the values changed by parameter votes. In the legacy
// variant a zero limit disables its rule.
type Parameters struct {
	ExpirationWindow uint64        `json:"expiration_window"`
	PeriodLimit      common.Amount `json:"period_limit"`
	MaxBalance       common.Amount `json:"max_balance"`
	FundingPeriod    uint64        `json:"funding_period"`
}

func DefaultParameters() Parameters {
	return Parameters{ExpirationWindow: common.DefaultExpirationWindow}
}

// Totals are running sums of executed approvals; nothing depends on them.
type Totals struct {
	Funded       common.Amount `json:"funded"`
	TokensBurned common.Amount `json:"tokens_burned"`
	CoinsBurned  common.Amount `json:"coins_burned"`
}

func lowerHex(s string) string {
	return strings.ToLower(s)
}

func tallyKey(action voting.ActionType, target common.Target) string {
	return fmt.Sprintf("%s%02d-%s", TallyPrefix, uint8(action), lowerHex(target.Hex()))
}

func votedKey(action voting.ActionType, target common.Target, voter common.Address) string {
	return fmt.Sprintf("%s%02d-%s-%s", VotedPrefix, uint8(action), lowerHex(target.Hex()), lowerHex(voter.Hex()))
}

func approvalFamily(action voting.ActionType) string {
	switch action {
	case voting.ActionFund:
		return approvalFund
	case voting.ActionBurnTokens:
		return approvalBurn
	case voting.ActionBurnCoins:
		return approvalCoin
	}
	return ""
}

func approvalKey(action voting.ActionType, fingerprint common.Target) string {
	return fmt.Sprintf("%s%s-%s", ApprovalPrefix, approvalFamily(action), lowerHex(fingerprint.Hex()))
}

func fundedKey(recipient common.Address, period uint64) string {
	return fmt.Sprintf("%s%s-%020d", FundedPrefix, lowerHex(recipient.Hex()), period)
}

func isInitialized(st *storage.LevelDBBackend) (bool, error) {
	return st.Has(ConfigKey)
}

func loadConfig(st *storage.LevelDBBackend) (config common.Config, found bool, err error) {
	found, err = st.GetOrDefault(ConfigKey, &config)
	return
}

func loadParameters(st *storage.LevelDBBackend) (p Parameters, err error) {
	p = DefaultParameters()
	_, err = st.GetOrDefault(ParametersKey, &p)
	return
}

func saveParameters(st *storage.LevelDBBackend, p Parameters) error {
	return st.Put(ParametersKey, p)
}

func loadTotals(st *storage.LevelDBBackend) (t Totals, err error) {
	_, err = st.GetOrDefault(TotalsKey, &t)
	return
}

func saveTotals(st *storage.LevelDBBackend, t Totals) error {
	return st.Put(TotalsKey, t)
}

func loadActiveVotes(st *storage.LevelDBBackend) (n uint64, err error) {
	_, err = st.GetOrDefault(ActiveVotesKey, &n)
	return
}

func addActiveVotes(st *storage.LevelDBBackend, delta int) (n uint64, err error) {
	if n, err = loadActiveVotes(st); err != nil {
		return
	}

	if delta < 0 && n < uint64(-delta) {
		return 0, fmt.Errorf("active vote count would go below zero: %d%+d", n, delta)
	}
	n = uint64(int64(n) + int64(delta))

	err = st.Put(ActiveVotesKey, n)
	return
}

// loadTally returns the stored tally, or a new inactive one.
func loadTally(st *storage.LevelDBBackend, action voting.ActionType, target common.Target) (*voting.Tally, error) {
	tally := voting.NewTally(action, target)
	if _, err := st.GetOrDefault(tallyKey(action, target), tally); err != nil {
		return nil, err
	}

	return tally, nil
}

func saveTally(st *storage.LevelDBBackend, tally *voting.Tally) error {
	return st.Put(tallyKey(tally.Action, tally.Target), tally)
}

func hasVoted(st *storage.LevelDBBackend, action voting.ActionType, target common.Target, voter common.Address) (bool, error) {
	return st.Has(votedKey(action, target, voter))
}

func setVoted(st *storage.LevelDBBackend, action voting.ActionType, target common.Target, voter common.Address) error {
	return st.Put(votedKey(action, target, voter), true)
}

// closeTally clears the has voted flags of the tally's own voters and
// deletes it, decreasing the active vote count.
func closeTally(st *storage.LevelDBBackend, tally *voting.Tally) (err error) {
	for _, v := range tally.Voters {
		if err = st.Delete(votedKey(tally.Action, tally.Target, v)); err != nil {
			return
		}
	}

	wasActive := tally.IsActive()
	tally.Reset()

	if err = st.Delete(tallyKey(tally.Action, tally.Target)); err != nil {
		return
	}
	if wasActive {
		_, err = addActiveVotes(st, -1)
	}

	return
}

func isApproved(st *storage.LevelDBBackend, action voting.ActionType, fingerprint common.Target) (bool, error) {
	return st.Has(approvalKey(action, fingerprint))
}

func setApproved(st *storage.LevelDBBackend, action voting.ActionType, fingerprint common.Target) error {
	return st.Put(approvalKey(action, fingerprint), true)
}

func clearApproved(st *storage.LevelDBBackend, action voting.ActionType, fingerprint common.Target) error {
	return st.Delete(approvalKey(action, fingerprint))
}

func loadFunded(st *storage.LevelDBBackend, recipient common.Address, period uint64) (a common.Amount, err error) {
	_, err = st.GetOrDefault(fundedKey(recipient, period), &a)
	return
}

func saveFunded(st *storage.LevelDBBackend, recipient common.Address, period uint64, a common.Amount) error {
	return st.Put(fundedKey(recipient, period), a)
}
