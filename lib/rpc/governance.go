package rpc

import (
	"context"
	"net/http"
	"strconv"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/gasmanager"
	"boscoin.io/gasmanager/lib/version"
	"boscoin.io/gasmanager/lib/voter"
	"boscoin.io/gasmanager/lib/voting"
)

// requestContext carries the nested source lookup count sent by a remote
// engine, so cycles of engines stay bounded across nodes.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if v := r.Header.Get(voter.HopsHeader); len(v) > 0 {
		if n, err := strconv.Atoi(v); err == nil {
			ctx = voter.WithHops(ctx, n)
		}
	}

	return ctx
}

func parseAddress(field, s string) (common.Address, error) {
	a, err := common.ParseAddress(s)
	if err != nil {
		return a, errors.InvalidAddress.Clone().SetData(field, s)
	}

	return a, nil
}

type NoArgs struct{}

type CallerArgs struct {
	Caller string `json:"caller"`
}

// VoteArgs is a raw vote: `Action` is the action name or number, `Target`
// the hex target.
type VoteArgs struct {
	Caller string `json:"caller"`
	Action string `json:"action"`
	Target string `json:"target"`
}

type AddressVoteArgs struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

type ValueVoteArgs struct {
	Caller string `json:"caller"`
	Value  uint64 `json:"value"`
}

type AmountArgs struct {
	Caller  string        `json:"caller"`
	Address string        `json:"address,omitempty"`
	Amount  common.Amount `json:"amount"`
}

type AddressArgs struct {
	Address string `json:"address"`
}

type TallyArgs struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

type AddressesReply struct {
	Addresses []common.Address `json:"addresses"`
}

type BoolReply struct {
	Result bool `json:"result"`
}

type CountReply struct {
	Count uint64 `json:"count"`
}

type TalliesReply struct {
	Tallies []gasmanager.TallyInfo `json:"tallies"`
}

type ThresholdReply struct {
	Threshold     int `json:"threshold"`
	Majority      int `json:"majority"`
	Supermajority int `json:"supermajority"`
}

type BalanceReply struct {
	Account common.Address `json:"account"`
	Token   common.Address `json:"token"`
	Balance common.Amount  `json:"balance"`
}

type StatusReply struct {
	Version     string `json:"version"`
	Initialized bool   `json:"initialized"`
	Height      uint64 `json:"height"`
}

func (a *VoteArgs) parse() (caller common.Address, action voting.ActionType, target common.Target, err error) {
	if caller, err = parseAddress("caller", a.Caller); err != nil {
		return
	}
	if action, err = voting.ParseActionType(a.Action); err != nil {
		return
	}
	target, err = common.ParseTarget(a.Target)

	return
}

func (a *TallyArgs) parse() (action voting.ActionType, target common.Target, err error) {
	if action, err = voting.ParseActionType(a.Action); err != nil {
		return
	}
	target, err = common.ParseTarget(a.Target)

	return
}

// GovernanceService exposes the engine as the `Governance` JSON-RPC
// service; the `ListVoters` and `IsVoter` methods also make this node a
// voter source of other engines.
type GovernanceService struct {
	engine *gasmanager.Engine
}

func NewGovernanceService(engine *gasmanager.Engine) *GovernanceService {
	return &GovernanceService{engine: engine}
}

func (g *GovernanceService) receipt(reply *gasmanager.Receipt, receipt *gasmanager.Receipt, err error) error {
	if err != nil {
		return err
	}
	*reply = *receipt

	return nil
}

type addressVote func(context.Context, common.Address, common.Address) (*gasmanager.Receipt, error)

func (g *GovernanceService) addressVote(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt, f addressVote) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	a, err := parseAddress("address", args.Address)
	if err != nil {
		return err
	}

	receipt, err := f(requestContext(r), caller, a)
	return g.receipt(reply, receipt, err)
}

type amountCall func(context.Context, common.Address, common.Address, common.Amount) (*gasmanager.Receipt, error)

func (g *GovernanceService) amountCall(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt, f amountCall) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}
	a, err := parseAddress("address", args.Address)
	if err != nil {
		return err
	}

	receipt, err := f(requestContext(r), caller, a, args.Amount)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) Vote(r *http.Request, args *VoteArgs, reply *gasmanager.Receipt) error {
	caller, action, target, err := args.parse()
	if err != nil {
		return err
	}

	receipt, err := g.engine.Vote(requestContext(r), caller, action, target)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) VoteToAddVoter(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToAddVoter)
}

func (g *GovernanceService) VoteToRemoveVoter(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToRemoveVoter)
}

func (g *GovernanceService) VoteToAddVoterSource(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToAddVoterSource)
}

func (g *GovernanceService) VoteToRemoveVoterSource(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToRemoveVoterSource)
}

func (g *GovernanceService) VoteToAddGuardian(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToAddGuardian)
}

func (g *GovernanceService) VoteToRemoveGuardian(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToRemoveGuardian)
}

func (g *GovernanceService) VoteToClearGuardians(r *http.Request, args *CallerArgs, reply *gasmanager.Receipt) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	receipt, err := g.engine.VoteToClearGuardians(requestContext(r), caller)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) valueVote(r *http.Request, args *ValueVoteArgs, reply *gasmanager.Receipt, f func(context.Context, common.Address, uint64) (*gasmanager.Receipt, error)) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	receipt, err := f(requestContext(r), caller, args.Value)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) VoteToUpdateExpirationWindow(r *http.Request, args *ValueVoteArgs, reply *gasmanager.Receipt) error {
	return g.valueVote(r, args, reply, g.engine.VoteToUpdateExpirationWindow)
}

func (g *GovernanceService) VoteToFund(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	return g.amountCall(r, args, reply, g.engine.VoteToFund)
}

func (g *GovernanceService) VoteToBurnTokens(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	return g.amountCall(r, args, reply, g.engine.VoteToBurnTokens)
}

func (g *GovernanceService) VoteToBurnCoins(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	receipt, err := g.engine.VoteToBurnCoins(requestContext(r), caller, args.Amount)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) VoteToAddWhitelist(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToAddWhitelist)
}

func (g *GovernanceService) VoteToRemoveWhitelist(r *http.Request, args *AddressVoteArgs, reply *gasmanager.Receipt) error {
	return g.addressVote(r, args, reply, g.engine.VoteToRemoveWhitelist)
}

func (g *GovernanceService) VoteToSetPeriodLimit(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	receipt, err := g.engine.VoteToSetPeriodLimit(requestContext(r), caller, args.Amount)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) VoteToSetMaxBalance(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	receipt, err := g.engine.VoteToSetMaxBalance(requestContext(r), caller, args.Amount)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) VoteToSetFundingPeriod(r *http.Request, args *ValueVoteArgs, reply *gasmanager.Receipt) error {
	return g.valueVote(r, args, reply, g.engine.VoteToSetFundingPeriod)
}

func (g *GovernanceService) ExecuteFund(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	return g.amountCall(r, args, reply, g.engine.ExecuteFund)
}

func (g *GovernanceService) ExecuteTokenBurn(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	return g.amountCall(r, args, reply, g.engine.ExecuteTokenBurn)
}

func (g *GovernanceService) ExecuteCoinBurn(r *http.Request, args *AmountArgs, reply *gasmanager.Receipt) error {
	caller, err := parseAddress("caller", args.Caller)
	if err != nil {
		return err
	}

	receipt, err := g.engine.ExecuteCoinBurn(requestContext(r), caller, args.Amount)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) ReclaimExpiredTally(r *http.Request, args *VoteArgs, reply *gasmanager.Receipt) error {
	caller, action, target, err := args.parse()
	if err != nil {
		return err
	}

	receipt, err := g.engine.ReclaimExpiredTally(requestContext(r), caller, action, target)
	return g.receipt(reply, receipt, err)
}

func (g *GovernanceService) ListVoters(r *http.Request, args *voter.ListVotersArgs, reply *voter.ListVotersReply) error {
	voters, err := g.engine.ListVoters(requestContext(r))
	if err != nil {
		return err
	}
	reply.Voters = voters

	return nil
}

func (g *GovernanceService) IsVoter(r *http.Request, args *voter.IsVoterArgs, reply *voter.IsVoterReply) (err error) {
	reply.IsVoter, err = g.engine.IsVoter(requestContext(r), args.Address)
	return
}

func (g *GovernanceService) ListLocalVoters(r *http.Request, args *NoArgs, reply *AddressesReply) (err error) {
	reply.Addresses, err = g.engine.ListLocalVoters()
	return
}

func (g *GovernanceService) ListVoterSources(r *http.Request, args *NoArgs, reply *AddressesReply) (err error) {
	reply.Addresses, err = g.engine.ListVoterSources()
	return
}

func (g *GovernanceService) IsGuardian(r *http.Request, args *AddressArgs, reply *BoolReply) error {
	a, err := parseAddress("address", args.Address)
	if err != nil {
		return err
	}

	reply.Result, err = g.engine.IsGuardian(a)
	return err
}

func (g *GovernanceService) ListGuardians(r *http.Request, args *NoArgs, reply *AddressesReply) (err error) {
	reply.Addresses, err = g.engine.ListGuardians()
	return
}

func (g *GovernanceService) GuardianCount(r *http.Request, args *NoArgs, reply *CountReply) (err error) {
	reply.Count, err = g.engine.GuardianCount()
	return
}

func (g *GovernanceService) ListWhitelist(r *http.Request, args *NoArgs, reply *AddressesReply) (err error) {
	reply.Addresses, err = g.engine.ListWhitelist()
	return
}

func (g *GovernanceService) GetTally(r *http.Request, args *TallyArgs, reply *gasmanager.TallyInfo) error {
	action, target, err := args.parse()
	if err != nil {
		return err
	}

	*reply, err = g.engine.GetTally(action, target)
	return err
}

func (g *GovernanceService) ListTallies(r *http.Request, args *NoArgs, reply *TalliesReply) (err error) {
	reply.Tallies, err = g.engine.ListTallies()
	return
}

func (g *GovernanceService) Threshold(r *http.Request, args *NoArgs, reply *ThresholdReply) (err error) {
	ctx := requestContext(r)
	if reply.Threshold, err = g.engine.Threshold(ctx); err != nil {
		return
	}
	if reply.Majority, err = g.engine.MajorityThreshold(ctx); err != nil {
		return
	}
	reply.Supermajority, err = g.engine.SupermajorityThreshold(ctx)

	return
}

func (g *GovernanceService) ActiveVoteCount(r *http.Request, args *NoArgs, reply *CountReply) (err error) {
	reply.Count, err = g.engine.ActiveVoteCount()
	return
}

func (g *GovernanceService) Parameters(r *http.Request, args *NoArgs, reply *gasmanager.Parameters) (err error) {
	*reply, err = g.engine.Parameters()
	return
}

func (g *GovernanceService) Totals(r *http.Request, args *NoArgs, reply *gasmanager.Totals) (err error) {
	*reply, err = g.engine.Totals()
	return
}

// IsApproved takes the fingerprint of the approval as `Target`.
func (g *GovernanceService) IsApproved(r *http.Request, args *TallyArgs, reply *BoolReply) error {
	action, fingerprint, err := args.parse()
	if err != nil {
		return err
	}

	reply.Result, err = g.engine.IsApproved(action, fingerprint)
	return err
}

func (g *GovernanceService) Config(r *http.Request, args *NoArgs, reply *common.Config) (err error) {
	*reply, err = g.engine.Config()
	return
}

func (g *GovernanceService) Balance(r *http.Request, args *NoArgs, reply *BalanceReply) error {
	config, err := g.engine.Config()
	if err != nil {
		return err
	}

	reply.Account = config.EngineAccount
	reply.Balance, err = g.engine.Balance(requestContext(r))
	return err
}

func (g *GovernanceService) TokenBalance(r *http.Request, args *AddressArgs, reply *BalanceReply) error {
	token, err := parseAddress("address", args.Address)
	if err != nil {
		return err
	}

	config, err := g.engine.Config()
	if err != nil {
		return err
	}

	reply.Account = config.EngineAccount
	reply.Token = token
	reply.Balance, err = g.engine.TokenBalance(requestContext(r), token)
	return err
}

func (g *GovernanceService) Status(r *http.Request, args *NoArgs, reply *StatusReply) error {
	reply.Version = version.Version
	reply.Initialized = g.engine.IsInitialized()
	reply.Height = g.engine.Height()

	return nil
}
