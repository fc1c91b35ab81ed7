package rpc

import (
	"net/http"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/gasmanager"
)

type AccountArgs struct {
	Account string `json:"account"`
	// Token is empty for the native coin.
	Token string `json:"token,omitempty"`
}

// LedgerService reads the balances of any account from the ledger the
// engine pays from.
type LedgerService struct {
	engine *gasmanager.Engine
}

func NewLedgerService(engine *gasmanager.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

func (l *LedgerService) Balance(r *http.Request, args *AccountArgs, reply *BalanceReply) (err error) {
	if reply.Account, err = parseAddress("account", args.Account); err != nil {
		return
	}

	reply.Balance, err = l.engine.Ledger().Balance(requestContext(r), l.engine.Storage(), reply.Account)
	return
}

func (l *LedgerService) TokenBalance(r *http.Request, args *AccountArgs, reply *BalanceReply) (err error) {
	if reply.Account, err = parseAddress("account", args.Account); err != nil {
		return
	}
	if reply.Token, err = parseAddress("token", args.Token); err != nil {
		return
	}
	if common.IsZeroAddress(reply.Token) {
		return l.Balance(r, args, reply)
	}

	reply.Balance, err = l.engine.Ledger().TokenBalance(requestContext(r), l.engine.Storage(), reply.Token, reply.Account)
	return
}
