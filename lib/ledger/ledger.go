package ledger

import (
	"context"
	"sync"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/storage"
)

// Ledger moves native coins and tokens. Every call works on `st`, so a
// transfer made inside a storage transaction is reverted with it.
type Ledger interface {
	Balance(ctx context.Context, st *storage.LevelDBBackend, account common.Address) (common.Amount, error)
	TokenBalance(ctx context.Context, st *storage.LevelDBBackend, token, account common.Address) (common.Amount, error)
	Transfer(ctx context.Context, st *storage.LevelDBBackend, from, to common.Address, amount common.Amount) error
	TransferToken(ctx context.Context, st *storage.LevelDBBackend, token, from, to common.Address, amount common.Amount) error
}

// Transfer describes one movement seen by a ReceiveHook.
type Transfer struct {
	Token  common.Address
	From   common.Address
	To     common.Address
	Amount common.Amount
}

func (t Transfer) IsToken() bool {
	return !common.IsZeroAddress(t.Token)
}

// ReceiveHook runs when its account is credited, before the transfer
// returns; an error fails the transfer.
type ReceiveHook func(ctx context.Context, st *storage.LevelDBBackend, t Transfer) error

// AccountLedger keeps balances as `Account` records next to the engine
// state.
type AccountLedger struct {
	sync.RWMutex
	hooks map[common.Address]ReceiveHook
}

func NewAccountLedger() *AccountLedger {
	return &AccountLedger{hooks: map[common.Address]ReceiveHook{}}
}

// OnReceive installs `hook` for `account`; a nil hook removes it.
func (l *AccountLedger) OnReceive(account common.Address, hook ReceiveHook) {
	l.Lock()
	defer l.Unlock()

	if hook == nil {
		delete(l.hooks, account)
		return
	}
	l.hooks[account] = hook
}

func (l *AccountLedger) hook(account common.Address) ReceiveHook {
	l.RLock()
	defer l.RUnlock()

	return l.hooks[account]
}

func (l *AccountLedger) Balance(_ context.Context, st *storage.LevelDBBackend, account common.Address) (common.Amount, error) {
	a, err := GetAccount(st, account)
	if err != nil {
		return 0, err
	}

	return a.Balance, nil
}

func (l *AccountLedger) TokenBalance(_ context.Context, st *storage.LevelDBBackend, token, account common.Address) (common.Amount, error) {
	a, err := GetTokenAccount(st, token, account)
	if err != nil {
		return 0, err
	}

	return a.Balance, nil
}

// SetBalance overwrites a native balance, used by genesis and tests.
func (l *AccountLedger) SetBalance(st *storage.LevelDBBackend, account common.Address, amount common.Amount) error {
	return (&Account{Address: account, Balance: amount}).Save(st)
}

func (l *AccountLedger) SetTokenBalance(st *storage.LevelDBBackend, token, account common.Address, amount common.Amount) error {
	return (&Account{Address: account, Token: token, Balance: amount}).Save(st)
}

func (l *AccountLedger) Transfer(ctx context.Context, st *storage.LevelDBBackend, from, to common.Address, amount common.Amount) error {
	return l.move(ctx, st, Transfer{From: from, To: to, Amount: amount})
}

func (l *AccountLedger) TransferToken(ctx context.Context, st *storage.LevelDBBackend, token, from, to common.Address, amount common.Amount) error {
	if common.IsZeroAddress(token) {
		return errors.ZeroAddress.Clone().SetData("token", token.Hex())
	}

	return l.move(ctx, st, Transfer{Token: token, From: from, To: to, Amount: amount})
}

func (l *AccountLedger) load(st *storage.LevelDBBackend, token, address common.Address) (*Account, error) {
	if common.IsZeroAddress(token) {
		return GetAccount(st, address)
	}

	return GetTokenAccount(st, token, address)
}

func (l *AccountLedger) move(ctx context.Context, st *storage.LevelDBBackend, t Transfer) (err error) {
	if common.IsZeroAddress(t.To) {
		return errors.ZeroAddress.Clone().SetData("to", t.To.Hex())
	}

	var sender, receiver *Account
	if sender, err = l.load(st, t.Token, t.From); err != nil {
		return
	}
	if err = sender.Withdraw(t.Amount); err != nil {
		return errors.InsufficientBalance.Clone().
			SetData("account", t.From.Hex()).
			SetData("balance", sender.Balance.String())
	}
	if err = sender.Save(st); err != nil {
		return
	}

	if receiver, err = l.load(st, t.Token, t.To); err != nil {
		return
	}
	if err = receiver.Deposit(t.Amount); err != nil {
		return
	}
	if err = receiver.Save(st); err != nil {
		return
	}

	log.Debug("transferred", "token", t.Token, "from", t.From, "to", t.To, "amount", t.Amount)

	if hook := l.hook(t.To); hook != nil {
		if err = hook(ctx, st, t); err != nil {
			log.Debug("receive hook failed", "to", t.To, "error", err)
			return
		}
	}

	return nil
}
