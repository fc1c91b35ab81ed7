package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/storage"
)

// Account is one balance, native when `Token` is zero.
//
// models
//  * native balance
// 	- 'ledger-account-<Address>': `Account`
//  * token balance
// 	- 'ledger-token-<Token>-<Address>': `Account`
type Account struct {
	Address common.Address `json:"address"`
	Token   common.Address `json:"token"`
	Balance common.Amount  `json:"balance"`
}

const (
	AccountPrefix      = "ledger-account-"
	TokenAccountPrefix = "ledger-token-"
)

func GetAccountKey(address common.Address) string {
	return fmt.Sprintf("%s%s", AccountPrefix, strings.ToLower(address.Hex()))
}

func GetTokenAccountKey(token, address common.Address) string {
	return fmt.Sprintf("%s%s-%s", TokenAccountPrefix, strings.ToLower(token.Hex()), strings.ToLower(address.Hex()))
}

func (a *Account) key() string {
	if common.IsZeroAddress(a.Token) {
		return GetAccountKey(a.Address)
	}

	return GetTokenAccountKey(a.Token, a.Address)
}

func (a *Account) String() string {
	return string(common.MustMarshalJSON(a))
}

func (a *Account) Save(st *storage.LevelDBBackend) error {
	return st.Put(a.key(), a)
}

// Deposit adds `fund`; overflowing `common.MaximumBalance` is an error.
func (a *Account) Deposit(fund common.Amount) error {
	if val, err := a.Balance.Add(fund); err != nil {
		return err
	} else {
		a.Balance = val
	}
	return nil
}

// Withdraw removes `fund`; going negative is an error.
func (a *Account) Withdraw(fund common.Amount) error {
	if val, err := a.Balance.Sub(fund); err != nil {
		return err
	} else {
		a.Balance = val
	}
	return nil
}

// GetAccount returns the account, a missing one has zero balance.
func GetAccount(st *storage.LevelDBBackend, address common.Address) (a *Account, err error) {
	a = &Account{Address: address}
	_, err = st.GetOrDefault(GetAccountKey(address), a)

	return
}

func GetTokenAccount(st *storage.LevelDBBackend, token, address common.Address) (a *Account, err error) {
	a = &Account{Address: address, Token: token}
	_, err = st.GetOrDefault(GetTokenAccountKey(token, address), a)

	return
}

// GetAccounts iterates the native accounts in address order.
func GetAccounts(st *storage.LevelDBBackend, options *storage.ListOptions) (func() (*Account, bool), func()) {
	iterFunc, closeFunc := st.GetIterator(AccountPrefix, options)

	return (func() (*Account, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return nil, false
			}

			var a Account
			if err := json.Unmarshal(item.Value, &a); err != nil {
				log.Error("broken account record", "key", string(item.Key), "error", err)
				return nil, false
			}
			return &a, hasNext
		}), (func() {
			closeFunc()
		})
}
