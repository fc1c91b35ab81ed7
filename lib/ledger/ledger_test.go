package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/storage"
)

var (
	alice = common.MustParseAddress("0x1000000000000000000000000000000000000001")
	bob   = common.MustParseAddress("0x1000000000000000000000000000000000000002")
	token = common.MustParseAddress("0x2000000000000000000000000000000000000001")
)

func TestAccountLedgerTransfer(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	ctx := context.Background()
	l := NewAccountLedger()
	require.NoError(t, l.SetBalance(st, alice, 100))

	require.NoError(t, l.Transfer(ctx, st, alice, bob, 30))

	balance, err := l.Balance(ctx, st, alice)
	require.NoError(t, err)
	require.Equal(t, common.Amount(70), balance)

	balance, err = l.Balance(ctx, st, bob)
	require.NoError(t, err)
	require.Equal(t, common.Amount(30), balance)

	err = l.Transfer(ctx, st, bob, alice, 31)
	require.True(t, errors.InsufficientBalance.Is(err))

	err = l.Transfer(ctx, st, alice, common.ZeroAddress, 1)
	require.True(t, errors.ZeroAddress.Is(err))

	// unknown accounts are empty
	balance, err = l.Balance(ctx, st, token)
	require.NoError(t, err)
	require.Equal(t, common.Amount(0), balance)
}

func TestAccountLedgerTokens(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	ctx := context.Background()
	l := NewAccountLedger()
	require.NoError(t, l.SetBalance(st, alice, 5))
	require.NoError(t, l.SetTokenBalance(st, token, alice, 50))

	require.NoError(t, l.TransferToken(ctx, st, token, alice, bob, 20))

	balance, _ := l.TokenBalance(ctx, st, token, alice)
	require.Equal(t, common.Amount(30), balance)
	balance, _ = l.TokenBalance(ctx, st, token, bob)
	require.Equal(t, common.Amount(20), balance)

	// native balances are kept apart
	balance, _ = l.Balance(ctx, st, alice)
	require.Equal(t, common.Amount(5), balance)
	balance, _ = l.Balance(ctx, st, bob)
	require.Equal(t, common.Amount(0), balance)

	err := l.TransferToken(ctx, st, common.ZeroAddress, alice, bob, 1)
	require.True(t, errors.ZeroAddress.Is(err))
}

func TestAccountLedgerReceiveHook(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	ctx := context.Background()
	l := NewAccountLedger()
	require.NoError(t, l.SetBalance(st, alice, 100))

	var received []Transfer
	l.OnReceive(bob, func(_ context.Context, _ *storage.LevelDBBackend, t Transfer) error {
		received = append(received, t)
		if t.Amount > 10 {
			return fmt.Errorf("too much")
		}
		return nil
	})

	require.NoError(t, l.Transfer(ctx, st, alice, bob, 10))
	require.Equal(t, 1, len(received))
	require.Equal(t, Transfer{From: alice, To: bob, Amount: 10}, received[0])
	require.False(t, received[0].IsToken())

	require.Error(t, l.Transfer(ctx, st, alice, bob, 11))

	l.OnReceive(bob, nil)
	require.NoError(t, l.Transfer(ctx, st, alice, bob, 11))
	require.Equal(t, 2, len(received))
}

func TestAccountLedgerTransaction(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	ctx := context.Background()
	l := NewAccountLedger()
	require.NoError(t, l.SetBalance(st, alice, 100))

	ts, err := st.OpenTransaction()
	require.NoError(t, err)
	require.NoError(t, l.Transfer(ctx, ts, alice, bob, 40))
	require.NoError(t, ts.Discard())

	balance, _ := l.Balance(ctx, st, alice)
	require.Equal(t, common.Amount(100), balance, "discarded transfer leaves no trace")

	var accounts []common.Address
	iterFunc, closeFunc := GetAccounts(st, nil)
	for {
		a, hasNext := iterFunc()
		if !hasNext {
			break
		}
		accounts = append(accounts, a.Address)
	}
	closeFunc()
	require.Equal(t, []common.Address{alice}, accounts)
}
