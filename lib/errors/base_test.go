package errors

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func TestErrorsClone(t *testing.T) {
	require.Equal(t, AlreadyVoted, AlreadyVoted)

	e := AlreadyVoted
	e0 := AlreadyVoted.Clone()
	require.NotEqual(t, fmt.Sprintf("%p", e), fmt.Sprintf("%p", e0))

	{
		e0.Code = 200
		require.NotEqual(t, e.Code, e0.Code)
	}

	{
		e0.SetData("showme", "killme")
		require.NotEqual(t, e.Data, e0.Data)
	}
}

func TestErrorsRLP(t *testing.T) {
	{
		_, err := rlp.EncodeToBytes(AlreadyVoted)
		require.NoError(t, err)
	}

	{ // with `SetData()`, the rlp encoded value must be different
		encoded, err := rlp.EncodeToBytes(AlreadyVoted)
		require.NoError(t, err)

		e := AlreadyVoted.Clone()
		e.SetData("findme", "killme")
		encoded0, err := rlp.EncodeToBytes(e)
		require.NoError(t, err)
		require.NotEqual(t, encoded, encoded0)
	}
}

func TestErrorsKind(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{NotVoter, KindAuthorization},
		{ZeroTarget, KindInvalidInput},
		{AlreadyVoted, KindStateConflict},
		{ApprovalMissing, KindApprovalMissing},
		{TransferAmountMismatch, KindTransferIntegrity},
		{NoVoters, KindNoQuorumPossible},
		{StorageCoreError, KindInternal},
	}

	for _, c := range cases {
		require.Equal(t, c.kind, c.err.Kind(), c.err.Message)
		require.Equal(t, c.kind, KindOf(c.err))
	}

	require.Equal(t, KindInternal, KindOf(fmt.Errorf("plain")))
}

func TestErrorsParse(t *testing.T) {
	e := NotMember.Clone().SetData("target", "0x01")

	parsed := Parse(e.Error())
	require.NotNil(t, parsed)
	require.Equal(t, e.Code, parsed.Code)
	require.Equal(t, e.Message, parsed.Message)
	require.Equal(t, "0x01", parsed.Data["target"])
	require.True(t, NotMember.Is(parsed))
	require.False(t, AlreadyMember.Is(parsed))

	require.Nil(t, Parse("connection refused"))
	require.Nil(t, Parse("{}"))
}
