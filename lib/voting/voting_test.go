package voting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
)

func TestSupermajorityThreshold(t *testing.T) {
	policy := SupermajorityPolicy{}

	expected := map[int]int{
		1: 1, 2: 2, 3: 2, 4: 3, 5: 4, 6: 4, 7: 5, 9: 6, 10: 7, 100: 67,
	}
	for voters, threshold := range expected {
		got, err := policy.Threshold(voters)
		require.NoError(t, err)
		require.Equal(t, threshold, got, "voters=%d", voters)
	}

	// ceil(2n/3) for every n
	for n := 1; n < 1000; n++ {
		got, _ := policy.Threshold(n)
		require.True(t, 3*got >= 2*n && 3*(got-1) < 2*n, "voters=%d threshold=%d", n, got)
	}

	_, err := policy.Threshold(0)
	require.True(t, errors.NoVoters.Is(err))
}

func TestMajorityThreshold(t *testing.T) {
	policy := MajorityPolicy{}

	expected := map[int]int{1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 10: 6}
	for voters, threshold := range expected {
		got, err := policy.Threshold(voters)
		require.NoError(t, err)
		require.Equal(t, threshold, got, "voters=%d", voters)
	}

	_, err := policy.Threshold(0)
	require.True(t, errors.NoVoters.Is(err))
}

func TestNewThresholdPolicy(t *testing.T) {
	p, err := NewThresholdPolicy("Supermajority")
	require.NoError(t, err)
	require.Equal(t, PolicySupermajority, p.Name())

	p, err = NewThresholdPolicy("majority")
	require.NoError(t, err)
	require.Equal(t, PolicyMajority, p.Name())

	_, err = NewThresholdPolicy("unanimity")
	require.True(t, errors.InvalidConfig.Is(err))
}

func TestActionType(t *testing.T) {
	require.Equal(t, 16, len(AllActionTypes()))

	for _, a := range AllActionTypes() {
		parsed, err := ParseActionType(a.String())
		require.NoError(t, err)
		require.Equal(t, a, parsed)
	}

	require.True(t, ActionAddVoterSource.ChangesRoster())
	require.False(t, ActionAddGuardian.ChangesRoster())
	require.True(t, ActionBurnCoins.IsValueMoving())
	require.True(t, ActionFundingPeriod.IsLegacyOnly())
	require.False(t, ActionExpirationWindow.IsLegacyOnly())

	parsed, err := ParseActionType("9")
	require.NoError(t, err)
	require.Equal(t, ActionFund, parsed)

	_, err = ParseActionType("320")
	require.True(t, errors.UnknownActionType.Is(err))
	_, err = ParseActionType("0")
	require.True(t, errors.UnknownActionType.Is(err))

	var a ActionType
	require.NoError(t, json.Unmarshal([]byte(`"clear-guardians"`), &a))
	require.Equal(t, ActionClearGuardians, a)
	require.NoError(t, json.Unmarshal([]byte(`3`), &a))
	require.Equal(t, ActionAddGuardian, a)

	b, err := json.Marshal(ActionBurnTokens)
	require.NoError(t, err)
	require.Equal(t, `"burn-tokens"`, string(b))
}

func TestTallyLifecycle(t *testing.T) {
	a := common.MustParseAddress("0x1000000000000000000000000000000000000001")
	b := common.MustParseAddress("0x1000000000000000000000000000000000000002")

	tally := NewTally(ActionAddGuardian, common.AddressTarget(a))
	require.False(t, tally.IsActive())
	require.NoError(t, tally.Invariant())
	require.Equal(t, uint64(0), tally.ExpirationHeight(10))

	require.True(t, tally.Record(a, 5))
	require.False(t, tally.Record(b, 6))
	require.NoError(t, tally.Invariant())
	require.Equal(t, uint64(2), tally.TotalVotes)
	require.Equal(t, uint64(5), tally.StartHeight)
	require.Equal(t, uint64(15), tally.ExpirationHeight(10))

	require.False(t, tally.IsExpired(15, 10))
	require.True(t, tally.IsExpired(16, 10))

	cloned := tally.Clone()
	tally.Reset()
	require.False(t, tally.IsActive())
	require.NoError(t, tally.Invariant())
	require.Equal(t, 2, len(cloned.Voters))

	// height 0 still opens the tally
	require.True(t, tally.Record(a, 0))
	require.Equal(t, uint64(1), tally.StartHeight)

	tally.TotalVotes = 3
	require.Error(t, tally.Invariant())
}
