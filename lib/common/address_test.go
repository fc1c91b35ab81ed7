package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAddressTarget(t *testing.T) {
	a := MustParseAddress("0xAbCdEf0000000000000000000000000000001234")

	target := AddressTarget(a)
	require.NotEqual(t, ZeroTarget, target)
	require.Equal(t, a, TargetAddress(target))
	require.Equal(t, "0x000000000000000000000000abcdef0000000000000000000000000000001234", target.Hex())

	_, err := ParseAddress("not-an-address")
	require.Error(t, err)
}

func TestValueTarget(t *testing.T) {
	target := ValueTarget(300)

	v, ok := TargetValue(target)
	require.True(t, ok)
	require.Equal(t, uint64(300), v)

	parsed, err := ParseTarget("0x12c")
	require.NoError(t, err)
	require.Equal(t, target, parsed)

	_, ok = TargetValue(FundFingerprint(MustParseAddress("0x1000000000000000000000000000000000000001"), 1))
	require.False(t, ok, "a fingerprint does not fit in uint64")

	_, err = ParseTarget("xyz")
	require.Error(t, err)
}

func TestFingerprints(t *testing.T) {
	r0 := MustParseAddress("0x1000000000000000000000000000000000000001")
	r1 := MustParseAddress("0x1000000000000000000000000000000000000002")

	require.Equal(t, FundFingerprint(r0, 10), FundFingerprint(r0, 10))
	require.NotEqual(t, FundFingerprint(r0, 10), FundFingerprint(r0, 11))
	require.NotEqual(t, FundFingerprint(r0, 10), FundFingerprint(r1, 10))

	// the same bytes hashed for a payment and for a token burn collide on
	// purpose; they are kept apart by the action type of the tally
	require.Equal(t, FundFingerprint(r0, 10), TokenBurnFingerprint(r0, 10))
	require.NotEqual(t, CoinBurnFingerprint(10), CoinBurnFingerprint(11))
	require.NotEqual(t, ZeroTarget, CoinBurnFingerprint(0))
}

func TestAmount(t *testing.T) {
	a := Amount(100)

	require.Equal(t, Amount(150), a.MustAdd(50))
	require.Equal(t, Amount(50), a.MustSub(50))

	_, err := a.Sub(101)
	require.Error(t, err)

	_, err = MaximumBalance.Add(1)
	require.Error(t, err)

	b, err := a.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"100"`, string(b))

	var c Amount
	require.NoError(t, c.UnmarshalJSON([]byte(`"42"`)))
	require.Equal(t, Amount(42), c)
	require.NoError(t, c.UnmarshalJSON([]byte(`43`)))
	require.Equal(t, Amount(43), c)

	_, err = AmountFromString("-1")
	require.Error(t, err)

	require.Len(t, a.Bytes32(), 32)
}

func TestHeightSources(t *testing.T) {
	m := NewManualHeight(10)
	require.Equal(t, uint64(10), m.Height())
	require.Equal(t, uint64(15), m.Advance(5))
	m.Set(3)
	require.Equal(t, uint64(3), m.Height())

	genesis := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClockHeight(genesis, time.Second)

	c.now = func() time.Time { return genesis.Add(-time.Minute) }
	require.Equal(t, uint64(1), c.Height())

	c.now = func() time.Time { return genesis.Add(10*time.Second + 500*time.Millisecond) }
	require.Equal(t, uint64(11), c.Height())
}
