package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/storage"
)

func testAddress(n int) common.Address {
	return common.MustParseAddress(fmt.Sprintf("0x%040x", n+1))
}

func TestSetAddRemove(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	s := NewSet("test")

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Add(st, testAddress(i)))
	}

	err := s.Add(st, testAddress(0))
	require.True(t, errors.AlreadyMember.Is(err))

	n, err := s.Count(st)
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)

	// removing the first member moves the last one into its slot
	require.NoError(t, s.Remove(st, testAddress(0)))

	l, err := s.List(st)
	require.NoError(t, err)
	require.Equal(t, 3, len(l))
	require.ElementsMatch(t, []common.Address{testAddress(1), testAddress(2), testAddress(3)}, l)

	exists, err := s.Has(st, testAddress(0))
	require.NoError(t, err)
	require.False(t, exists)

	for _, a := range l {
		exists, err = s.Has(st, a)
		require.NoError(t, err)
		require.True(t, exists)
	}

	err = s.Remove(st, testAddress(0))
	require.True(t, errors.NotMember.Is(err))

	// remove the member in the last slot
	require.NoError(t, s.Remove(st, l[len(l)-1]))
	l, _ = s.List(st)
	require.Equal(t, 2, len(l))

	// the freed member can come back
	require.NoError(t, s.Add(st, testAddress(0)))
	l, _ = s.List(st)
	require.Equal(t, 3, len(l))
}

func TestSetClear(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	s := NewSet("test")
	other := NewSet("other")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(st, testAddress(i)))
	}
	require.NoError(t, other.Add(st, testAddress(0)))

	removed, err := s.Clear(st)
	require.NoError(t, err)
	require.Equal(t, 3, len(removed))

	n, _ := s.Count(st)
	require.Equal(t, uint64(0), n)

	for i := 0; i < 3; i++ {
		exists, _ := s.Has(st, testAddress(i))
		require.False(t, exists)
	}

	exists, _ := other.Has(st, testAddress(0))
	require.True(t, exists, "sets do not share members")
}
