package common

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/gasmanager/lib/errors"
)

func TestConfigDefaults(t *testing.T) {
	{
		c := NewConfig(VariantCurrent)
		require.Equal(t, MembershipRoster, c.Membership)
		require.Equal(t, "supermajority", c.Policy)
		require.Equal(t, DefaultBurnAddress, c.BurnAddress)
	}

	{
		c := NewConfig(VariantLegacy)
		require.True(t, c.IsLegacy())
		require.Equal(t, MembershipAllowList, c.Membership)
		require.Equal(t, "majority", c.Policy)
	}
}

func TestConfigValidate(t *testing.T) {
	engine := MustParseAddress("0x1000000000000000000000000000000000000001")

	c := NewConfig(VariantCurrent)
	err := c.Validate()
	require.True(t, errors.InvalidConfig.Is(err), "engine account is missing")

	c.EngineAccount = engine
	require.NoError(t, c.Validate())

	c.Policy = "unanimous"
	require.True(t, errors.InvalidConfig.Is(c.Validate()))
	c.Policy = "majority"

	c.BurnAddress = engine
	require.True(t, errors.InvalidConfig.Is(c.Validate()))
	c.BurnAddress = DefaultBurnAddress

	legacy := NewConfig(VariantLegacy)
	legacy.EngineAccount = engine
	require.True(t, errors.InvalidConfig.Is(legacy.Validate()), "allow-list source is missing")

	legacy.AllowListSource = MustParseAddress("0x2000000000000000000000000000000000000002")
	require.NoError(t, legacy.Validate())
}
