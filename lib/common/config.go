package common

import (
	"fmt"
	"strings"
	"time"

	"boscoin.io/gasmanager/lib/errors"
)

// Variant selects one of the two governance generations.
type Variant string

const (
	// VariantCurrent owns its voters, merges external voter sources and
	// requires a supermajority by default.
	VariantCurrent Variant = "current"
	// VariantLegacy reads its voters from a validator allow-list, decides by
	// simple majority and supports the whitelist and funding limits.
	VariantLegacy Variant = "legacy"
)

type MembershipMode string

const (
	MembershipRoster    MembershipMode = "roster"
	MembershipAllowList MembershipMode = "allowlist"
)

const (
	DefaultExpirationWindow uint64        = 100
	MinExpirationWindow     uint64        = 1
	MaxExpirationWindow     uint64        = 10000000
	DefaultSourceTimeout    time.Duration = 3 * time.Second
	DefaultBlockTime        time.Duration = 5 * time.Second
	MaxSourceHops                         = 8
)

// Config carries the deployment choices of one engine; they are fixed for
// the life of the storage, the mutable parameters live in the state.
type Config struct {
	Variant    Variant        `json:"variant"`
	Membership MembershipMode `json:"membership"`
	// Policy is "majority" or "supermajority"
	Policy string `json:"policy"`

	// EngineAccount holds the funds the engine pays and burns from.
	EngineAccount Address `json:"engine_account"`
	BurnAddress   Address `json:"burn_address"`
	// AllowListSource is the validator allow-list used in
	// `MembershipAllowList`.
	AllowListSource Address `json:"allow_list_source"`

	SourceTimeout time.Duration `json:"source_timeout"`

	// GenesisTime is when the state was initialized; a clock height counts
	// blocks from it.
	GenesisTime time.Time `json:"genesis_time"`
}

func NewConfig(variant Variant) Config {
	c := Config{
		Variant:       variant,
		Membership:    MembershipRoster,
		Policy:        "supermajority",
		BurnAddress:   DefaultBurnAddress,
		SourceTimeout: DefaultSourceTimeout,
	}

	if variant == VariantLegacy {
		c.Membership = MembershipAllowList
		c.Policy = "majority"
	}

	return c
}

func (c Config) IsLegacy() bool {
	return c.Variant == VariantLegacy
}

func (c Config) Validate() error {
	switch c.Variant {
	case VariantCurrent, VariantLegacy:
	default:
		return errors.InvalidConfig.Clone().SetData("variant", string(c.Variant))
	}

	switch c.Membership {
	case MembershipRoster:
	case MembershipAllowList:
		if IsZeroAddress(c.AllowListSource) {
			return errors.InvalidConfig.Clone().SetData("allow-list-source", "missing")
		}
	default:
		return errors.InvalidConfig.Clone().SetData("membership", string(c.Membership))
	}

	switch strings.ToLower(c.Policy) {
	case "majority", "supermajority":
	default:
		return errors.InvalidConfig.Clone().SetData("policy", c.Policy)
	}

	if IsZeroAddress(c.EngineAccount) {
		return errors.InvalidConfig.Clone().SetData("engine-account", "missing")
	}
	if IsZeroAddress(c.BurnAddress) || c.BurnAddress == c.EngineAccount {
		return errors.InvalidConfig.Clone().SetData("burn-address", c.BurnAddress.Hex())
	}
	if c.SourceTimeout <= 0 {
		return errors.InvalidConfig.Clone().SetData("source-timeout", c.SourceTimeout.String())
	}

	return nil
}

func (c Config) String() string {
	return fmt.Sprintf(
		"variant=%s membership=%s policy=%s engine-account=%s burn-address=%s",
		c.Variant, c.Membership, c.Policy, c.EngineAccount.Hex(), c.BurnAddress.Hex(),
	)
}
