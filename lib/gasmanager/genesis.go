package gasmanager

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"boscoin.io/gasmanager/lib/common"
	gmerrors "boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/registry"
	"boscoin.io/gasmanager/lib/storage"
)

// GenesisSource is an rpc voter source: another node serving the
// `Governance` service at `Endpoint`.
type GenesisSource struct {
	Address  string `yaml:"address"`
	Endpoint string `yaml:"endpoint"`
}

// GenesisBalance is a starting balance, native when `Token` is empty.
type GenesisBalance struct {
	Account string        `yaml:"account"`
	Token   string        `yaml:"token,omitempty"`
	Amount  common.Amount `yaml:"amount"`
}

// Genesis is the YAML document which initializes the storage of an engine.
type Genesis struct {
	Variant         string `yaml:"variant"`
	Policy          string `yaml:"policy,omitempty"`
	EngineAccount   string `yaml:"engine_account"`
	BurnAddress     string `yaml:"burn_address,omitempty"`
	AllowListSource string `yaml:"allow_list_source,omitempty"`
	SourceTimeout   string `yaml:"source_timeout,omitempty"`
	// GenesisTime is ISO8601; empty means the time of Init.
	GenesisTime string `yaml:"genesis_time,omitempty"`

	ExpirationWindow uint64        `yaml:"expiration_window,omitempty"`
	PeriodLimit      common.Amount `yaml:"period_limit,omitempty"`
	MaxBalance       common.Amount `yaml:"max_balance,omitempty"`
	FundingPeriod    uint64        `yaml:"funding_period,omitempty"`

	Voters    []string `yaml:"voters,omitempty"`
	Guardians []string `yaml:"guardians,omitempty"`
	Whitelist []string `yaml:"whitelist,omitempty"`
	// Sources are voted in voter sources; each must be registered in the
	// directory, for example through `Directory`.
	Sources []string `yaml:"sources,omitempty"`

	Directory []GenesisSource  `yaml:"directory,omitempty"`
	Balances  []GenesisBalance `yaml:"balances,omitempty"`
}

func LoadGenesis(path string) (*Genesis, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read genesis file, %q", path)
	}

	return ParseGenesis(b)
}

func ParseGenesis(b []byte) (*Genesis, error) {
	var g Genesis
	if err := yaml.UnmarshalStrict(b, &g); err != nil {
		return nil, errors.Wrap(err, "failed to parse genesis")
	}

	return &g, nil
}

func parseAddresses(field string, l []string) (addresses []common.Address, err error) {
	for _, s := range l {
		var a common.Address
		if a, err = common.ParseAddress(s); err != nil {
			return nil, gmerrors.InvalidConfig.Clone().SetData(field, s)
		}
		if common.IsZeroAddress(a) {
			return nil, gmerrors.InvalidConfig.Clone().SetData(field, s)
		}
		addresses = append(addresses, a)
	}

	return
}

func parseOptionalAddress(field, s string, a *common.Address) error {
	if len(s) < 1 {
		return nil
	}

	parsed, err := common.ParseAddress(s)
	if err != nil {
		return gmerrors.InvalidConfig.Clone().SetData(field, s)
	}
	*a = parsed

	return nil
}

// Config derives the deployment configuration; fields left out take the
// defaults of the variant.
func (g *Genesis) Config() (config common.Config, err error) {
	variant := common.Variant(g.Variant)
	if len(g.Variant) < 1 {
		variant = common.VariantCurrent
	}

	config = common.NewConfig(variant)
	if len(g.Policy) > 0 {
		config.Policy = g.Policy
	}

	if err = parseOptionalAddress("engine_account", g.EngineAccount, &config.EngineAccount); err != nil {
		return
	}
	if err = parseOptionalAddress("burn_address", g.BurnAddress, &config.BurnAddress); err != nil {
		return
	}
	if err = parseOptionalAddress("allow_list_source", g.AllowListSource, &config.AllowListSource); err != nil {
		return
	}

	if len(g.SourceTimeout) > 0 {
		if config.SourceTimeout, err = time.ParseDuration(g.SourceTimeout); err != nil {
			err = gmerrors.InvalidConfig.Clone().SetData("source_timeout", g.SourceTimeout)
			return
		}
	}

	config.GenesisTime = time.Now()
	if len(g.GenesisTime) > 0 {
		if config.GenesisTime, err = common.ParseISO8601(g.GenesisTime); err != nil {
			err = gmerrors.InvalidConfig.Clone().SetData("genesis_time", g.GenesisTime)
			return
		}
	}

	err = config.Validate()

	return
}

// Parameters returns the starting parameters; a zero window is the default
// one.
func (g *Genesis) Parameters() (p Parameters, err error) {
	p = DefaultParameters()
	if g.ExpirationWindow > 0 {
		p.ExpirationWindow = g.ExpirationWindow
	}
	if p.ExpirationWindow < common.MinExpirationWindow || p.ExpirationWindow > common.MaxExpirationWindow {
		err = gmerrors.InvalidConfig.Clone().SetData("expiration_window", p.ExpirationWindow)
		return
	}

	p.PeriodLimit = g.PeriodLimit
	p.MaxBalance = g.MaxBalance
	p.FundingPeriod = g.FundingPeriod

	if p.PeriodLimit > common.MaximumBalance || p.MaxBalance > common.MaximumBalance {
		err = gmerrors.InvalidConfig.Clone().SetData("amount", "over the maximum balance")
	}

	return
}

type balanceSetter interface {
	SetBalance(st *storage.LevelDBBackend, account common.Address, amount common.Amount) error
	SetTokenBalance(st *storage.LevelDBBackend, token, account common.Address, amount common.Amount) error
}

// Init writes the genesis state in one transaction. It fails with
// `AlreadyInitialized` on an initialized storage. Voter sources are not
// probed.
func (e *Engine) Init(ctx context.Context, g *Genesis) (err error) {
	if e.inFlight(ctx) {
		return gmerrors.ReentrantCall.Clone().SetData("call", "init")
	}

	e.Lock()
	defer e.Unlock()

	var initialized bool
	if initialized, err = isInitialized(e.st); err != nil {
		return
	}
	if initialized {
		return gmerrors.AlreadyInitialized
	}

	var config common.Config
	if config, err = g.Config(); err != nil {
		return
	}

	var params Parameters
	if params, err = g.Parameters(); err != nil {
		return
	}

	var voters, guardians, whitelist, sources []common.Address
	if voters, err = parseAddresses("voters", g.Voters); err != nil {
		return
	}
	if guardians, err = parseAddresses("guardians", g.Guardians); err != nil {
		return
	}
	if whitelist, err = parseAddresses("whitelist", g.Whitelist); err != nil {
		return
	}
	if sources, err = parseAddresses("sources", g.Sources); err != nil {
		return
	}

	if config.Membership == common.MembershipRoster && len(voters)+len(sources) < 1 {
		return gmerrors.InvalidConfig.Clone().SetData("voters", "no voter nor voter source")
	}
	if !config.IsLegacy() && len(whitelist) > 0 {
		return gmerrors.InvalidConfig.Clone().SetData("whitelist", "only in the legacy variant")
	}

	var setter balanceSetter
	if len(g.Balances) > 0 {
		var ok bool
		if setter, ok = e.ledger.(balanceSetter); !ok {
			return gmerrors.InvalidConfig.Clone().SetData("balances", "the ledger can not set balances")
		}
	}

	var ts *storage.LevelDBBackend
	if ts, err = e.st.OpenTransaction(); err != nil {
		return
	}
	defer func() {
		if err != nil {
			ts.Discard()
		}
	}()

	if err = ts.New(ConfigKey, config); err != nil {
		return
	}
	if err = saveParameters(ts, params); err != nil {
		return
	}

	for _, item := range []struct {
		set registry.Set
		l   []common.Address
	}{
		{registry.Voters, voters},
		{registry.Guardians, guardians},
		{registry.Whitelist, whitelist},
		{registry.Sources, sources},
	} {
		for _, a := range item.l {
			if err = item.set.Add(ts, a); err != nil {
				return
			}
		}
	}

	for _, b := range g.Balances {
		var account, token common.Address
		if account, err = common.ParseAddress(b.Account); err != nil {
			return
		}
		if b.Amount > common.MaximumBalance {
			err = gmerrors.InvalidConfig.Clone().SetData("balance", b.Account)
			return
		}
		if err = parseOptionalAddress("token", b.Token, &token); err != nil {
			return
		}

		if common.IsZeroAddress(token) {
			err = setter.SetBalance(ts, account, b.Amount)
		} else {
			err = setter.SetTokenBalance(ts, token, account, b.Amount)
		}
		if err != nil {
			return
		}
	}

	if err = ts.Commit(); err != nil {
		return
	}

	if err = e.configure(config); err != nil {
		return
	}

	log.Info(
		"genesis applied",
		"config", config,
		"voters", len(voters),
		"guardians", len(guardians),
		"sources", len(sources),
		"balances", len(g.Balances),
	)
	e.updateGauges(e.height.Height())

	return nil
}
