package cmd

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	cmdcommon "boscoin.io/gasmanager/cmd/gasmanager/common"
	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/rpc"
	"boscoin.io/gasmanager/lib/storage"
)

const testGenesisYAML = `
variant: current
engine_account: "0x0500000000000000000000000000000000000001"
genesis_time: "2018-01-02T03:04:05.000000000Z"
voters:
  - "0x0100000000000000000000000000000000000001"
  - "0x0100000000000000000000000000000000000002"
  - "0x0100000000000000000000000000000000000003"
guardians:
  - "0x0200000000000000000000000000000000000001"
balances:
  - account: "0x0500000000000000000000000000000000000001"
    amount: 1000
`

var (
	testVoter    = common.MustParseAddress("0x0100000000000000000000000000000000000001")
	testStranger = common.MustParseAddress("0x0400000000000000000000000000000000000001")
)

func writeTestGenesis(t *testing.T) (dir, path string) {
	dir, err := ioutil.TempDir("", "gasmanager-cmd")
	require.NoError(t, err)

	path = filepath.Join(dir, "genesis.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(testGenesisYAML), 0600))

	return
}

func resetRunFlags() {
	flagStorageConfigString = "memory://"
	flagLogLevel = "crit"
	flagLogOutput = ""
	flagGenesis = ""
	flagBlockTime = "5s"
	flagRateLimit = rpc.DefaultRateLimit
	flagSourceTimeout = ""
	flagSources = cmdcommon.ListFlags{}
}

func TestParseFlagSource(t *testing.T) {
	source, err := parseFlagSource("0x0700000000000000000000000000000000000001=http://127.0.0.1:12346")
	require.NoError(t, err)
	require.Equal(t, "0x0700000000000000000000000000000000000001", source.Address)
	require.Equal(t, "http://127.0.0.1:12346/rpc", source.Endpoint)

	source, err = parseFlagSource("0x0700000000000000000000000000000000000001=https://node/api/rpc")
	require.NoError(t, err)
	require.Equal(t, "https://node/api/rpc", source.Endpoint)

	for _, v := range []string{
		"0x0700000000000000000000000000000000000001",
		"0xnot=http://127.0.0.1:12346",
		"0x0700000000000000000000000000000000000001=ftp://127.0.0.1",
	} {
		_, err = parseFlagSource(v)
		require.Error(t, err, v)
	}
}

func TestParseFlagSources(t *testing.T) {
	var l cmdcommon.ListFlags
	l.Set("0x0700000000000000000000000000000000000001=http://a:1 0x0700000000000000000000000000000000000002=http://b:2")
	l.Set("0x0700000000000000000000000000000000000003=http://c:3")

	sources, err := parseFlagSources(l)
	require.NoError(t, err)
	require.Equal(t, 3, len(sources))
	require.Equal(t, "http://c:3/rpc", sources[2].Endpoint)
}

func TestParseFlagsRun(t *testing.T) {
	defer resetRunFlags()

	resetRunFlags()
	flagBlockTime = "2s"
	flagSourceTimeout = "300ms"
	flagSources.Set("0x0700000000000000000000000000000000000001=http://127.0.0.1:12346")

	flagName, err := parseFlagsRun()
	require.NoError(t, err)
	require.Empty(t, flagName)
	require.Equal(t, "memory", storageConfig.Scheme)
	require.Equal(t, 2*time.Second, blockTime)
	require.Equal(t, 300*time.Millisecond, sourceTimeout)
	require.Equal(t, 1, len(sources))
	require.Nil(t, genesis)

	cases := []struct {
		flag string
		set  func()
	}{
		{"--log-level", func() { flagLogLevel = "loud" }},
		{"--storage", func() { flagStorageConfigString = "redis://localhost" }},
		{"--genesis", func() { flagGenesis = "/not/found.yaml" }},
		{"--block-time", func() { flagBlockTime = "0s" }},
		{"--block-time", func() { flagBlockTime = "fast" }},
		{"--source-timeout", func() { flagSourceTimeout = "soon" }},
		{"--source", func() { flagSources = cmdcommon.ListFlags{"nothing"} }},
		{"--rate-limit", func() { flagRateLimit = "many" }},
	}

	for _, c := range cases {
		resetRunFlags()
		c.set()

		flagName, err := parseFlagsRun()
		require.Error(t, err, c.flag)
		require.Equal(t, c.flag, flagName)
	}
}

func TestMakeGenesis(t *testing.T) {
	dir, path := writeTestGenesis(t)
	defer os.RemoveAll(dir)

	storageURI := "file://" + filepath.Join(dir, "db")

	flagName, err := MakeGenesis(path, storageURI)
	require.NoError(t, err)
	require.Empty(t, flagName)

	// refuses to run twice
	flagName, err = MakeGenesis(path, storageURI)
	require.True(t, errors.AlreadyInitialized.Is(err), "%v", err)
	require.Equal(t, "<genesis yaml file>", flagName)

	flagName, err = MakeGenesis(filepath.Join(dir, "missing.yaml"), storageURI)
	require.Error(t, err)
	require.Equal(t, "<genesis yaml file>", flagName)

	flagName, err = MakeGenesis(path, "unknown://")
	require.Error(t, err)
	require.Equal(t, "--storage", flagName)
}

func TestNewEngine(t *testing.T) {
	defer resetRunFlags()

	dir, path := writeTestGenesis(t)
	defer os.RemoveAll(dir)

	resetRunFlags()
	flagGenesis = path
	_, err := parseFlagsRun()
	require.NoError(t, err)

	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	engine, err := newEngine(st)
	require.NoError(t, err)
	require.True(t, engine.IsInitialized())

	// heights count blocks since the genesis time
	require.True(t, engine.Height() > 1)

	// applying the genesis again is skipped
	_, err = newEngine(st)
	require.NoError(t, err)

	empty, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer empty.Close()

	genesis = nil
	_, err = newEngine(empty)
	require.True(t, errors.NotInitialized.Is(err), "%v", err)
}

func TestCall(t *testing.T) {
	defer func() { flagFormat = "yaml" }()

	dir, path := writeTestGenesis(t)
	defer os.RemoveAll(dir)

	resetRunFlags()
	flagGenesis = path
	_, err := parseFlagsRun()
	require.NoError(t, err)
	defer resetRunFlags()

	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	engine, err := newEngine(st)
	require.NoError(t, err)

	router, err := rpc.NewRouter(engine, rpc.Config{})
	require.NoError(t, err)
	ts := httptest.NewServer(router)
	defer ts.Close()

	endpoint := ts.URL + rpc.PathRPC

	flagFormat = "json"
	var b bytes.Buffer
	require.NoError(t, Call(&b, endpoint, "ListVoters", "", time.Second))

	var voters struct {
		Voters []string `json:"voters"`
	}
	require.NoError(t, json.Unmarshal(b.Bytes(), &voters))
	require.Equal(t, 3, len(voters.Voters))

	flagFormat = "yaml"
	b.Reset()
	require.NoError(t, Call(&b, endpoint, "Ledger.Balance", `{"account": "0x0500000000000000000000000000000000000001"}`, time.Second))
	require.Contains(t, b.String(), "balance: \"1000\"")

	params := `{"caller": "` + testStranger.Hex() + `", "address": "` + testVoter.Hex() + `"}`
	err = Call(&b, endpoint, "VoteToAddGuardian", params, time.Second)
	require.True(t, errors.NotVoter.Is(err), "%v", err)

	err = Call(&b, endpoint, "ListVoters", "{not json", time.Second)
	require.Error(t, err)
}

func TestMethodName(t *testing.T) {
	require.Equal(t, "Governance.ListVoters", methodName("ListVoters"))
	require.Equal(t, "Ledger.Balance", methodName("Ledger.Balance"))
}

func TestEncodeJSONValue(t *testing.T) {
	v := map[string]interface{}{"amount": common.Amount(10)}

	var b bytes.Buffer
	require.NoError(t, encodeJSONValue("yaml", v, &b))
	require.Equal(t, "amount: \"10\"\n", b.String())

	b.Reset()
	require.NoError(t, encodeJSONValue("json", v, &b))
	require.Equal(t, "{\"amount\":\"10\"}\n", b.String())

	require.Error(t, encodeJSONValue("xml", v, &b))
}

func TestSourceFlagsRepeated(t *testing.T) {
	var l cmdcommon.ListFlags

	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.Var(&l, "source", "")
	require.NoError(t, fs.Parse([]string{
		"--source=0x0700000000000000000000000000000000000001=http://a:1",
		"--source", "0x0700000000000000000000000000000000000002=http://b:2",
	}))
	require.Equal(t, 2, len(l))

	sources, err := parseFlagSources(l)
	require.NoError(t, err)
	require.Equal(t, "0x0700000000000000000000000000000000000002", sources[1].Address)
}

func TestInterruptCanceled(t *testing.T) {
	cancel := make(chan struct{})
	close(cancel)

	require.Equal(t, cmdcommon.ErrCanceled, cmdcommon.Interrupt(cancel))
}
