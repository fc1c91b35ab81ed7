package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/gasmanager"
	"boscoin.io/gasmanager/lib/ledger"
	"boscoin.io/gasmanager/lib/rpc"
	"boscoin.io/gasmanager/lib/storage"
	"boscoin.io/gasmanager/lib/voter"
)

const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagStorageConfigString string = common.GetENVValue("GASMANAGER_STORAGE", defaultStorage())
	flagLogLevel            string = common.GetENVValue("GASMANAGER_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput           string = common.GetENVValue("GASMANAGER_LOG_OUTPUT", "")
)

var log logging.Logger = logging.New("module", "main")

// defaultStorage is the `db` directory under the current one.
func defaultStorage() string {
	currentDirectory, err := os.Getwd()
	if err == nil {
		currentDirectory, err = filepath.Abs(currentDirectory)
	}
	if err != nil {
		return "memory://"
	}

	return fmt.Sprintf("file://%s/db", currentDirectory)
}

// setLogging applies `--log-level` and `--log-output` to every package.
func setLogging() (flagName string, err error) {
	var level logging.Lvl
	if level, err = logging.LvlFromString(flagLogLevel); err != nil {
		return "--log-level", err
	}

	var handler logging.Handler
	if handler, err = common.NewLogHandler(flagLogOutput); err != nil {
		return "--log-output", err
	}
	if len(flagLogOutput) < 1 {
		flagLogOutput = common.StdoutLogOutput
	}
	if level == logging.LvlDebug {
		handler = logging.CallerFileHandler(handler)
	}

	common.SetLogging(log, level, handler)
	gasmanager.SetLogging(level, handler)
	voter.SetLogging(level, handler)
	ledger.SetLogging(level, handler)
	rpc.SetLogging(level, handler)

	return "", nil
}

func openStorage(s string) (*storage.LevelDBBackend, error) {
	config, err := storage.NewConfigFromString(s)
	if err != nil {
		return nil, err
	}

	st, err := storage.NewStorage(config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize storage, %q", s)
	}

	return st, nil
}

// parseFlagSource parses `<address>=<endpoint>` of a remote voter source.
func parseFlagSource(v string) (source gasmanager.GenesisSource, err error) {
	parsed := strings.SplitN(v, "=", 2)
	if len(parsed) != 2 {
		err = errors.Errorf("'<address>=<endpoint>' expected, %q", v)
		return
	}

	var address common.Address
	if address, err = common.ParseAddress(parsed[0]); err != nil {
		return
	}

	var u *url.URL
	if u, err = url.Parse(parsed[1]); err != nil {
		err = errors.Wrapf(err, "invalid endpoint, %q", parsed[1])
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		err = errors.Errorf("endpoint must be http or https, %q", parsed[1])
		return
	}
	if len(u.Path) < 1 || u.Path == "/" {
		u.Path = rpc.PathRPC
	}

	return gasmanager.GenesisSource{Address: address.Hex(), Endpoint: u.String()}, nil
}

func parseFlagSources(l []string) (sources []gasmanager.GenesisSource, err error) {
	for _, v := range l {
		for _, f := range strings.Fields(v) {
			var source gasmanager.GenesisSource
			if source, err = parseFlagSource(f); err != nil {
				return nil, err
			}
			sources = append(sources, source)
		}
	}

	return
}

// registerSources makes the remote sources resolvable in `directory`.
func registerSources(directory *voter.Directory, client voter.HttpDoer, sources []gasmanager.GenesisSource) error {
	for _, s := range sources {
		address, err := common.ParseAddress(s.Address)
		if err != nil {
			return err
		}
		if err = directory.Register(address, voter.NewRPCSource(s.Endpoint, client)); err != nil {
			return err
		}
		log.Debug("remote voter source", "address", address, "endpoint", s.Endpoint)
	}

	return nil
}
