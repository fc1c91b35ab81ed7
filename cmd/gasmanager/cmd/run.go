package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oklog/run"
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/gasmanager/cmd/gasmanager/common"
	"boscoin.io/gasmanager/lib/common"
	gmerrors "boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/gasmanager"
	"boscoin.io/gasmanager/lib/metrics"
	"boscoin.io/gasmanager/lib/rpc"
	"boscoin.io/gasmanager/lib/storage"
	"boscoin.io/gasmanager/lib/version"
	"boscoin.io/gasmanager/lib/voter"
)

var (
	flagBind          string = common.GetENVValue("GASMANAGER_BIND", rpc.DefaultBind)
	flagGenesis       string = common.GetENVValue("GASMANAGER_GENESIS", "")
	flagBlockTime     string = common.GetENVValue("GASMANAGER_BLOCK_TIME", common.DefaultBlockTime.String())
	flagRateLimit     string = common.GetENVValue("GASMANAGER_RATE_LIMIT", rpc.DefaultRateLimit)
	flagSourceTimeout string = common.GetENVValue("GASMANAGER_SOURCE_TIMEOUT", "")
	flagSources       cmdcommon.ListFlags
)

var (
	runCmd *cobra.Command

	storageConfig *storage.Config
	genesis       *gasmanager.Genesis
	blockTime     time.Duration
	sourceTimeout time.Duration
	sources       []gasmanager.GenesisSource
)

func init() {
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the governance server",
		Run: func(c *cobra.Command, args []string) {
			if flagName, err := parseFlagsRun(); err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			if err := runServer(); err != nil {
				log.Crit("failed to run", "error", err)
				os.Exit(1)
			}
		},
	}

	if v := common.GetENVValue("GASMANAGER_SOURCES", ""); len(v) > 0 {
		flagSources.Set(v)
	}

	runCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri, memory:// or file:///<path>")
	runCmd.Flags().StringVar(&flagBind, "bind", flagBind, "address to listen on, <host>:<port>")
	runCmd.Flags().StringVar(&flagGenesis, "genesis", flagGenesis, "applies the genesis file before running, unless already initialized")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	runCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	runCmd.Flags().StringVar(&flagBlockTime, "block-time", flagBlockTime, "duration of one block height")
	runCmd.Flags().StringVar(&flagRateLimit, "rate-limit", flagRateLimit, "requests per client address, like '100-S'; empty for no limit")
	runCmd.Flags().StringVar(&flagSourceTimeout, "source-timeout", flagSourceTimeout, "timeout of voter source calls; empty uses the genesis value")
	runCmd.Flags().Var(&flagSources, "source", "remote voter source, <address>=<endpoint>; can be repeated")

	rootCmd.AddCommand(runCmd)
}

func parseFlagsRun() (flagName string, err error) {
	if flagName, err = setLogging(); err != nil {
		return
	}

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		return "--storage", err
	}

	genesis = nil
	if len(flagGenesis) > 0 {
		if genesis, err = gasmanager.LoadGenesis(flagGenesis); err != nil {
			return "--genesis", err
		}
	}

	if blockTime, err = time.ParseDuration(flagBlockTime); err != nil {
		return "--block-time", err
	}
	if blockTime <= 0 {
		return "--block-time", fmt.Errorf("must be positive, %q", flagBlockTime)
	}

	sourceTimeout = 0
	if len(flagSourceTimeout) > 0 {
		if sourceTimeout, err = time.ParseDuration(flagSourceTimeout); err != nil {
			return "--source-timeout", err
		}
	}

	if sources, err = parseFlagSources(flagSources); err != nil {
		return "--source", err
	}

	if _, err = rpc.RateLimitMiddleware(flagRateLimit); err != nil {
		return "--rate-limit", err
	}

	log.Info("Starting gasmanager", "version", version.Version)
	log.Debug(
		"parsed flags:",
		"\n\tstorage", storageConfig,
		"\n\tbind", flagBind,
		"\n\tgenesis", flagGenesis,
		"\n\tlog-level", flagLogLevel,
		"\n\tlog-output", flagLogOutput,
		"\n\tblock-time", blockTime,
		"\n\trate-limit", flagRateLimit,
		"\n\tsource-timeout", flagSourceTimeout,
		"\n\tsources", len(sources),
	)

	return "", nil
}

// newEngine opens the engine on `st`, applying the genesis when the state
// is empty. Its height counts `blockTime` from the genesis time.
func newEngine(st *storage.LevelDBBackend) (*gasmanager.Engine, error) {
	timeout := sourceTimeout
	if timeout <= 0 {
		timeout = common.DefaultSourceTimeout
	}

	directory := voter.NewDirectory()
	if err := registerSources(directory, voter.NewRetryClient(timeout, 2), sources); err != nil {
		return nil, err
	}

	clock := common.NewClockHeight(time.Now(), blockTime)
	engine, err := gasmanager.NewEngine(st, gasmanager.Options{
		Height:        clock,
		Directory:     directory,
		SourceTimeout: sourceTimeout,
	})
	if err != nil {
		return nil, err
	}

	if genesis != nil {
		if engine.IsInitialized() {
			log.Warn("already initialized; the genesis file is ignored", "genesis", flagGenesis)
		} else if err = applyGenesis(context.Background(), engine, genesis); err != nil {
			return nil, err
		}
	}

	config, err := engine.Config()
	if err != nil {
		if gmerrors.NotInitialized.Is(err) {
			log.Error("the governance state is not initialized; run 'genesis' or give '--genesis'")
		}
		return nil, err
	}
	clock.Genesis = config.GenesisTime

	log.Info("engine ready", "config", config, "height", engine.Height())

	return engine, nil
}

func runServer() error {
	metrics.InitPrometheusMetrics()

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := newEngine(st)
	if err != nil {
		return err
	}
	if config, err := engine.Config(); err == nil {
		metrics.SetVersion(string(config.Variant), config.Policy)
	}

	handler, err := rpc.NewRouter(engine, rpc.Config{RateLimit: flagRateLimit})
	if err != nil {
		return err
	}
	server := rpc.NewServer(flagBind, handler)

	// Execution group.
	var g run.Group
	var serverErr error
	{
		g.Add(func() error {
			serverErr = server.Start()
			return serverErr
		}, func(error) {
			server.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	err = g.Run()
	log.Info("stopped", "reason", err)

	return serverErr
}
