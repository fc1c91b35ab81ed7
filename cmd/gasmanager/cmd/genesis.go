package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/gasmanager/cmd/gasmanager/common"
	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/gasmanager"
	"boscoin.io/gasmanager/lib/voter"
)

func init() {
	genesisCmd := &cobra.Command{
		Use:   "genesis <genesis yaml file>",
		Short: "initialize the governance state",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			if flagName, err := setLogging(); err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			flagName, err := MakeGenesis(args[0], flagStorageConfigString)
			if len(flagName) != 0 || err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			fmt.Println("successfully initialized the governance state")
		},
	}

	genesisCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")
	genesisCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	genesisCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")

	rootCmd.AddCommand(genesisCmd)
}

// MakeGenesis applies the genesis file at `path` to the storage at
// `storageURI`. On failure it returns the name of the faulty argument with
// the error.
func MakeGenesis(path, storageURI string) (string, error) {
	g, err := gasmanager.LoadGenesis(path)
	if err != nil {
		return "<genesis yaml file>", err
	}

	st, err := openStorage(storageURI)
	if err != nil {
		return "--storage", err
	}
	defer st.Close()

	engine, err := gasmanager.NewEngine(st, gasmanager.Options{})
	if err != nil {
		return "--storage", err
	}

	if err = applyGenesis(context.Background(), engine, g); err != nil {
		return "<genesis yaml file>", err
	}

	return "", nil
}

// applyGenesis registers the sources of the genesis directory, then writes
// the state.
func applyGenesis(ctx context.Context, engine *gasmanager.Engine, g *gasmanager.Genesis) error {
	client := voter.NewRetryClient(common.DefaultSourceTimeout, 2)
	if err := registerSources(engine.Directory(), client, g.Directory); err != nil {
		return err
	}

	return engine.Init(ctx, g)
}
