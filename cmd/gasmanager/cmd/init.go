package cmd

import (
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/gasmanager/cmd/gasmanager/common"
	"boscoin.io/gasmanager/lib/version"
)

var rootCmd = &cobra.Command{
	Use:     "gasmanager",
	Short:   "multi-party governance of a gas treasury",
	Long:    "gasmanager keeps voters, guardians and vote tallies in a leveldb storage and serves them over JSON-RPC.",
	Version: version.Version,
	Args:    cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		c.Usage()
	},
}

// Execute runs the command line; a failing command exits with 1.
func Execute() {
	if c, err := rootCmd.ExecuteC(); err != nil {
		cmdcommon.PrintError(c, err)
	}
}

func SetArgs(s []string) {
	rootCmd.SetArgs(s)
}
