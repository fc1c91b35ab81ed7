package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/gasmanager/cmd/gasmanager/common"
	"boscoin.io/gasmanager/lib/version"
)

var flagVersionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(c *cobra.Command, args []string) {
		if len(flagVersionFormat) < 1 {
			fmt.Println(version.ToDetailVersion())
			return
		}

		v := map[string]string{
			"version":    version.Version,
			"git_commit": version.GitCommit,
			"git_state":  version.GitState,
			"build_date": version.BuildDate,
			"go_version": runtime.Version(),
		}
		if err := cmdcommon.EncodeTo(flagVersionFormat, v, os.Stdout); err != nil {
			cmdcommon.PrintFlagsError(c, "--format", err)
		}
	},
}

func init() {
	versionCmd.Flags().StringVar(&flagVersionFormat, "format", "", "output format, {yaml, json, prettyjson}; plain text by default")
	rootCmd.AddCommand(versionCmd)
}
