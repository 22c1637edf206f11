package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

type versionInfo struct {
	App     string `json:"app"`
	Version string `json:"version"`
	Go      string `json:"go"`
	DBFile  string `json:"dbFile"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versionInfo{App: app, Version: version, Go: runtime.Version(), DBFile: dbFileName}

		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), info)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s (%s, db %s)\n", info.App, info.Version, info.Go, info.DBFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
