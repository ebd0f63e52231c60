package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build details",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)

		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}

		fmt.Printf("go: %s\n", info.GoVersion)
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision", "vcs.time", "vcs.modified":
				fmt.Printf("%s: %s\n", setting.Key, setting.Value)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
