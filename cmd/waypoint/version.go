package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of waypoint",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "waypoint version %s\n", waypoint.Version)
		if short, _ := cmd.Flags().GetBool("short"); short {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fmt.Fprintf(out, "go: %s\n", info.GoVersion)
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" || s.Key == "vcs.modified" {
				fmt.Fprintf(out, "%s: %s\n", s.Key, s.Value)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}
