package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/config"
)

// cfg is loaded from the environment before any command runs. Flags override it.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint guards multi-step form journeys",
	Long: `Waypoint serves a wizard described in YAML: it records the path each user
takes, refuses deep links into steps they have not reached and drops stale
answers when an earlier choice changes.

Settings come from WAYPOINT_* environment variables; flags take precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if def, _ := cmd.Flags().GetString("definition"); def != "" {
			cfg.DefinitionPath = def
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("definition", "d", "", "Path to the wizard definition (overrides WAYPOINT_DEFINITION)")
}

// definitionArg prefers a positional path over the configured one.
func definitionArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DefinitionPath == "" {
		return "", fmt.Errorf("no definition given: pass a path, -d or set %sDEFINITION", config.Prefix)
	}
	return cfg.DefinitionPath, nil
}
