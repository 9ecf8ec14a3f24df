package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definition]",
	Short: "Check a definition for consistency",
	Long: `Parses the definition, then reports missing entry points, duplicate routes,
unknown operators, unknown field types and targets or prereqs naming steps that
do not exist. It then crawls the journey from its entry points and warns about
steps nobody can reach.
Named functions must be registered by the embedding program, so a definition
using them validates here but cannot be served by this binary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := definitionArg(args)
		if err != nil {
			return err
		}
		def, err := cli.LoadDefinition(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		warn := cmd.ErrOrStderr()
		if _, err := cli.NewWizard(def, nil, logging.NewNop()); err != nil {
			fmt.Fprintf(warn, "warning: %v\n", err)
		}

		report := validator.Crawl(def)
		for _, route := range report.Unreachable {
			fmt.Fprintf(warn, "warning: step '%s' is unreachable from any entry point\n", route)
		}
		for _, route := range report.DeadEnds {
			fmt.Fprintf(warn, "warning: step '%s' is a prereq but leads nowhere\n", route)
		}
		if report.Dynamic && len(report.Unreachable) > 0 {
			fmt.Fprintln(warn, "note: branch functions may reach steps reported unreachable")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps, definition is valid\n", path, len(def.Steps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
