package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe [definition]",
	Short: "Summarize the steps of a wizard",
	Long: `Prints every step with its flags, fields, targets and content as Markdown.
Output is styled when stdout is a terminal; use --raw to get plain Markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := definitionArg(args)
		if err != nil {
			return err
		}
		def, err := cli.LoadDefinition(path)
		if err != nil {
			return err
		}

		render := tui.Renderer(tui.Raw)
		raw, _ := cmd.Flags().GetBool("raw")
		if f, ok := cmd.OutOrStdout().(*os.File); ok && !raw && tui.IsTerminal(f) {
			if render, err = tui.NewRenderer(tui.Width(f)); err != nil {
				return fmt.Errorf("failed to init renderer: %w", err)
			}
		}

		out, err := render(tui.Describe(def))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print plain Markdown")
}
