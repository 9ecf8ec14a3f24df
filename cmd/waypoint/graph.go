package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [definition]",
	Short: "Export the journey graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the steps and their branches.
With --session the journey log of a stored session is overlaid.`,
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

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			store, closeStore, err := cli.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			s, err := store.Load(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load session '%s': %w", id, err)
			}
			log := s.History()
			current := ""
			if last, ok := log.Last(); ok && last.Next != "" {
				current = graph.Relative(def.BaseURL, last.Next)
			}
			overlay = graph.OverlayFromHistory(def, log, current)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Overlay the journey of a stored session (requires Redis or a session directory)")
}
