package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve [definition]",
	Short: "Start the HTTP server",
	Long: `Serves every step of the wizard under its base URL (GET renders the step as
JSON, POST records answers and redirects to the next step). Sessions go to
Redis when an address is set, otherwise to the SQL database in DATABASE_URL,
otherwise to files under SESSION_DIR, and stay in memory when none is set.
Prometheus metrics are exposed on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := definitionArg(args)
		if err != nil {
			return err
		}
		cfg.DefinitionPath = path
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("redis") {
			cfg.RedisAddr, _ = cmd.Flags().GetString("redis")
		}

		if !cfg.LogJSON && tui.IsTerminal(os.Stderr) {
			tui.WriteBanner(os.Stderr, waypoint.Version)
		}

		ctx, cancel := cli.SignalContext(cmd.Context())
		defer cancel()

		return cli.Serve(ctx, cli.ServeOptions{Config: cfg, Logger: cfg.Logger()})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for shared sessions")
}
