package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ui "github.com/cubic-dev/ui"
	"github.com/cubic-dev/ui/internal/config"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port   int
		host   string
		watch  bool
		reload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages with server-side prefetch",
		Long: `Discover endpoints and serve them over HTTP.

Pages are rendered as JSON ({"route", "state"}) unless the application
registers its own renderer. With --watch the endpoint table is rebuilt
when views or the manifest change; --reload also notifies connected
browsers.

Examples:
  cubic serve
  cubic serve --port=8080 --host=0.0.0.0
  cubic serve --watch --reload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(flags.dir)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if watch {
				cfg.Dev.Watch = true
			}
			if reload {
				cfg.Dev.Reload = true
			}

			app, err := ui.New(cfg, ui.WithLogger(flags.logger()))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			success(cmd, "Serving on http://%s", cfg.Address())
			if cfg.Dev.Watch {
				info(cmd, "Watching %s", cfg.SitesPath())
			}
			if cfg.Metrics.Enabled {
				info(cmd, "Metrics at %s", cfg.Metrics.Path)
			}
			fmt.Fprintln(cmd.OutOrStdout())

			return app.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from cubic.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from cubic.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild endpoints when files change")
	cmd.Flags().BoolVar(&reload, "reload", false, "Notify browsers after each rebuild")

	return cmd
}
