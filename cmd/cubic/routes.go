package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ui "github.com/cubic-dev/ui"
	"github.com/cubic-dev/ui/internal/config"
	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/manifest"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the endpoint table",
		Long: `Discover endpoints and print the resulting table.

Explicit endpoints from the manifest come first, followed by endpoints
derived from the sites directory.

Examples:
  cubic routes
  cubic routes --format=json
  cubic routes -C ./site --format=yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eps, err := discover(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if format == "" || format == "table" {
				return printTable(cmd, eps)
			}
			f, err := manifest.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := manifest.Encode(eps, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")

	return cmd
}

// discover loads the project config and returns its endpoint table.
func discover(ctx context.Context, flags *globalFlags) ([]endpoint.Endpoint, error) {
	cfg, err := config.LoadOrDefault(flags.dir)
	if err != nil {
		return nil, err
	}
	app, err := ui.New(cfg, ui.WithLogger(flags.logger()))
	if err != nil {
		return nil, err
	}
	if err := app.Rebuild(ctx); err != nil {
		return nil, err
	}
	return app.Endpoints(), nil
}

func printTable(cmd *cobra.Command, eps []endpoint.Endpoint) error {
	if len(eps) == 0 {
		warn(cmd, "No endpoints found")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tVIEW\tFILE")
	for _, ep := range eps {
		view := ep.View
		if view == "" {
			view = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ep.Route, view, ep.File)
	}
	return tw.Flush()
}
