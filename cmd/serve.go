package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/shipscan/internal/adapters/httpserver"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string
	var demo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose receiving sessions over HTTP for scanner gateways",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := app.buildService(demo)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
			return httpserver.Serve(ctx, addr, httpserver.NewRouter(svc))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.cfg.serveAddr, "Listen address")
	cmd.Flags().BoolVar(&demo, "demo", false, "Use the built-in demo ledger instead of the configured one")

	return cmd
}
