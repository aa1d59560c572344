package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vidresolve/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolver over HTTP",
	Long: `Starts an HTTP API:

  GET /api/v1/resolve?url=...&passthrough=1&diagnostics=1&race=1
  GET /api/v1/hosts
  GET /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := cfg.Server.Addr
		if flagAddr != "" {
			addr = flagAddr
		}

		r, store, err := newResolver(ctx)
		if err != nil {
			return err
		}
		defer closeStore(store)

		return server.New(r, options(), store, log, Version).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&flagAddr, "addr", "a", "", "Listen address (default from config)")
}
