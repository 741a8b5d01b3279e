// cmd/ember/serve.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ember/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Evaluate programs sent over websocket connections",
		Long: "Serve /ws, where each connection evaluates programs against its own variables,\n" +
			"and /healthz. Stops on interrupt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Serve.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Addr:            addr,
				AllowedOrigins:  c.cfg.Serve.AllowedOrigins,
				MaxMessageBytes: c.cfg.Serve.MaxMessageBytes,
				StrictVariables: c.cfg.StrictVariables,
			})
			c.printf("listening on %s\n", addr)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from ember.yml serve.addr)")
	return cmd
}
