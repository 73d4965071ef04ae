package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/recommend"
	"github.com/rushteam/bookrec/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts, closeStore, err := a.engineOptions(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			opts.DefaultMethod = a.cfg.Recommend.DefaultMethod
			engine, err := recommend.New(ctx, opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return server.New(engine, a.cfg.Server).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
