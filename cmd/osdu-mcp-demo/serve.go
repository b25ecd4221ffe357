package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johncarpenter/osdu-mcp-demo/internal/catalog"
	"github.com/johncarpenter/osdu-mcp-demo/internal/httpapi"
	"github.com/johncarpenter/osdu-mcp-demo/internal/mcp"
	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr  string
		stdio bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load or seed the dataset and serve JSON-RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, cfg.StoreBackend(), cfg.SnapshotPath(), logger)
			if err != nil {
				return err
			}
			defer st.Close()

			counts, err := st.Counts(ctx)
			if err != nil {
				return err
			}
			logger.Info("data ready", "backend", cfg.Backend, "path", cfg.SnapshotPath(), "counts", counts)

			rpc := mcp.NewServer(catalog.New(st), version, logger)

			if stdio {
				if err := rpc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			srv := httpapi.NewServer(rpc, st, cfg.Addr, logger)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			logger.Info("shutting down")
			return srv.Stop()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides OSDU_ADDR)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve newline-delimited JSON-RPC on stdin/stdout")
	return cmd
}
