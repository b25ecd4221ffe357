package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the sample dataset to the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			snap, closeFn, err := store.OpenSnapshotter(cfg.StoreBackend(), cfg.SnapshotPath())
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			if !force {
				existing, err := snap.Load(ctx)
				switch {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "Snapshot at %s already holds %d records (use --force to overwrite)\n",
						cfg.SnapshotPath(), existing.Counts().Total())
					return nil
				case !errors.Is(err, store.ErrNoSnapshot):
					return err
				}
			}

			d := types.Seed()
			if err := snap.Save(ctx, d); err != nil {
				return fmt.Errorf("save seed: %w", err)
			}
			logger.Debug("seed data saved", "path", cfg.SnapshotPath(), "counts", d.Counts())
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records to %s\n", d.Counts().Total(), cfg.SnapshotPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing snapshot")
	return cmd
}
