package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored dataset as snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			d, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if output != "" {
				if err := store.NewJSONSnapshot(output).Save(cmd.Context(), d); err != nil {
					return fmt.Errorf("error exporting: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
				return nil
			}
			return writeDataset(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or URL (default: stdout)")
	return cmd
}

func writeDataset(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|url>",
		Short: "Load a JSON snapshot into the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := store.NewJSONSnapshot(args[0]).Load(ctx)
			if errors.Is(err, store.ErrNoSnapshot) {
				return fmt.Errorf("snapshot %s does not exist", args[0])
			}
			if err != nil {
				return err
			}

			snap, closeFn, err := store.OpenSnapshotter(cfg.StoreBackend(), cfg.SnapshotPath())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := snap.Save(ctx, d); err != nil {
				return fmt.Errorf("error importing: %w", err)
			}
			logger.Debug("snapshot imported", "from", args[0], "to", cfg.SnapshotPath(), "counts", d.Counts())
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", d.Counts().Total(), cfg.SnapshotPath())
			return nil
		},
	}
}
