package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per kind",
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s (%s)\n\n", cfg.StoreBackend(), cfg.SnapshotPath())

			counts := d.Counts()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tCOUNT")
			for _, k := range types.Kinds {
				fmt.Fprintf(w, "%s\t%d\n", k, len(d.Records(k)))
			}
			fmt.Fprintf(w, "total\t%d\n", counts.Total())
			return w.Flush()
		},
	}
}
