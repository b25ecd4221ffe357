package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/johncarpenter/osdu-mcp-demo/internal/config"
	"github.com/johncarpenter/osdu-mcp-demo/internal/logging"
	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

// rootOptions holds the persistent flags. Empty values defer to the
// environment.
type rootOptions struct {
	backend  string
	data     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "osdu-mcp-demo",
		Short: "OSDU well data over a minimal MCP JSON-RPC server",
		Long: `osdu-mcp-demo serves a small well, trajectory and casing dataset over
JSON-RPC using the MCP method names (initialize, resources/*, tools/*,
prompts/*). The dataset is seeded on first start and persisted to the
configured backend.

Environment Variables:
  OSDU_ADDR         Listen address (default: 0.0.0.0:8000)
  OSDU_BACKEND      memory, json, sqlite or bolt (default: json)
  OSDU_DATA_DIR     Snapshot directory (default: /home on Azure, else .)
  OSDU_DATA_PATH    Explicit snapshot path or afs URL
  OSDU_LOG_LEVEL    debug, info, warn or error (default: debug)
  OSDU_LOG_FORMAT   text or json (default: text)`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.backend, "backend", "", "storage backend (memory, json, sqlite, bolt)")
	pf.StringVar(&opts.data, "data", "", "snapshot path or URL")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newStatsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load resolves the environment, applies flag overrides and builds the logger.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.data != "" {
		cfg.DataPath = o.data
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	format, _ := logging.ParseFormat(cfg.LogFormat)
	return cfg, logging.Setup(os.Stderr, level, format), nil
}

// loadDataset reads the persisted dataset without seeding it. The memory
// backend always yields the seed.
func loadDataset(ctx context.Context, cfg *config.Config) (*types.Dataset, error) {
	if cfg.StoreBackend() == store.BackendMemory {
		return types.Seed(), nil
	}
	snap, closeFn, err := store.OpenSnapshotter(cfg.StoreBackend(), cfg.SnapshotPath())
	if err != nil {
		return nil, err
	}
	defer closeFn()

	d, err := snap.Load(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, fmt.Errorf("no snapshot at %s, run seed or serve first", cfg.SnapshotPath())
	}
	return d, err
}
