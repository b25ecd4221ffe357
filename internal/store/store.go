// Package store provides the read model and snapshot persistence for the
// well dataset. Four backends implement the same Store contract: memory,
// a JSON snapshot file, SQLite and BBolt.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

var (
	// ErrNotFound is returned when a record doesn't exist.
	ErrNotFound = errors.New("record not found")
	// ErrNoSnapshot is returned by Load when nothing has been persisted yet.
	ErrNoSnapshot = errors.New("no snapshot")
	// ErrUnknownKind is returned for a Kind outside the declared set.
	ErrUnknownKind = errors.New("unknown record kind")
	// ErrUnknownBackend is returned by ParseBackend.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Store defines the read contract shared by every backend.
type Store interface {
	All(ctx context.Context, kind types.Kind) ([]types.Record, error)
	Get(ctx context.Context, kind types.Kind, id string) (types.Record, error)
	Filter(ctx context.Context, kind types.Kind, pred func(types.Record) bool) ([]types.Record, error)
	Counts(ctx context.Context) (types.RecordCounts, error)
	Close() error
}

// Snapshotter persists and restores the whole dataset.
type Snapshotter interface {
	Load(ctx context.Context) (*types.Dataset, error)
	Save(ctx context.Context, d *types.Dataset) error
}

// Backend names a storage implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
)

// ParseBackend resolves a backend name, case-insensitively.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendMemory, BackendJSON, BackendSQLite, BackendBolt:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Extension returns the default snapshot file extension for the backend.
func (b Backend) Extension() string {
	switch b {
	case BackendSQLite:
		return ".db"
	case BackendBolt:
		return ".bolt"
	default:
		return ".json"
	}
}

// Bootstrap loads the persisted dataset, seeding and saving it when nothing
// has been persisted yet. Any other load or save failure is returned.
func Bootstrap(ctx context.Context, snap Snapshotter, logger *slog.Logger) (*types.Dataset, error) {
	d, err := snap.Load(ctx)
	switch {
	case err == nil:
		logger.Debug("loaded snapshot", "counts", d.Counts())
		return d, nil
	case errors.Is(err, ErrNoSnapshot):
		logger.Debug("no snapshot found, initializing sample data")
	default:
		logger.Error("failed to load data", "error", err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	d = types.Seed()
	if err := snap.Save(ctx, d); err != nil {
		logger.Error("failed to save data", "error", err)
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	logger.Debug("seed data saved", "counts", d.Counts())
	return d, nil
}

// Open builds the store for backend at path and bootstraps its contents.
// The memory backend ignores path.
func Open(ctx context.Context, backend Backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(types.Seed())
	case BackendJSON:
		d, err := Bootstrap(ctx, NewJSONSnapshot(path), logger)
		if err != nil {
			return nil, err
		}
		return NewMemoryStore(d)
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		if _, err := Bootstrap(ctx, s, logger); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case BackendBolt:
		s, err := NewBoltStore(path)
		if err != nil {
			return nil, err
		}
		if _, err := Bootstrap(ctx, s, logger); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// OpenSnapshotter returns the snapshot side of a persistent backend, for
// commands that seed or export without serving. Callers close the returned
// closer when done.
func OpenSnapshotter(backend Backend, path string) (Snapshotter, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case BackendJSON:
		return NewJSONSnapshot(path), noop, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendBolt:
		s, err := NewBoltStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return nil, nil, fmt.Errorf("backend %q has no snapshot", backend)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// wellCasingQuerier is implemented by backends with an index on well_id.
type wellCasingQuerier interface {
	CasingsByWell(ctx context.Context, wellID string) ([]types.Casing, error)
}

// CasingsForWell returns every casing whose well_id equals wellID.
func CasingsForWell(ctx context.Context, s Store, wellID string) ([]types.Casing, error) {
	if q, ok := s.(wellCasingQuerier); ok {
		return q.CasingsByWell(ctx, wellID)
	}
	recs, err := s.Filter(ctx, types.KindCasing, func(r types.Record) bool {
		c, ok := r.(types.Casing)
		return ok && c.WellID == wellID
	})
	if err != nil {
		return nil, err
	}
	casings := make([]types.Casing, 0, len(recs))
	for _, r := range recs {
		casings = append(casings, r.(types.Casing))
	}
	return casings, nil
}

// WellsOf converts Well records back to their concrete type.
func WellsOf(recs []types.Record) []types.Well {
	wells := make([]types.Well, 0, len(recs))
	for _, r := range recs {
		if w, ok := r.(types.Well); ok {
			wells = append(wells, w)
		}
	}
	return wells
}

// DatasetOf reads every record of s into a Dataset.
func DatasetOf(ctx context.Context, s Store) (*types.Dataset, error) {
	d := &types.Dataset{
		Wells:        []types.Well{},
		Trajectories: []types.Trajectory{},
		Casings:      []types.Casing{},
	}
	for _, kind := range types.Kinds {
		recs, err := s.All(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", kind, err)
		}
		for _, r := range recs {
			if err := d.Add(r); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// decodeRecord unmarshals a JSON value into the concrete type for kind.
func decodeRecord(kind types.Kind, data []byte) (types.Record, error) {
	switch kind {
	case types.KindWell:
		var w types.Well
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("failed to unmarshal well: %w", err)
		}
		return w, nil
	case types.KindTrajectory:
		var t types.Trajectory
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trajectory: %w", err)
		}
		return t, nil
	case types.KindCasing:
		var c types.Casing
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal casing: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

func filterRecords(recs []types.Record, pred func(types.Record) bool) []types.Record {
	out := make([]types.Record, 0, len(recs))
	for _, r := range recs {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func notFound(kind types.Kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
