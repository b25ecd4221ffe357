package store

import (
	"context"
	"fmt"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

// MemoryStore serves a dataset held in process memory. It is immutable after
// construction, so concurrent readers need no locking.
type MemoryStore struct {
	records map[types.Kind][]types.Record
	index   map[types.Kind]map[string]int
}

// NewMemoryStore indexes d by kind and id, preserving declaration order.
func NewMemoryStore(d *types.Dataset) (*MemoryStore, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	s := &MemoryStore{
		records: make(map[types.Kind][]types.Record, len(types.Kinds)),
		index:   make(map[types.Kind]map[string]int, len(types.Kinds)),
	}
	for _, kind := range types.Kinds {
		recs := d.Records(kind)
		idx := make(map[string]int, len(recs))
		for i, r := range recs {
			idx[r.RecordID()] = i
		}
		s.records[kind] = recs
		s.index[kind] = idx
	}
	return s, nil
}

// All returns a copy of the records of kind.
func (s *MemoryStore) All(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	recs := s.records[kind]
	out := make([]types.Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Get returns one record by id.
func (s *MemoryStore) Get(ctx context.Context, kind types.Kind, id string) (types.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	i, ok := s.index[kind][id]
	if !ok {
		return nil, notFound(kind, id)
	}
	return s.records[kind][i], nil
}

// Filter returns the records of kind for which pred is true.
func (s *MemoryStore) Filter(ctx context.Context, kind types.Kind, pred func(types.Record) bool) ([]types.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	return filterRecords(s.records[kind], pred), nil
}

// Counts returns the number of records per kind.
func (s *MemoryStore) Counts(ctx context.Context) (types.RecordCounts, error) {
	return types.RecordCounts{
		Wells:        len(s.records[types.KindWell]),
		Trajectories: len(s.records[types.KindTrajectory]),
		Casings:      len(s.records[types.KindCasing]),
	}, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
