package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

// bucketFor returns the bucket name holding records of kind.
func bucketFor(kind types.Kind) []byte {
	return []byte(kind.String())
}

// BoltStore implements Store and Snapshotter using BBolt. Each kind has its
// own bucket of JSON values keyed by record id.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BBolt-backed store.
func NewBoltStore(dbPath string) (*BoltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, kind := range types.Kinds {
			if _, err := tx.CreateBucketIfNotExists(bucketFor(kind)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", kind, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// All returns every record of kind in key order.
func (s *BoltStore) All(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	return s.scan(ctx, kind, nil)
}

// Get retrieves a record by id.
func (s *BoltStore) Get(ctx context.Context, kind types.Kind, id string) (types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	var rec types.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketFor(kind)).Get([]byte(id))
		if data == nil {
			return notFound(kind, id)
		}
		r, err := decodeRecord(kind, data)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Filter returns the records of kind matching pred.
func (s *BoltStore) Filter(ctx context.Context, kind types.Kind, pred func(types.Record) bool) ([]types.Record, error) {
	return s.scan(ctx, kind, pred)
}

func (s *BoltStore) scan(ctx context.Context, kind types.Kind, pred func(types.Record) bool) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	recs := []types.Record{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketFor(kind)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			r, err := decodeRecord(kind, v)
			if err != nil {
				return fmt.Errorf("%s %q: %w", kind, k, err)
			}
			if pred == nil || pred(r) {
				recs = append(recs, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Counts returns the number of keys in each bucket.
func (s *BoltStore) Counts(ctx context.Context) (types.RecordCounts, error) {
	var counts types.RecordCounts
	err := s.db.View(func(tx *bolt.Tx) error {
		counts.Wells = tx.Bucket(bucketFor(types.KindWell)).Stats().KeyN
		counts.Trajectories = tx.Bucket(bucketFor(types.KindTrajectory)).Stats().KeyN
		counts.Casings = tx.Bucket(bucketFor(types.KindCasing)).Stats().KeyN
		return nil
	})
	return counts, err
}

// Load reads every bucket into a Dataset. Empty buckets mean nothing has
// been persisted yet.
func (s *BoltStore) Load(ctx context.Context) (*types.Dataset, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	if counts.Total() == 0 {
		return nil, ErrNoSnapshot
	}
	d, err := DatasetOf(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return d, nil
}

// Save replaces the contents of every bucket with d in a single transaction.
func (s *BoltStore) Save(ctx context.Context, d *types.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, kind := range types.Kinds {
			name := bucketFor(kind)
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return fmt.Errorf("failed to clear bucket %s: %w", kind, err)
			}
			b, err := tx.CreateBucket(name)
			if err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", kind, err)
			}
			for _, r := range d.Records(kind) {
				data, err := json.Marshal(r)
				if err != nil {
					return fmt.Errorf("failed to marshal %s %q: %w", kind, r.RecordID(), err)
				}
				if err := b.Put([]byte(r.RecordID()), data); err != nil {
					return fmt.Errorf("failed to store %s %q: %w", kind, r.RecordID(), err)
				}
			}
		}
		return nil
	})
}

// Close closes the database connection.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
