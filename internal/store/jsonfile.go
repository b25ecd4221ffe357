package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

// JSONSnapshot persists the dataset as a single JSON document with top-level
// keys wells, trajectories and casings. The location may be a local path or
// any URL afs understands.
type JSONSnapshot struct {
	url string
	fs  afs.Service
}

// NewJSONSnapshot creates a snapshot at location.
func NewJSONSnapshot(location string) *JSONSnapshot {
	return &JSONSnapshot{
		url: snapshotURL(location),
		fs:  afs.New(),
	}
}

// URL returns the normalized snapshot location.
func (s *JSONSnapshot) URL() string {
	return s.url
}

// Load reads the snapshot, returning ErrNoSnapshot when it doesn't exist.
func (s *JSONSnapshot) Load(ctx context.Context) (*types.Dataset, error) {
	exists, err := s.fs.Exists(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.url, err)
	}
	if !exists {
		return nil, ErrNoSnapshot
	}

	data, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.url, err)
	}

	var d types.Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.url, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", s.url, err)
	}
	return &d, nil
}

// Save writes d, replacing any existing snapshot.
func (s *JSONSnapshot) Save(ctx context.Context, d *types.Dataset) error {
	out := *d
	if out.Wells == nil {
		out.Wells = []types.Well{}
	}
	if out.Trajectories == nil {
		out.Trajectories = []types.Trajectory{}
	}
	if out.Casings == nil {
		out.Casings = []types.Casing{}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.fs.Upload(ctx, s.url, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.url, err)
	}
	return nil
}

// snapshotURL turns a bare path into an absolute file:// URL.
func snapshotURL(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		abs = location
	}
	return "file://" + filepath.ToSlash(abs)
}
