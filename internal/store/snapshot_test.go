package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

// sorted orders every slice by id so datasets compare order-insensitively.
func sorted(d *types.Dataset) *types.Dataset {
	out := *d
	out.Wells = append([]types.Well(nil), d.Wells...)
	out.Trajectories = append([]types.Trajectory(nil), d.Trajectories...)
	out.Casings = append([]types.Casing(nil), d.Casings...)
	sort.Slice(out.Wells, func(i, j int) bool { return out.Wells[i].ID < out.Wells[j].ID })
	sort.Slice(out.Trajectories, func(i, j int) bool { return out.Trajectories[i].ID < out.Trajectories[j].ID })
	sort.Slice(out.Casings, func(i, j int) bool { return out.Casings[i].ID < out.Casings[j].ID })
	return &out
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []Backend{BackendJSON, BackendSQLite, BackendBolt} {
		t.Run(string(backend), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "osdu_data"+backend.Extension())

			snap, closeFn, err := OpenSnapshotter(backend, path)
			require.NoError(t, err)

			_, err = snap.Load(ctx)
			require.ErrorIs(t, err, ErrNoSnapshot)

			seeded, err := Bootstrap(ctx, snap, discardLogger())
			require.NoError(t, err)
			assert.Equal(t, types.Seed(), seeded)
			require.NoError(t, closeFn())

			// Reopen to make sure the data came from disk.
			snap, closeFn, err = OpenSnapshotter(backend, path)
			require.NoError(t, err)
			defer closeFn()

			loaded, err := snap.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sorted(types.Seed()), sorted(loaded))
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []Backend{BackendJSON, BackendSQLite, BackendBolt} {
		t.Run(string(backend), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "osdu_data"+backend.Extension())
			snap, closeFn, err := OpenSnapshotter(backend, path)
			require.NoError(t, err)
			defer closeFn()

			require.NoError(t, snap.Save(ctx, types.Seed()))

			smaller := types.Seed()
			smaller.Casings = smaller.Casings[:1]
			require.NoError(t, snap.Save(ctx, smaller))

			loaded, err := snap.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, types.RecordCounts{Wells: 2, Trajectories: 2, Casings: 1}, loaded.Counts())
			assert.Equal(t, "casing1", loaded.Casings[0].ID)
		})
	}
}

func TestJSONSnapshotFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osdu_data.json")
	snap := NewJSONSnapshot(path)
	require.NoError(t, snap.Save(context.Background(), &types.Dataset{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wells":[],"trajectories":[],"casings":[]}`, string(data))
}

func TestJSONSnapshotCorruptIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osdu_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Bootstrap(context.Background(), NewJSONSnapshot(path), discardLogger())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)

	// The corrupt file must not have been replaced by the seed.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(data))
}

func TestJSONSnapshotLoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osdu_data.json")
	doc := `{"wells":[{"id":"w9","facility_name":"Well Z","operator":"OpZ","location":{"lat":1,"lon":2}}],"trajectories":[],"casings":[]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := Open(context.Background(), BackendJSON, path, discardLogger())
	require.NoError(t, err)
	defer s.Close()

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RecordCounts{Wells: 1}, counts)

	rec, err := s.Get(context.Background(), types.KindWell, "w9")
	require.NoError(t, err)
	assert.Equal(t, "OpZ", rec.(types.Well).Operator)
}

func TestSnapshotURL(t *testing.T) {
	assert.Equal(t, "mem://localhost/osdu.json", snapshotURL("mem://localhost/osdu.json"))
	assert.Equal(t, "file:///var/data/osdu.json", snapshotURL("/var/data/osdu.json"))
}

type failingSnapshot struct {
	loadErr error
	saveErr error
	saved   *types.Dataset
}

func (f *failingSnapshot) Load(context.Context) (*types.Dataset, error) {
	return nil, f.loadErr
}

func (f *failingSnapshot) Save(_ context.Context, d *types.Dataset) error {
	f.saved = d
	return f.saveErr
}

func TestBootstrapSaveFailureIsFatal(t *testing.T) {
	snap := &failingSnapshot{loadErr: ErrNoSnapshot, saveErr: os.ErrPermission}
	_, err := Bootstrap(context.Background(), snap, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.NotNil(t, snap.saved)
}
