package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/johncarpenter/osdu-mcp-demo/internal/store/migrations"
	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

const migrationTable = "schema_migrations"

// SQLiteStore implements Store and Snapshotter on a relational schema: one
// table per kind plus a station table ordered by seq.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and applies embedded migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// All returns every record of kind ordered by id.
func (s *SQLiteStore) All(ctx context.Context, kind types.Kind) ([]types.Record, error) {
	switch kind {
	case types.KindWell:
		return s.queryWells(ctx, `SELECT id, facility_name, operator, lat, lon FROM wells ORDER BY id`)
	case types.KindTrajectory:
		return s.queryTrajectories(ctx, `SELECT id, well_id FROM trajectories ORDER BY id`)
	case types.KindCasing:
		return s.queryCasings(ctx, `SELECT id, well_id, top_depth, bottom_depth, diameter FROM casings ORDER BY id`)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// Get returns one record by id.
func (s *SQLiteStore) Get(ctx context.Context, kind types.Kind, id string) (types.Record, error) {
	var (
		recs []types.Record
		err  error
	)
	switch kind {
	case types.KindWell:
		recs, err = s.queryWells(ctx, `SELECT id, facility_name, operator, lat, lon FROM wells WHERE id = ?`, id)
	case types.KindTrajectory:
		recs, err = s.queryTrajectories(ctx, `SELECT id, well_id FROM trajectories WHERE id = ?`, id)
	case types.KindCasing:
		recs, err = s.queryCasings(ctx, `SELECT id, well_id, top_depth, bottom_depth, diameter FROM casings WHERE id = ?`, id)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFound(kind, id)
	}
	return recs[0], nil
}

// Filter returns the records of kind matching pred.
func (s *SQLiteStore) Filter(ctx context.Context, kind types.Kind, pred func(types.Record) bool) ([]types.Record, error) {
	recs, err := s.All(ctx, kind)
	if err != nil {
		return nil, err
	}
	return filterRecords(recs, pred), nil
}

// CasingsByWell uses the well_id index instead of a full scan.
func (s *SQLiteStore) CasingsByWell(ctx context.Context, wellID string) ([]types.Casing, error) {
	recs, err := s.queryCasings(ctx,
		`SELECT id, well_id, top_depth, bottom_depth, diameter FROM casings WHERE well_id = ? ORDER BY id`, wellID)
	if err != nil {
		return nil, err
	}
	casings := make([]types.Casing, 0, len(recs))
	for _, r := range recs {
		casings = append(casings, r.(types.Casing))
	}
	return casings, nil
}

// Counts returns the number of rows per kind.
func (s *SQLiteStore) Counts(ctx context.Context) (types.RecordCounts, error) {
	var counts types.RecordCounts
	targets := []struct {
		table string
		dst   *int
	}{
		{"wells", &counts.Wells},
		{"trajectories", &counts.Trajectories},
		{"casings", &counts.Casings},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return types.RecordCounts{}, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return counts, nil
}

// Load reads all tables into a Dataset. Empty tables mean nothing has been
// persisted yet.
func (s *SQLiteStore) Load(ctx context.Context) (*types.Dataset, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	if counts.Total() == 0 {
		return nil, ErrNoSnapshot
	}
	return DatasetOf(ctx, s)
}

// Save replaces every table's contents with d in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, d *types.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"trajectory_stations", "trajectories", "casings", "wells"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, w := range d.Wells {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wells (id, facility_name, operator, lat, lon) VALUES (?, ?, ?, ?, ?)`,
			w.ID, w.FacilityName, w.Operator, w.Location.Lat, w.Location.Lon,
		); err != nil {
			return fmt.Errorf("insert well %q: %w", w.ID, err)
		}
	}
	for _, t := range d.Trajectories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trajectories (id, well_id) VALUES (?, ?)`, t.ID, t.WellID,
		); err != nil {
			return fmt.Errorf("insert trajectory %q: %w", t.ID, err)
		}
		for i, st := range t.Stations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO trajectory_stations (trajectory_id, seq, md, tvd, incl, azi) VALUES (?, ?, ?, ?, ?, ?)`,
				t.ID, i, st.MD, st.TVD, st.Incl, st.Azi,
			); err != nil {
				return fmt.Errorf("insert station %d of %q: %w", i, t.ID, err)
			}
		}
	}
	for _, c := range d.Casings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO casings (id, well_id, top_depth, bottom_depth, diameter) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.WellID, c.TopDepth, c.BottomDepth, c.Diameter,
		); err != nil {
			return fmt.Errorf("insert casing %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) queryWells(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wells: %w", err)
	}
	defer rows.Close()

	recs := []types.Record{}
	for rows.Next() {
		var w types.Well
		if err := rows.Scan(&w.ID, &w.FacilityName, &w.Operator, &w.Location.Lat, &w.Location.Lon); err != nil {
			return nil, fmt.Errorf("scan well: %w", err)
		}
		recs = append(recs, w)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) queryCasings(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query casings: %w", err)
	}
	defer rows.Close()

	recs := []types.Record{}
	for rows.Next() {
		var c types.Casing
		if err := rows.Scan(&c.ID, &c.WellID, &c.TopDepth, &c.BottomDepth, &c.Diameter); err != nil {
			return nil, fmt.Errorf("scan casing: %w", err)
		}
		recs = append(recs, c)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) queryTrajectories(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trajectories: %w", err)
	}
	var trajs []types.Trajectory
	for rows.Next() {
		var t types.Trajectory
		if err := rows.Scan(&t.ID, &t.WellID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan trajectory: %w", err)
		}
		trajs = append(trajs, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	recs := make([]types.Record, 0, len(trajs))
	for _, t := range trajs {
		stations, err := s.stations(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Stations = stations
		recs = append(recs, t)
	}
	return recs, nil
}

func (s *SQLiteStore) stations(ctx context.Context, trajectoryID string) ([]types.Station, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT md, tvd, incl, azi FROM trajectory_stations WHERE trajectory_id = ? ORDER BY seq`, trajectoryID)
	if err != nil {
		return nil, fmt.Errorf("query stations of %q: %w", trajectoryID, err)
	}
	defer rows.Close()

	stations := []types.Station{}
	for rows.Next() {
		var st types.Station
		if err := rows.Scan(&st.MD, &st.TVD, &st.Incl, &st.Azi); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// applyMigrations executes each embedded .sql file at most once.
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var applied string
		err := db.QueryRow(`SELECT name FROM `+migrationTable+` WHERE name = ?`, file).Scan(&applied)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		up := upSection(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// upSection returns the SQL between "-- +migrate Up" and "-- +migrate Down".
func upSection(content string) string {
	const upMarker, downMarker = "-- +migrate Up", "-- +migrate Down"
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	rest := content[upIdx+len(upMarker):]
	if downIdx := strings.Index(rest, downMarker); downIdx != -1 {
		return rest[:downIdx]
	}
	return rest
}
