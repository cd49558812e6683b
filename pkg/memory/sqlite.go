package memory

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jllopis/topomind/pkg/errors"
)

// SnapshotStore persists memory snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}

// SQLiteSnapshotStore keeps snapshots in SQLite, newest last. Only the
// most recent snapshot is ever restored; older rows remain for audit.
type SQLiteSnapshotStore struct {
	db *sql.DB
}

// OpenSQLiteSnapshotStore opens (or creates) a snapshot database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLiteSnapshotStore(path string) (*SQLiteSnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "open snapshot db", err)
	}
	return NewSQLiteSnapshotStore(db)
}

// NewSQLiteSnapshotStore wraps an existing database handle and ensures the
// schema exists.
func NewSQLiteSnapshotStore(db *sql.DB) (*SQLiteSnapshotStore, error) {
	if db == nil {
		return nil, errors.Newf(errors.CodeMemoryError, "db is nil")
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS memory_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at TIMESTAMP NOT NULL,
			turn INTEGER NOT NULL,
			payload TEXT NOT NULL
		)
	`); err != nil {
		return nil, errors.New(errors.CodeMemoryError, "ensure snapshot schema", err)
	}
	return &SQLiteSnapshotStore{db: db}, nil
}

// Save stores one snapshot row.
func (s *SQLiteSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	payload, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_snapshots (taken_at, turn, payload) VALUES (?, ?, ?)
	`, time.Now().UTC(), snap.Turn, string(payload))
	if err != nil {
		return errors.New(errors.CodeMemoryError, "save snapshot", err)
	}
	return nil
}

// Load returns the most recent snapshot. A missing snapshot is reported
// with CodeNotFound so callers can start fresh.
func (s *SQLiteSnapshotStore) Load(ctx context.Context) (Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM memory_snapshots ORDER BY id DESC LIMIT 1
	`).Scan(&payload)
	if err == sql.ErrNoRows {
		return Snapshot{}, errors.Newf(errors.CodeNotFound, "no snapshot stored")
	}
	if err != nil {
		return Snapshot{}, errors.New(errors.CodeMemoryError, "load snapshot", err)
	}
	return UnmarshalSnapshot([]byte(payload))
}

// Close releases the underlying database handle.
func (s *SQLiteSnapshotStore) Close() error { return s.db.Close() }
