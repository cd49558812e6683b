package planner

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteAuditStore persists planning decisions in SQLite.
type SQLiteAuditStore struct {
	db *sql.DB
}

// NewSQLiteAuditStore creates a SQLite-backed audit store and ensures schema.
func NewSQLiteAuditStore(db *sql.DB) (*SQLiteAuditStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensurePlanAuditSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteAuditStore{db: db}, nil
}

// Record stores a single audit event.
func (s *SQLiteAuditStore) Record(ctx context.Context, event AuditEvent) error {
	args, err := encodeAuditArgs(event.Args)
	if err != nil {
		return err
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_audit_events (
			turn_id, input, tool, reasoning, confidence, replanned, status, error_text, args_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.TurnID,
		event.Input,
		event.Tool,
		event.Reasoning,
		event.Confidence,
		event.Replanned,
		event.Status,
		event.Error,
		args,
		createdAt.UTC(),
	)
	return err
}

// List returns audit events matching the filter.
func (s *SQLiteAuditStore) List(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	query := `
		SELECT turn_id, input, tool, reasoning, confidence, replanned, status, error_text, args_json, created_at
		FROM plan_audit_events
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.TurnID != "" {
		addFilter("turn_id = ?", filter.TurnID)
	}
	if filter.Tool != "" {
		addFilter("tool = ?", filter.Tool)
	}
	if filter.Status != "" {
		addFilter("status = ?", filter.Status)
	}
	query += where + " ORDER BY created_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var (
			event    AuditEvent
			argsJSON string
			created  sql.NullTime
		)
		if err := rows.Scan(
			&event.TurnID,
			&event.Input,
			&event.Tool,
			&event.Reasoning,
			&event.Confidence,
			&event.Replanned,
			&event.Status,
			&event.Error,
			&argsJSON,
			&created,
		); err != nil {
			return nil, err
		}
		if decoded, err := decodeAuditArgs(argsJSON); err == nil {
			event.Args = decoded
		}
		if created.Valid {
			event.CreatedAt = created.Time
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func ensurePlanAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS plan_audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			turn_id TEXT NOT NULL,
			input TEXT,
			tool TEXT NOT NULL,
			reasoning TEXT,
			confidence REAL,
			replanned BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_text TEXT,
			args_json TEXT,
			created_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_plan_audit_turn ON plan_audit_events(turn_id);
		CREATE INDEX IF NOT EXISTS idx_plan_audit_tool ON plan_audit_events(tool);
		CREATE INDEX IF NOT EXISTS idx_plan_audit_status ON plan_audit_events(status);
	`)
	return err
}
