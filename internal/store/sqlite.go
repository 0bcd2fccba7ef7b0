package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS provider_failures (
	id          TEXT PRIMARY KEY,
	request_id  TEXT NOT NULL,
	company     TEXT NOT NULL,
	source      TEXT NOT NULL,
	error_kind  TEXT NOT NULL,
	fault_class TEXT NOT NULL,
	error       TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS resolutions (
	id          TEXT PRIMARY KEY,
	request_id  TEXT NOT NULL,
	company     TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	unavailable TEXT NOT NULL DEFAULT '[]',
	attempts    INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_provider_failures_source ON provider_failures(source);
CREATE INDEX IF NOT EXISTS idx_provider_failures_created_at ON provider_failures(created_at);
CREATE INDEX IF NOT EXISTS idx_resolutions_outcome ON resolutions(outcome);
CREATE INDEX IF NOT EXISTS idx_resolutions_company ON resolutions(company);
CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordFailure(ctx context.Context, f Failure) error {
	stamp(&f.ID, &f.CreatedAt, uuid.NewString)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO provider_failures (id, request_id, company, source, error_kind, fault_class, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.RequestID, f.Company, string(f.Source), string(f.ErrorKind), f.FaultClass, f.Error, f.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert failure")
}

func (s *SQLiteStore) RecordResolution(ctx context.Context, r Resolution) error {
	stamp(&r.ID, &r.CreatedAt, uuid.NewString)
	unavailable, err := marshalSources(r.Unavailable)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal unavailable")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resolutions (id, request_id, company, outcome, source, unavailable, attempts, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequestID, r.Company, r.Outcome, string(r.Source), string(unavailable), r.Attempts, r.DurationMs, r.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert resolution")
}

func (s *SQLiteStore) ListFailures(ctx context.Context, filter FailureFilter) ([]Failure, error) {
	query := `SELECT id, request_id, company, source, error_kind, fault_class, error, created_at
	          FROM provider_failures WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(filter.Source))
	}
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list failures")
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.ID, &f.RequestID, &f.Company, &f.Source, &f.ErrorKind, &f.FaultClass, &f.Error, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan failure")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list failures iterate")
}

func (s *SQLiteStore) ListResolutions(ctx context.Context, filter ResolutionFilter) ([]Resolution, error) {
	query := `SELECT id, request_id, company, outcome, source, unavailable, attempts, duration_ms, created_at
	          FROM resolutions WHERE 1=1`
	var args []any

	if filter.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, filter.Outcome)
	}
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list resolutions")
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var r Resolution
		var unavailable string
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Company, &r.Outcome, &r.Source, &unavailable, &r.Attempts, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan resolution")
		}
		if err := json.Unmarshal([]byte(unavailable), &r.Unavailable); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal unavailable")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list resolutions iterate")
}
