package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock pools satisfy
// it too.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS provider_failures (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	request_id  TEXT NOT NULL,
	company     TEXT NOT NULL,
	source      TEXT NOT NULL,
	error_kind  TEXT NOT NULL,
	fault_class TEXT NOT NULL,
	error       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS resolutions (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	request_id  TEXT NOT NULL,
	company     TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	unavailable JSONB NOT NULL DEFAULT '[]'::jsonb,
	attempts    INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_provider_failures_source ON provider_failures(source);
CREATE INDEX IF NOT EXISTS idx_provider_failures_created_at ON provider_failures(created_at);
CREATE INDEX IF NOT EXISTS idx_resolutions_outcome ON resolutions(outcome);
CREATE INDEX IF NOT EXISTS idx_resolutions_company ON resolutions(company);
CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) RecordFailure(ctx context.Context, f Failure) error {
	stamp(&f.ID, &f.CreatedAt, uuid.NewString)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO provider_failures (id, request_id, company, source, error_kind, fault_class, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.RequestID, f.Company, string(f.Source), string(f.ErrorKind), f.FaultClass, f.Error, f.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert failure")
}

func (s *PostgresStore) RecordResolution(ctx context.Context, r Resolution) error {
	stamp(&r.ID, &r.CreatedAt, uuid.NewString)
	unavailable, err := marshalSources(r.Unavailable)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal unavailable")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO resolutions (id, request_id, company, outcome, source, unavailable, attempts, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.RequestID, r.Company, r.Outcome, string(r.Source), unavailable, r.Attempts, r.DurationMs, r.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert resolution")
}

func (s *PostgresStore) ListFailures(ctx context.Context, filter FailureFilter) ([]Failure, error) {
	query := `SELECT id, request_id, company, source, error_kind, fault_class, error, created_at
	          FROM provider_failures WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, string(filter.Source))
		argIdx++
	}
	if filter.Company != "" {
		query += fmt.Sprintf(` AND company = $%d`, argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	if !filter.Since.IsZero() {
		query += fmt.Sprintf(` AND created_at >= $%d`, argIdx)
		args = append(args, filter.Since)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, limitOrDefault(filter.Limit))
	argIdx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list failures")
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		var source, kind string
		if err := rows.Scan(&f.ID, &f.RequestID, &f.Company, &source, &kind, &f.FaultClass, &f.Error, &f.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan failure")
		}
		f.Source = model.Source(source)
		f.ErrorKind = model.ErrorKind(kind)
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list failures iterate")
}

func (s *PostgresStore) ListResolutions(ctx context.Context, filter ResolutionFilter) ([]Resolution, error) {
	query := `SELECT id, request_id, company, outcome, source, unavailable, attempts, duration_ms, created_at
	          FROM resolutions WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Outcome != "" {
		query += fmt.Sprintf(` AND outcome = $%d`, argIdx)
		args = append(args, filter.Outcome)
		argIdx++
	}
	if filter.Company != "" {
		query += fmt.Sprintf(` AND company = $%d`, argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	if !filter.Since.IsZero() {
		query += fmt.Sprintf(` AND created_at >= $%d`, argIdx)
		args = append(args, filter.Since)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, limitOrDefault(filter.Limit))
	argIdx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list resolutions")
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var r Resolution
		var source string
		var unavailable []byte
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Company, &r.Outcome, &source, &unavailable, &r.Attempts, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan resolution")
		}
		r.Source = model.Source(source)
		if len(unavailable) > 0 {
			if err := json.Unmarshal(unavailable, &r.Unavailable); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal unavailable")
			}
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list resolutions iterate")
}
