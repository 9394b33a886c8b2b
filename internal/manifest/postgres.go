package manifest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/gridgen?sslmode=disable"

// Postgres persists run records in a Postgres table with the same one-row-
// per-run JSON payload shape as the sqlite store. Useful when many generation
// hosts share one ledger.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a Postgres-backed manifest store using the provided DSN
// (falls back to a local default).
func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS gridgen_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveRun(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run id required")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", rec.ID, err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO gridgen_runs (id, started_at, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET started_at = EXCLUDED.started_at, payload = EXCLUDED.payload`,
		rec.ID, rec.StartedAt.UTC(), payload)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM gridgen_runs WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("get run %s: %w", id, err)
	}
	var rec RunRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return rec, true, nil
}

func (p *Postgres) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT payload FROM gridgen_runs ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []RunRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec RunRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }
