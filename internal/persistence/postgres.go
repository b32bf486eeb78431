package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres stores the snapshot as a single row. An UPSERT keeps the write
// atomic, mirroring the file backend's rename semantics.
type Postgres struct {
	db *sql.DB
}

// NewPostgres prepares the snapshot table and returns the backend.
func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS submission_snapshots (
			id         INT PRIMARY KEY,
			payload    BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM submission_snapshots WHERE id = 1`,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot from postgres: %w", err)
	}
	return payload, nil
}

func (p *Postgres) Save(ctx context.Context, data []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO submission_snapshots (id, payload, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		data,
	)
	if err != nil {
		return fmt.Errorf("save snapshot to postgres: %w", err)
	}
	return nil
}
