package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	wheel "github.com/Ashenafi-pixel/gamecrafter-wheel"
)

const recordsTable = `CREATE TABLE IF NOT EXISTS wheel_records (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres persists records in the wheel_records table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres uses the shared DATABASE_URL pool and ensures the table exists.
func OpenPostgres(ctx context.Context) (*Postgres, error) {
	db, err := wheel.GetDB()
	if err != nil {
		return nil, fmt.Errorf("store: connect db: %w", err)
	}
	if db == nil {
		return nil, errors.New("store: DATABASE_URL is not set")
	}
	return NewPostgres(ctx, db)
}

func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if _, err := db.ExecContext(ctx, recordsTable); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, key Key) ([]byte, error) {
	var v []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM wheel_records WHERE key = $1`, key.String()).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (p *Postgres) Commit(ctx context.Context, b *Batch) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, o := range b.ops {
		if o.delete {
			_, err = tx.ExecContext(ctx, `DELETE FROM wheel_records WHERE key = $1`, o.key.String())
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO wheel_records (key, value, updated_at) VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, o.key.String(), string(o.value))
		}
		if err != nil {
			return fmt.Errorf("store: write %s: %w", o.key, err)
		}
	}
	return tx.Commit()
}

// Close leaves the shared pool open; it is owned by the process.
func (p *Postgres) Close() error { return nil }
