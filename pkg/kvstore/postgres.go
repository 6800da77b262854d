package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore persists slots in a single kv_slots table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the kv_slots table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS kv_slots (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure kv_slots schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_slots WHERE key = $1 LIMIT 1`
	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_slots WHERE key = $1`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
