package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and
// pgx.Tx. Accepting this interface instead of *pgxpool.Pool directly
// allows integration tests to pass a transaction that is rolled back
// after each test, giving free per-test isolation without manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGKV is the Postgres implementation of KV, for installations that want
// the daemon's state in a database rather than a file. Schema lives in
// the migrations package (table "kv").
type PGKV struct {
	db db
}

// NewPGKV constructs a PGKV backed by the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPGKV(db db) *PGKV {
	return &PGKV{db: db}
}

func (r *PGKV) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM kv WHERE key = @key`

	var value string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store.PGKV.Get: %w", err)
	}
	return value, true, nil
}

func (r *PGKV) Put(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO kv (key, value)
		VALUES (@key, @value)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": value}); err != nil {
		return fmt.Errorf("store.PGKV.Put: %w", err)
	}
	return nil
}
