package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores mirror values in a single key-value table of an
// embedded SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the mirror database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mirror db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS mirror (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("init mirror schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := b.db.QueryRowContext(ctx, `SELECT value FROM mirror WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load mirror key %s: %w", key, err)
	}

	return value, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := b.db.ExecContext(ctx, `INSERT INTO mirror (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("save mirror key %s: %w", key, err)
	}

	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM mirror WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete mirror key %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
