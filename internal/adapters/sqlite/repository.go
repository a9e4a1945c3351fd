// Package sqlite stores the pending-save record in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bft-labs/connguard/pkg/backup"
)

// Repository implements backup.Repository on a pending_saves table keyed by
// storage key. The payload column holds the encoded record unchanged so the
// layout matches the file store.
type Repository struct {
	db  *sql.DB
	key string
}

var _ backup.Repository = (*Repository)(nil)

// Open opens (creating if needed) the database at dbPath, runs migrations and
// returns a repository for key.
func Open(dbPath, key string) (*Repository, error) {
	if key == "" {
		key = backup.DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; SQLite serialises anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db, key: key}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load returns the stored record, backup.ErrNotFound, or an error wrapping
// backup.ErrCorrupt.
func (r *Repository) Load(ctx context.Context) (backup.Record, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM pending_saves WHERE key = ?`, r.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return backup.Record{}, backup.ErrNotFound
	}
	if err != nil {
		return backup.Record{}, fmt.Errorf("query pending save: %w", err)
	}
	return backup.Decode(payload)
}

// Save replaces the record for the repository key.
func (r *Repository) Save(ctx context.Context, rec backup.Record) error {
	payload, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode pending save: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pending_saves (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		r.key, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert pending save: %w", err)
	}
	return nil
}

// Delete removes the record. A missing row is not an error.
func (r *Repository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_saves WHERE key = ?`, r.key); err != nil {
		return fmt.Errorf("delete pending save: %w", err)
	}
	return nil
}

// Exists reports whether a row is stored for the key.
func (r *Repository) Exists(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM pending_saves WHERE key = ?`, r.key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count pending saves: %w", err)
	}
	return n > 0, nil
}

// saveRaw stores bytes as-is; tests use it to plant corrupt payloads.
func (r *Repository) saveRaw(ctx context.Context, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_saves (key, payload, saved_at) VALUES (?, ?, '')
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`, r.key, payload)
	return err
}
