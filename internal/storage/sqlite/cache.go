// Package sqlite is the on-disk cache backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	scope      TEXT NOT NULL,
	key        TEXT NOT NULL,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (scope, key)
);
`

// Cache keeps one row per scope and cache key.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Get(ctx context.Context, scope string, kind storage.Kind) ([]byte, error) {
	var payload []byte

	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE scope = ? AND key = ?`,
		scope, kind.CacheKey(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading cached %s: %w", kind, err)
	}

	return payload, nil
}

func (c *Cache) Put(ctx context.Context, scope string, kind storage.Kind, payload []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO documents (scope, key, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		scope, kind.CacheKey(), payload, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("caching %s: %w", kind, err)
	}

	return nil
}

// Scopes lists every scope with at least one cached document.
func (c *Cache) Scopes(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT scope FROM documents ORDER BY scope`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var scopes []string

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}

		scopes = append(scopes, s)
	}

	return scopes, rows.Err()
}
