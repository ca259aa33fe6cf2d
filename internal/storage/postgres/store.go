// Package postgres is the Postgres remote backend. Documents are JSONB rows;
// subscriptions use LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

const notifyChannel = "stoptracker_documents"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	scope      TEXT        NOT NULL,
	kind       TEXT        NOT NULL,
	payload    JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (scope, kind)
);
`

type Store struct {
	db         *sql.DB
	connString string
}

// New wraps db. connString is used to open the dedicated connection each
// Watch call listens on.
func New(db *sql.DB, connString string) *Store {
	return &Store{db: db, connString: connString}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}

	return nil
}

func documentID(scope string, kind storage.Kind) string {
	return scope + "/" + string(kind)
}

func (s *Store) Get(ctx context.Context, scope string, kind storage.Kind) ([]byte, error) {
	var payload string

	err := s.db.QueryRowContext(ctx,
		`SELECT payload::text FROM documents WHERE scope = $1 AND kind = $2`,
		scope, string(kind),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", kind, err)
	}

	return []byte(payload), nil
}

// Put upserts the document and notifies listeners in the same transaction,
// so a notification is only sent for a committed write.
func (s *Store) Put(ctx context.Context, scope string, kind storage.Kind, payload []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (scope, kind, payload, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (scope, kind) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		scope, string(kind), string(payload),
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", kind, err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, documentID(scope, kind)); err != nil {
		return fmt.Errorf("notifying %s: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", kind, err)
	}

	return nil
}

func (s *Store) Watch(ctx context.Context, scope string, kind storage.Kind, fn func(payload []byte)) error {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return fmt.Errorf("connecting listener: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listening: %w", err)
	}

	if err := s.deliver(ctx, scope, kind, fn); err != nil {
		return err
	}

	target := documentID(scope, kind)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		if n.Payload != target {
			continue
		}

		if err := s.deliver(ctx, scope, kind, fn); err != nil {
			return err
		}
	}
}

func (s *Store) deliver(ctx context.Context, scope string, kind storage.Kind, fn func([]byte)) error {
	payload, err := s.Get(ctx, scope, kind)
	if errors.Is(err, storage.ErrNotFound) {
		fn(nil)
		return nil
	}

	if err != nil {
		return err
	}

	fn(payload)

	return nil
}
