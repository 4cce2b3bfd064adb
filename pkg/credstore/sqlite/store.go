// Package sqlite is a credstore.Store backed by a local SQLite file, so a
// session survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safescrow/dashboard/pkg/credstore"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

var _ credstore.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	return NewStore(dsn)
}

// NewStore opens dsn and applies migrations. Use Open for a plain file path.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer at a time keeps Save atomic under SQLite's locking model.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dsn: dsn}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credstore/sqlite: apply migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save writes both slots in a single transaction.
func (s *Store) Save(ctx context.Context, access, refresh string) error {
	if access == "" {
		return credstore.ErrEmptyAccessToken
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsert(ctx, tx, credstore.KeyAccessToken, access); err != nil {
			return err
		}
		if refresh == "" {
			return nil
		}
		return upsert(ctx, tx, credstore.KeyRefreshToken, refresh)
	})
}

func (s *Store) Load(ctx context.Context) (credstore.Credentials, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, value FROM credentials WHERE slot IN (?, ?)`,
		credstore.KeyAccessToken, credstore.KeyRefreshToken,
	)
	if err != nil {
		return credstore.Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	defer rows.Close()

	var creds credstore.Credentials
	for rows.Next() {
		var slot, value string
		if err := rows.Scan(&slot, &value); err != nil {
			return credstore.Credentials{}, fmt.Errorf("failed to scan credential row: %w", err)
		}
		switch slot {
		case credstore.KeyAccessToken:
			creds.AccessToken = value
		case credstore.KeyRefreshToken:
			creds.RefreshToken = value
		}
	}

	if err := rows.Err(); err != nil {
		return credstore.Credentials{}, fmt.Errorf("failed to iterate credential rows: %w", err)
	}

	return creds, nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE slot IN (?, ?)`,
		credstore.KeyAccessToken, credstore.KeyRefreshToken,
	)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// withTx executes fn within a transaction, committing only if fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func upsert(ctx context.Context, tx *sql.Tx, slot, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (slot, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, slot, value)
	if err != nil {
		return fmt.Errorf("failed to save credential[%s]: %w", slot, err)
	}
	return nil
}
