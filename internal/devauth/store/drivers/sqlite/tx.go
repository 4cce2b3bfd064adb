package sqlite

import (
	"context"
	"database/sql"

	"github.com/safescrow/dashboard/internal/devauth/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Close() error { return nil } // the outer Store owns the DB

// Ping is a no-op; the connection is held for the life of the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.tx} }
func (t *txStore) Escrows() store.Escrows             { return &escrowsRepo{q: t.tx} }
