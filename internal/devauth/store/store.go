package store

import (
	"context"
	"errors"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories keep concerns
// apart; WithTx gives a Store whose repositories all see one atomic unit.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Escrows() Escrows

	// WithTx runs fn atomically. If fn returns an error nothing it wrote is
	// kept.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser fails with ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateBalances overwrites both balances and bumps updated_at.
	UpdateBalances(ctx context.Context, userID string, wallet, escrow int64, now time.Time) error

	UpdateProfile(ctx context.Context, userID, fullName, phoneNumber string, now time.Time) error
	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens drops expired and revoked records and
	// returns how many went.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int, error)
}

type Escrows interface {
	CreateEscrow(ctx context.Context, e domain.Escrow) error
	GetEscrowByID(ctx context.Context, id string) (domain.Escrow, error)
	UpdateEscrowStatus(ctx context.Context, id string, status domain.EscrowStatus, now time.Time) error
	UpdateEscrowTerms(ctx context.Context, id, description, conditions string, now time.Time) error

	// ListBySender returns escrows created by the user, newest first.
	ListBySender(ctx context.Context, senderID string) ([]domain.Escrow, error)

	// ListByParty returns escrows the user sent or receives, newest first.
	ListByParty(ctx context.Context, userID, email string) ([]domain.Escrow, error)
}
