package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/domain"
	"github.com/safescrow/dashboard/internal/devauth/store"
	"github.com/safescrow/dashboard/pkg/cryptox"
	"github.com/safescrow/dashboard/pkg/idx"
	"github.com/safescrow/dashboard/pkg/jwtx"
	"github.com/safescrow/dashboard/pkg/slogx"
)

// DefaultRefreshTTL bounds how long a session can go without signing in again.
const DefaultRefreshTTL = 7 * 24 * time.Hour

// Signer mints access tokens.
type Signer interface {
	Sign(claims jwtx.Claims) (string, error)
}

type RegisterInput struct {
	Email       string
	NIN         string
	Password    string
	Password2   string
	FullName    string
	PhoneNumber string
}

// Profile is a user together with derived dashboard figures.
type Profile struct {
	domain.User

	PendingTransactions int
}

type AuthService struct {
	Store      store.Store
	Hasher     *cryptox.Hasher
	Signer     Signer
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// StartingBalance is credited to every new wallet, in minor units.
	StartingBalance int64

	// Now defaults to time.Now.
	Now func() time.Time
}

// Register creates the account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.TokenPair, error) {
	in.Email = NormalizeEmail(in.Email)
	in.NIN = strings.TrimSpace(in.NIN)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := domain.User{
		ID:            idx.NewAt(now).String(),
		Email:         in.Email,
		NIN:           in.NIN,
		FullName:      strings.TrimSpace(in.FullName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		PasswordHash:  hash,
		WalletBalance: s.StartingBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		pair, err = s.issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID))
	return pair, nil
}

// Login checks the password and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		pair, err = s.issue(ctx, tx, u, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked and replaced, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	if refreshOpaque == "" {
		return nil, ErrInvalidRefresh
	}
	now := s.now()
	fp := cryptox.FingerprintToken(refreshOpaque)

	var pair *domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if rt.Revoked || !now.Before(rt.ExpiresAt) {
			return ErrInvalidRefresh
		}

		u, err := tx.Users().GetUserByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		pair, err = s.issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Debug("refresh token rotated")
	return pair, nil
}

// Logout revokes every refresh token the user holds. Access tokens already
// issued stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	escrows, err := s.Store.Escrows().ListByParty(ctx, u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: u}
	for _, e := range escrows {
		if e.Status == domain.EscrowPending {
			p.PendingTransactions++
		}
	}
	return p, nil
}

type UpdateProfileInput struct {
	FullName    string
	PhoneNumber string
}

// UpdateProfile replaces the user's display details.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.FullName == "" {
		return nil, invalid("full_name", "required")
	}
	if in.PhoneNumber == "" {
		return nil, invalid("phone_number", "required")
	}

	err := s.Store.Users().UpdateProfile(ctx, userID, in.FullName, in.PhoneNumber, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// ChangePassword replaces the password after checking the current one.
// Existing sessions are left signed in.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return invalid("newPassword", "must be at least 6 characters")
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Hasher.Verify(current, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return invalid("currentPassword", "incorrect password")
		}
		return err
	}

	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash, s.now()); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed")
	return nil
}

// issue signs an access token for u and stores a new refresh token via tx.
func (s *AuthService) issue(ctx context.Context, tx store.Store, u domain.User, now time.Time) (*domain.TokenPair, error) {
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	access, err := s.Signer.Sign(jwtx.NewAccessClaims(u.ID, u.Email, s.Issuer, ttl, now))
	if err != nil {
		return nil, err
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	refreshTTL := s.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	rt := domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(refreshTTL),
		CreatedAt: now,
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    ttl,
	}, nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
