package sqlite

import (
	"context"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/domain"
	"github.com/safescrow/dashboard/internal/devauth/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, nin, full_name, phone_number, password_hash,
	wallet_balance, escrow_balance, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.NIN, u.FullName, u.PhoneNumber, u.PasswordHash,
		u.WalletBalance, u.EscrowBalance, toUnix(u.CreatedAt), toUnix(u.UpdatedAt),
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdateBalances(ctx context.Context, userID string, wallet, escrow int64, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET wallet_balance = ?, escrow_balance = ?, updated_at = ?
		WHERE id = ?`,
		wallet, escrow, toUnix(now), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, fullName, phoneNumber string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET full_name = ?, phone_number = ?, updated_at = ?
		WHERE id = ?`,
		fullName, phoneNumber, toUnix(now), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, toUnix(now), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.NIN, &u.FullName, &u.PhoneNumber, &u.PasswordHash,
		&u.WalletBalance, &u.EscrowBalance, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = fromUnix(createdAt)
	u.UpdatedAt = fromUnix(updatedAt)
	return u, nil
}

// requireRow reports store.ErrNotFound when an UPDATE matched nothing.
func requireRow(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
