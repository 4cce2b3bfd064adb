package sqlite

import (
	"context"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/domain"
)

type escrowsRepo struct {
	q querier
}

const escrowColumns = `id, sender_id, sender_email, recipient_email, amount,
	description, conditions, status, created_at, updated_at`

func (r *escrowsRepo) CreateEscrow(ctx context.Context, e domain.Escrow) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO escrows (`+escrowColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SenderID, e.SenderEmail, e.RecipientEmail, e.Amount,
		e.Description, e.Conditions, string(e.Status), toUnix(e.CreatedAt), toUnix(e.UpdatedAt),
	)
	return mapConflict(err)
}

func (r *escrowsRepo) GetEscrowByID(ctx context.Context, id string) (domain.Escrow, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+escrowColumns+` FROM escrows WHERE id = ?`, id)
	return scanEscrow(row)
}

func (r *escrowsRepo) UpdateEscrowStatus(ctx context.Context, id string, status domain.EscrowStatus, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE escrows SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toUnix(now), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *escrowsRepo) UpdateEscrowTerms(ctx context.Context, id, description, conditions string, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE escrows SET description = ?, conditions = ?, updated_at = ? WHERE id = ?`,
		description, conditions, toUnix(now), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *escrowsRepo) ListBySender(ctx context.Context, senderID string) ([]domain.Escrow, error) {
	return r.list(ctx, `SELECT `+escrowColumns+` FROM escrows
		WHERE sender_id = ? ORDER BY created_at DESC, id DESC`, senderID)
}

func (r *escrowsRepo) ListByParty(ctx context.Context, userID, email string) ([]domain.Escrow, error) {
	return r.list(ctx, `SELECT `+escrowColumns+` FROM escrows
		WHERE sender_id = ? OR recipient_email = ? ORDER BY created_at DESC, id DESC`, userID, email)
}

func (r *escrowsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Escrow, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Escrow{}
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEscrow(row rowScanner) (domain.Escrow, error) {
	var (
		e                    domain.Escrow
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&e.ID, &e.SenderID, &e.SenderEmail, &e.RecipientEmail, &e.Amount,
		&e.Description, &e.Conditions, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Escrow{}, mapNotFound(err)
	}
	e.Status = domain.EscrowStatus(status)
	e.CreatedAt = fromUnix(createdAt)
	e.UpdatedAt = fromUnix(updatedAt)
	return e, nil
}
