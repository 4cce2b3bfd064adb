package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/safescrow/dashboard/internal/devauth/domain"
	"github.com/safescrow/dashboard/internal/devauth/store"
	"github.com/safescrow/dashboard/pkg/idx"
	"github.com/safescrow/dashboard/pkg/slogx"
)

// UpdateEscrowInput carries the terms to change. Nil fields are left as they are.
type UpdateEscrowInput struct {
	Description *string
	Conditions  *string
}

type CreateEscrowInput struct {
	Amount         int64 // minor units
	RecipientEmail string
	Description    string
	Conditions     string
}

// EscrowService moves funds between a sender's wallet and escrow balances.
// Every state change and its balance movement commit together.
type EscrowService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// Create locks in.Amount from the sender's wallet in a new pending escrow.
func (s *EscrowService) Create(ctx context.Context, senderID string, in CreateEscrowInput) (domain.Escrow, error) {
	in.RecipientEmail = NormalizeEmail(in.RecipientEmail)
	if in.Amount <= 0 {
		return domain.Escrow{}, invalid("amount", "must be positive")
	}
	if err := validateEmail("recipientEmail", in.RecipientEmail); err != nil {
		return domain.Escrow{}, err
	}

	now := s.now()
	var e domain.Escrow
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		sender, err := s.user(ctx, tx, senderID)
		if err != nil {
			return err
		}
		if sender.Email == in.RecipientEmail {
			return invalid("recipientEmail", "cannot be your own address")
		}
		if sender.WalletBalance < in.Amount {
			return ErrInsufficientFunds
		}

		err = tx.Users().UpdateBalances(ctx, sender.ID,
			sender.WalletBalance-in.Amount, sender.EscrowBalance+in.Amount, now)
		if err != nil {
			return err
		}

		e = domain.Escrow{
			ID:             idx.NewAt(now).String(),
			SenderID:       sender.ID,
			SenderEmail:    sender.Email,
			RecipientEmail: in.RecipientEmail,
			Amount:         in.Amount,
			Description:    strings.TrimSpace(in.Description),
			Conditions:     strings.TrimSpace(in.Conditions),
			Status:         domain.EscrowPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return tx.Escrows().CreateEscrow(ctx, e)
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	slogx.FromContext(ctx).Info("escrow created",
		slog.String("escrow_id", e.ID),
		slog.Int64("amount", e.Amount),
	)
	return e, nil
}

// List returns the escrows the user created, newest first.
func (s *EscrowService) List(ctx context.Context, userID string) ([]domain.Escrow, error) {
	return s.Store.Escrows().ListBySender(ctx, userID)
}

// UserEscrows returns every escrow the user sends or receives, newest first.
func (s *EscrowService) UserEscrows(ctx context.Context, userID string) ([]domain.Escrow, error) {
	u, err := s.user(ctx, s.Store, userID)
	if err != nil {
		return nil, err
	}
	return s.Store.Escrows().ListByParty(ctx, u.ID, u.Email)
}

// Get returns the escrow if the user is a party to it. Escrows belonging to
// other users are reported as not found.
func (s *EscrowService) Get(ctx context.Context, userID, escrowID string) (domain.Escrow, error) {
	u, err := s.user(ctx, s.Store, userID)
	if err != nil {
		return domain.Escrow{}, err
	}
	e, err := s.escrow(ctx, s.Store, escrowID)
	if err != nil {
		return domain.Escrow{}, err
	}
	if !e.Involves(u.ID, u.Email) {
		return domain.Escrow{}, ErrEscrowNotFound
	}
	return e, nil
}

// Update changes the terms of a pending escrow. Only the sender may edit it,
// and the amount and recipient are fixed once funds are locked.
func (s *EscrowService) Update(ctx context.Context, userID, escrowID string, in UpdateEscrowInput) (domain.Escrow, error) {
	now := s.now()
	var e domain.Escrow
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		var err error
		e, err = s.senderEscrow(ctx, tx, userID, escrowID)
		if err != nil {
			return err
		}
		if e.Status != domain.EscrowPending {
			return ErrEscrowNotPending
		}

		if in.Description != nil {
			e.Description = strings.TrimSpace(*in.Description)
		}
		if in.Conditions != nil {
			e.Conditions = strings.TrimSpace(*in.Conditions)
		}
		if err := tx.Escrows().UpdateEscrowTerms(ctx, e.ID, e.Description, e.Conditions, now); err != nil {
			return err
		}
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	slogx.FromContext(ctx).Info("escrow updated", slog.String("escrow_id", e.ID))
	return e, nil
}

// Release pays a pending escrow out to its recipient. Funds for a recipient
// without an account leave the system.
func (s *EscrowService) Release(ctx context.Context, userID, escrowID string) (domain.Escrow, error) {
	return s.settle(ctx, userID, escrowID, domain.EscrowReleased)
}

// Cancel returns a pending escrow's funds to the sender's wallet.
func (s *EscrowService) Cancel(ctx context.Context, userID, escrowID string) (domain.Escrow, error) {
	return s.settle(ctx, userID, escrowID, domain.EscrowCancelled)
}

func (s *EscrowService) settle(ctx context.Context, userID, escrowID string, to domain.EscrowStatus) (domain.Escrow, error) {
	now := s.now()
	var e domain.Escrow
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		sender, err := s.user(ctx, tx, userID)
		if err != nil {
			return err
		}
		e, err = s.senderEscrow(ctx, tx, userID, escrowID)
		if err != nil {
			return err
		}
		if e.Status != domain.EscrowPending {
			return ErrEscrowNotPending
		}

		wallet := sender.WalletBalance
		if to == domain.EscrowCancelled {
			wallet += e.Amount
		}
		if err := tx.Users().UpdateBalances(ctx, sender.ID, wallet, sender.EscrowBalance-e.Amount, now); err != nil {
			return err
		}

		if to == domain.EscrowReleased {
			if err := s.credit(ctx, tx, e.RecipientEmail, e.Amount, now); err != nil {
				return err
			}
		}

		if err := tx.Escrows().UpdateEscrowStatus(ctx, e.ID, to, now); err != nil {
			return err
		}
		e.Status = to
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Escrow{}, err
	}

	slogx.FromContext(ctx).Info("escrow settled",
		slog.String("escrow_id", e.ID),
		slog.String("status", string(to)),
	)
	return e, nil
}

// credit adds amount to the wallet of the account registered under email,
// if there is one.
func (s *EscrowService) credit(ctx context.Context, tx store.Store, email string, amount int64, now time.Time) error {
	u, err := tx.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Users().UpdateBalances(ctx, u.ID, u.WalletBalance+amount, u.EscrowBalance, now)
}

func (s *EscrowService) user(ctx context.Context, st store.Store, id string) (domain.User, error) {
	u, err := st.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// senderEscrow loads an escrow the user sent. Other parties get
// ErrNotEscrowSender and strangers ErrEscrowNotFound.
func (s *EscrowService) senderEscrow(ctx context.Context, tx store.Store, userID, escrowID string) (domain.Escrow, error) {
	u, err := s.user(ctx, tx, userID)
	if err != nil {
		return domain.Escrow{}, err
	}
	e, err := s.escrow(ctx, tx, escrowID)
	if err != nil {
		return domain.Escrow{}, err
	}
	if e.SenderID != u.ID {
		if e.Involves(u.ID, u.Email) {
			return domain.Escrow{}, ErrNotEscrowSender
		}
		return domain.Escrow{}, ErrEscrowNotFound
	}
	return e, nil
}

func (s *EscrowService) escrow(ctx context.Context, st store.Store, id string) (domain.Escrow, error) {
	e, err := st.Escrows().GetEscrowByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Escrow{}, ErrEscrowNotFound
	}
	return e, err
}

func (s *EscrowService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
