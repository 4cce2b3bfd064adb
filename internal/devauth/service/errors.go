package service

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrEmailTaken         = errors.New("email_taken")
	ErrUserNotFound       = errors.New("user_not_found")

	ErrEscrowNotFound    = errors.New("escrow_not_found")
	ErrNotEscrowSender   = errors.New("not_escrow_sender")
	ErrEscrowNotPending  = errors.New("escrow_not_pending")
	ErrInsufficientFunds = errors.New("insufficient_funds")
)

// ValidationError names the request field that failed validation. It matches
// ErrInvalidRequest under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
