package domain

import "time"

type User struct {
	ID           string
	Email        string // stored lower-cased
	NIN          string
	FullName     string
	PhoneNumber  string
	PasswordHash string // argon2id PHC string

	// Balances are in minor units (kobo).
	WalletBalance int64
	EscrowBalance int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
