package domain

import "time"

type EscrowStatus string

const (
	EscrowPending   EscrowStatus = "pending"
	EscrowReleased  EscrowStatus = "released"
	EscrowCancelled EscrowStatus = "cancelled"
)

// Escrow holds Amount (minor units) from the sender's wallet until the sender
// releases it to the recipient or cancels it.
type Escrow struct {
	ID             string
	SenderID       string
	SenderEmail    string
	RecipientEmail string
	Amount         int64
	Description    string
	Conditions     string
	Status         EscrowStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Involves reports whether the user with the given id and email is a party to
// the escrow.
func (e Escrow) Involves(userID, email string) bool {
	return e.SenderID == userID || e.RecipientEmail == email
}
