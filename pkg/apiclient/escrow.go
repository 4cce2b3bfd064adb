package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

type EscrowStatus string

const (
	EscrowPending   EscrowStatus = "pending"
	EscrowReleased  EscrowStatus = "released"
	EscrowCancelled EscrowStatus = "cancelled"
)

// Escrow is a payment held by the platform until the sender releases it to
// the recipient or cancels it. Amount is in the account currency's major unit
// as sent by the backend.
type Escrow struct {
	ID             string       `json:"id"`
	Amount         float64      `json:"amount"`
	SenderEmail    string       `json:"sender_email"`
	RecipientEmail string       `json:"recipientEmail"`
	Description    string       `json:"description"`
	Conditions     string       `json:"conditions"`
	Status         EscrowStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// CreateEscrowRequest is the body of POST /escrow.
type CreateEscrowRequest struct {
	Amount         float64 `json:"amount"`
	RecipientEmail string  `json:"recipientEmail"`
	Description    string  `json:"description"`
	Conditions     string  `json:"conditions"`
}

// UpdateEscrowRequest is the body of PUT /escrow/{id}. Omitted fields keep
// their current value.
type UpdateEscrowRequest struct {
	Description *string `json:"description,omitempty"`
	Conditions  *string `json:"conditions,omitempty"`
}

var ErrInvalidEscrow = errors.New("apiclient: amount must be positive and recipient set")

func (r CreateEscrowRequest) Validate() error {
	if r.Amount <= 0 || r.RecipientEmail == "" {
		return ErrInvalidEscrow
	}
	return nil
}

// ListEscrows returns the escrows the user created.
func (c *Client) ListEscrows(ctx context.Context) ([]Escrow, error) {
	var out []Escrow
	if err := c.do(ctx, http.MethodGet, "/escrow", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEscrow(ctx context.Context, id string) (*Escrow, error) {
	var out Escrow
	if err := c.do(ctx, http.MethodGet, escrowPath(id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateEscrow(ctx context.Context, req CreateEscrowRequest) (*Escrow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out Escrow
	if err := c.do(ctx, http.MethodPost, "/escrow", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEscrow edits the terms of a pending escrow the user sent.
func (c *Client) UpdateEscrow(ctx context.Context, id string, req UpdateEscrowRequest) (*Escrow, error) {
	var out Escrow
	if err := c.do(ctx, http.MethodPut, escrowPath(id, ""), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleaseEscrow pays a pending escrow out to its recipient.
func (c *Client) ReleaseEscrow(ctx context.Context, id string) (*Escrow, error) {
	var out Escrow
	if err := c.do(ctx, http.MethodPost, escrowPath(id, "release"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelEscrow returns a pending escrow's funds to the sender.
func (c *Client) CancelEscrow(ctx context.Context, id string) (*Escrow, error) {
	var out Escrow
	if err := c.do(ctx, http.MethodPost, escrowPath(id, "cancel"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserEscrows returns the escrows the user sent or receives.
func (c *Client) UserEscrows(ctx context.Context) ([]Escrow, error) {
	var out []Escrow
	if err := c.do(ctx, http.MethodGet, "/user/escrows", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func escrowPath(id, action string) string {
	p := "/escrow/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}
