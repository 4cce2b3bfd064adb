// Package credstore persists the two credentials a session is built on: the
// short-lived access token and the longer-lived refresh token.
//
// Drivers live in sub-packages (sqlite, redis). Memory is provided here for
// tests and for processes that do not need the session to outlive them.
package credstore

import (
	"context"
	"errors"
)

// Slot names. Drivers that store credentials as key/value pairs use these.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

var ErrEmptyAccessToken = errors.New("credstore: empty access token")

// Credentials is a snapshot of both slots. Empty strings mean "not stored".
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// HasAccess reports whether an access token is stored.
func (c Credentials) HasAccess() bool { return c.AccessToken != "" }

// HasRefresh reports whether a refresh token is stored.
func (c Credentials) HasRefresh() bool { return c.RefreshToken != "" }

// Store is the durable home of the session credentials.
type Store interface {
	// Save writes the access token and, when refresh is non-empty, the refresh
	// token. An empty refresh leaves the stored refresh token untouched since
	// some renewal responses keep it stable.
	Save(ctx context.Context, access, refresh string) error

	// Load returns whatever is stored. Missing slots come back empty, not as
	// an error.
	Load(ctx context.Context) (Credentials, error)

	// Clear removes both slots. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
