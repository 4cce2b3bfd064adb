package domain

import "time"

// TokenPair is what login, register and refresh hand back: a short-lived
// signed access token and an opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// RefreshToken is the stored record of an issued refresh token. The opaque
// value itself is never stored, only its fingerprint.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
