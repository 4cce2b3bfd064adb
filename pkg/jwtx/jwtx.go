// Package jwtx issues and checks the EdDSA access tokens of the dev auth
// server.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/safescrow/dashboard/pkg/idx"
)

// DefaultAccessTokenTTL is short on purpose: clients renew with their refresh
// token well before it runs out.
const DefaultAccessTokenTTL = 15 * time.Minute

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrNoKey       = errors.New("jwtx: key not found")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Claims carried by an access token. Subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
}

// NewAccessClaims returns claims for subject valid from now until now+ttl.
// Every token gets a fresh time-ordered jti.
func NewAccessClaims(subject, email, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.NewAt(now).String(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
}

// Verifier validates a signed token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// classify maps golang-jwt validation failures onto the package errors.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.Join(ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return errors.Join(errors.New("jwtx: verify"), err)
	}
}
