// Package tokenx reads claims out of bearer tokens without verifying them.
//
// Everything here is a scheduling hint for the client: the signature is never
// checked, so nothing returned by this package may be used to decide whether a
// caller is allowed to do something. The backend remains the only authority.
package tokenx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSkew is the lookahead used by IsLikelyValid. A token expiring
	// within this window is treated as already expired so a request is never
	// raced against the expiry instant.
	DefaultSkew = 2 * time.Minute

	// DefaultLeadTime is how long before expiry a scheduled refresh fires.
	DefaultLeadTime = 5 * time.Minute
)

var parser = jwt.NewParser()

// claims parses the payload segment of token. The second return is false for
// anything that is not a three-segment JWT with a JSON payload.
func claims(token string) (*jwt.RegisteredClaims, bool) {
	if token == "" {
		return nil, false
	}

	var c jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &c); err != nil {
		return nil, false
	}
	return &c, true
}

// DecodeExpiry returns the "exp" claim of token. A malformed token or one
// without an expiry yields false rather than an error.
func DecodeExpiry(token string) (time.Time, bool) {
	c, ok := claims(token)
	if !ok || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// IsLikelyValid reports whether token expires after now+skew. It returns
// false when the expiry cannot be decoded.
func IsLikelyValid(token string, skew time.Duration, now time.Time) bool {
	exp, ok := DecodeExpiry(token)
	if !ok {
		return false
	}
	return exp.After(now.Add(skew))
}

// Subject returns the "sub" claim, or "" if there is none. Used for log
// attributes only.
func Subject(token string) string {
	c, ok := claims(token)
	if !ok {
		return ""
	}
	return c.Subject
}
