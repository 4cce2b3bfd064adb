package jwtx

import (
	"crypto/ed25519"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySet maps key IDs to Ed25519 public keys. Reads never block: Add swaps
// in a new map.
type KeySet struct {
	keys atomic.Pointer[map[string]ed25519.PublicKey]
}

func NewKeySet() *KeySet {
	k := &KeySet{}
	k.keys.Store(&map[string]ed25519.PublicKey{})
	return k
}

// AddSigner trusts the public half of s.
func (k *KeySet) AddSigner(s *EdDSASigner) { k.Add(s.kid, s.pub) }

func (k *KeySet) Add(kid string, pub ed25519.PublicKey) {
	for {
		old := k.keys.Load()
		next := maps.Clone(*old)
		next[kid] = pub
		if k.keys.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	if pub, ok := (*k.keys.Load())[kid]; ok {
		return pub, nil
	}
	return nil, ErrNoKey
}

// EdDSASigner signs access tokens and stamps them with its key ID.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewSignerEdDSA loads a PKCS8 PEM encoded Ed25519 private key.
func NewSignerEdDSA(kid string, pemKey []byte) (*EdDSASigner, error) {
	priv, err := jwt.ParseEdPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: load Ed25519 PKCS8 key: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: load Ed25519 PKCS8 key: got %T", priv)
	}
	return &EdDSASigner{kid: kid, key: key, pub: key.Public().(ed25519.PublicKey)}, nil
}

func (s *EdDSASigner) KID() string                  { return s.kid }
func (s *EdDSASigner) PublicKey() ed25519.PublicKey { return s.pub }

func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// EdDSAVerifier accepts tokens signed by any key in its KeySet. An empty
// issuer accepts any iss.
type EdDSAVerifier struct {
	keys   *KeySet
	parser *jwt.Parser
}

func NewVerifierEdDSA(keys *KeySet, issuer string, leeway time.Duration) *EdDSAVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &EdDSAVerifier{keys: keys, parser: jwt.NewParser(opts...)}
}

func (v *EdDSAVerifier) Verify(raw string) (Claims, error) {
	var claims Claims
	if _, err := v.parser.ParseWithClaims(raw, &claims, v.keyFor); err != nil {
		return Claims{}, classify(err)
	}
	return claims, nil
}

func (v *EdDSAVerifier) keyFor(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}
	return pub, nil
}
