package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/internal/devauth/domain"
	"github.com/safescrow/dashboard/internal/devauth/service"
	"github.com/safescrow/dashboard/internal/devauth/store/drivers/sqlite"
	"github.com/safescrow/dashboard/pkg/cryptox"
	"github.com/safescrow/dashboard/pkg/jwtx"
)

const (
	testIssuer      = "https://devauth.test"
	startingBalance = 1_000_000
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store    *sqlite.Store
	clock    *clock
	auth     *service.AuthService
	escrows  *service.EscrowService
	verifier jwtx.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	clk := &clock{now: time.Now().UTC().Truncate(time.Second)}
	return &fixture{
		store: st,
		clock: clk,
		auth: &service.AuthService{
			Store:           st,
			Hasher:          cryptox.NewHasher("pepper"),
			Signer:          signer,
			Issuer:          testIssuer,
			AccessTTL:       15 * time.Minute,
			RefreshTTL:      time.Hour,
			StartingBalance: startingBalance,
			Now:             clk.Now,
		},
		escrows:  &service.EscrowService{Store: st, Now: clk.Now},
		verifier: jwtx.NewVerifierEdDSA(keys, testIssuer, time.Minute),
	}
}

func registration(email string) service.RegisterInput {
	return service.RegisterInput{
		Email:       email,
		NIN:         "12345678901",
		Password:    "hunter22",
		Password2:   "hunter22",
		FullName:    "Ada Obi",
		PhoneNumber: "+2348000000000",
	}
}

// register creates an account and returns its id and tokens.
func (f *fixture) register(t *testing.T, email string) (string, *domain.TokenPair) {
	t.Helper()

	pair, err := f.auth.Register(context.Background(), registration(email))
	require.NoError(t, err)
	claims, err := f.verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	return claims.Subject, pair
}
