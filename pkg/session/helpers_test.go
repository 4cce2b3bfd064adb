package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/pkg/authapi"
)

var errRejected = &authapi.APIError{StatusCode: 401, Code: authapi.ErrorCodeInvalidToken, Message: "token rejected"}

// mintToken returns an HS256 token expiring at exp. The signature is never
// checked by this package.
func mintToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// fakeAPI records calls and answers from the configured funcs.
type fakeAPI struct {
	login    func(ctx context.Context, req authapi.LoginRequest) (*authapi.TokenResponse, error)
	register func(ctx context.Context, req authapi.RegisterRequest) (*authapi.TokenResponse, error)
	refresh  func(ctx context.Context, refreshToken string) (*authapi.TokenResponse, error)
	profile  func(ctx context.Context, accessToken string) (*authapi.Profile, error)

	refreshCalls atomic.Int32
	profileCalls atomic.Int32

	mu        sync.Mutex
	loggedOut []string
	logoutErr error
}

func (f *fakeAPI) Login(ctx context.Context, req authapi.LoginRequest) (*authapi.TokenResponse, error) {
	if f.login == nil {
		return nil, errors.New("login not configured")
	}
	return f.login(ctx, req)
}

func (f *fakeAPI) Register(ctx context.Context, req authapi.RegisterRequest) (*authapi.TokenResponse, error) {
	if f.register == nil {
		return nil, errors.New("register not configured")
	}
	return f.register(ctx, req)
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*authapi.TokenResponse, error) {
	f.refreshCalls.Add(1)
	if f.refresh == nil {
		return nil, errRejected
	}
	return f.refresh(ctx, refreshToken)
}

func (f *fakeAPI) Profile(ctx context.Context, accessToken string) (*authapi.Profile, error) {
	f.profileCalls.Add(1)
	if f.profile == nil {
		return &authapi.Profile{ID: "user-1", Email: "ada@example.com"}, nil
	}
	return f.profile(ctx, accessToken)
}

func (f *fakeAPI) Logout(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, accessToken)
	return f.logoutErr
}

func (f *fakeAPI) logouts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loggedOut...)
}

// stateRecorder collects every state a manager publishes.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}
