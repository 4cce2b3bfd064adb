package authapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths relative to BaseURL.
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathRefresh  = "/auth/refresh"
	PathProfile  = "/auth/profile"
	PathLogout   = "/auth/logout"
)

// ErrMissingAccessToken is returned when a token response carries no access token.
var ErrMissingAccessToken = errors.New("authapi: response has no access_token")

// Client calls the authentication endpoints. It is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges email and password for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	return c.requestToken(ctx, PathLogin, req)
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	return c.requestToken(ctx, PathRegister, req)
}

// Refresh mints a new access token (and possibly a new refresh token). Any
// non-2xx answer means the refresh token is no longer usable.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, PathRefresh, RefreshRequest{RefreshToken: refreshToken})
}

// Profile fetches the user behind accessToken.
func (c *Client) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, PathProfile, accessToken, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Logout tells the backend the session is over. Callers treat this as
// best-effort.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doJSON(ctx, http.MethodPost, PathLogout, accessToken, nil, nil)
}

func (c *Client) requestToken(ctx context.Context, path string, body any) (*TokenResponse, error) {
	var tokens TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, path, "", body, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	return &tokens, nil
}
