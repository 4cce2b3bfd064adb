package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/safescrow/dashboard/pkg/authapi"
)

const DefaultTimeout = 30 * time.Second

// Client is an authenticated client for the escrow endpoints. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

type config struct {
	base    http.RoundTripper
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*config)

// WithBaseTransport sets the transport that actually sends requests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *config) { c.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func New(baseURL string, tokens TokenSource, hooks AuthHooks, opts ...Option) *Client {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: cfg.timeout,
			Transport: &Transport{
				Base:   cfg.base,
				Tokens: tokens,
				Hooks:  hooks,
				Logger: cfg.logger,
			},
		},
	}
}

// HTTPClient exposes the underlying client for endpoints this package does
// not wrap.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return authapi.DecodeJSON(resp, out)
}
