// Package apiclient calls the escrow backend on behalf of a signed-in user.
//
// Requests go through Transport, which attaches the current access token and,
// when the backend answers 401, renews the session and replays the request
// once. Both the token source and the renewal hooks are injected; a
// *session.Manager provides both.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/safescrow/dashboard/pkg/idx"
	"github.com/safescrow/dashboard/pkg/slogx"
)

// ErrBodyNotReplayable is logged when a request that got a 401 cannot be sent
// again because its body cannot be rewound.
var ErrBodyNotReplayable = errors.New("apiclient: request body cannot be replayed")

// TokenSource yields the access token to attach to a request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// AuthHooks is how the transport asks the session layer to renew tokens or to
// give up on the session.
type AuthHooks interface {
	RefreshToken(ctx context.Context) bool
	HandleAuthFailure(ctx context.Context)
}

// Transport is an http.RoundTripper that authenticates requests and retries a
// 401 exactly once after a successful refresh. When the refresh fails the
// failure hook runs and the caller gets the original 401 response. A request
// whose context ends while it waits for the refresh gets the context error
// and leaves the session alone.
type Transport struct {
	Base   http.RoundTripper
	Tokens TokenSource
	Hooks  AuthHooks
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	requestID := req.Header.Get(slogx.RequestIDHeader)
	if requestID == "" {
		requestID = idx.New().String()
	}

	resp, err := t.base().RoundTrip(t.authorize(req, requestID, t.token(ctx)))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	log := t.logger().With("request_id", requestID, "method", req.Method, "path", req.URL.Path)

	if !t.Hooks.RefreshToken(ctx) {
		// The caller gave up waiting; the renewal may still succeed.
		if err := ctx.Err(); err != nil {
			drain(resp)
			log.Debug("request cancelled while waiting for refresh", "error", err)
			return nil, err
		}
		log.Info("request unauthorized and refresh failed")
		t.Hooks.HandleAuthFailure(ctx)
		return resp, nil
	}

	retry, err := rewind(req)
	if err != nil {
		log.Warn("cannot retry request", "error", err)
		t.Hooks.HandleAuthFailure(ctx)
		return resp, nil
	}

	token := t.token(ctx)
	if token == "" {
		log.Info("no access token after refresh")
		t.Hooks.HandleAuthFailure(ctx)
		return resp, nil
	}

	drain(resp)
	log.Debug("retrying request with renewed token")
	return t.base().RoundTrip(t.authorize(retry, requestID, token))
}

func (t *Transport) token(ctx context.Context) string {
	token, err := t.Tokens.AccessToken(ctx)
	if err != nil {
		t.logger().Debug("sending request without access token", "error", err)
		return ""
	}
	return token
}

// authorize returns a copy of req carrying the bearer token and request ID.
func (t *Transport) authorize(req *http.Request, requestID, token string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set(slogx.RequestIDHeader, requestID)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	} else {
		r.Header.Del("Authorization")
	}
	return r
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slogx.Discard()
}

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody == nil {
		return nil, ErrBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBodyNotReplayable, err)
	}
	r.Body = body
	return r, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
