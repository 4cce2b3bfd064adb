package session

import (
	"log/slog"
	"time"

	"github.com/safescrow/dashboard/pkg/slogx"
	"github.com/safescrow/dashboard/pkg/tokenx"
)

// CollisionPolicy decides what a refresh caller gets when another refresh is
// already in flight.
type CollisionPolicy int

const (
	// JoinInFlight makes overlapping callers wait for the running refresh and
	// return its outcome.
	JoinInFlight CollisionPolicy = iota

	// RejectConcurrent returns false to overlapping callers at once, without
	// touching the network or the store.
	RejectConcurrent
)

const (
	DefaultRefreshTimeout = 15 * time.Second
	DefaultLogoutTimeout  = 5 * time.Second
)

type options struct {
	logger         *slog.Logger
	skew           time.Duration
	leadTime       time.Duration
	policy         CollisionPolicy
	refreshTimeout time.Duration
	logoutTimeout  time.Duration
	now            func() time.Time
	listeners      []func(State)
}

func defaultOptions() options {
	return options{
		logger:         slogx.Discard(),
		skew:           tokenx.DefaultSkew,
		leadTime:       tokenx.DefaultLeadTime,
		policy:         JoinInFlight,
		refreshTimeout: DefaultRefreshTimeout,
		logoutTimeout:  DefaultLogoutTimeout,
		now:            time.Now,
	}
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSkew sets how close to expiry a stored token may be and still be used
// without renewing it first.
func WithSkew(d time.Duration) Option {
	return func(o *options) { o.skew = d }
}

// WithLeadTime sets how long before expiry the scheduled refresh fires.
func WithLeadTime(d time.Duration) Option {
	return func(o *options) { o.leadTime = d }
}

func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithRefreshTimeout bounds a single renewal, including the store writes.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

// WithLogoutTimeout bounds the background logout notification.
func WithLogoutTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.logoutTimeout = d
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStateListener registers fn to be called after every state transition.
// Listeners run on the goroutine that caused the transition, never under the
// manager's lock, and are not called once the manager is closed.
func WithStateListener(fn func(State)) Option {
	return func(o *options) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}
