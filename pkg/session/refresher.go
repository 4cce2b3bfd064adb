package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/safescrow/dashboard/pkg/credstore"
)

const flightKey = "refresh"

// refresher renews the token pair. At most one renewal talks to the backend
// at a time; what overlapping callers get depends on the collision policy.
type refresher struct {
	api     AuthAPI
	store   credstore.Store
	policy  CollisionPolicy
	timeout time.Duration
	logger  *slog.Logger

	// epoch names the session a renewal starts in. commit persists the
	// result and reports false when that session has ended meanwhile; fail
	// ends it unless it already ended.
	epoch  func() uint64
	commit func(ctx context.Context, epoch uint64, access, refresh string) (bool, error)
	fail   func(ctx context.Context, epoch uint64)

	group    singleflight.Group
	inFlight atomic.Bool
}

// Refresh reports whether the stored tokens were renewed by this call (or, with
// JoinInFlight, by the renewal it joined). If ctx ends first the caller stops
// waiting and gets false; the renewal itself keeps running.
func (r *refresher) Refresh(ctx context.Context) bool {
	if r.policy == RejectConcurrent {
		if !r.inFlight.CompareAndSwap(false, true) {
			r.logger.Debug("refresh already in flight, rejecting caller")
			return false
		}
		defer r.inFlight.Store(false)
		return r.renew(context.WithoutCancel(ctx))
	}

	ch := r.group.DoChan(flightKey, func() (any, error) {
		r.inFlight.Store(true)
		defer r.inFlight.Store(false)
		return r.renew(context.WithoutCancel(ctx)), nil
	})

	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		if res.Shared {
			r.logger.Debug("joined in-flight refresh", "ok", ok)
		}
		return ok
	case <-ctx.Done():
		return false
	}
}

// InFlight reports whether a renewal is running.
func (r *refresher) InFlight() bool {
	return r.inFlight.Load()
}

func (r *refresher) renew(parent context.Context) bool {
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	epoch := r.epoch()

	creds, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("refresh: failed to load credentials", "error", err)
		r.fail(parent, epoch)
		return false
	}
	if !creds.HasRefresh() {
		r.logger.Info("refresh: no refresh token stored")
		r.fail(parent, epoch)
		return false
	}

	tokens, err := r.api.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		r.logger.Info("refresh: rejected", "error", err)
		r.fail(parent, epoch)
		return false
	}

	committed, err := r.commit(ctx, epoch, tokens.AccessToken, tokens.RefreshToken)
	if err != nil {
		r.logger.Error("refresh: failed to persist tokens", "error", err)
		r.fail(parent, epoch)
		return false
	}
	if !committed {
		r.logger.Info("refresh: session ended during renewal, discarding tokens")
		return false
	}

	r.logger.Debug("refresh: tokens renewed", "rotated", tokens.RefreshToken != "")
	return true
}
