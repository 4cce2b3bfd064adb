package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/credstore"
	"github.com/safescrow/dashboard/pkg/tokenx"
)

var (
	// ErrProfileUnavailable is returned by Login and Register when the token
	// exchange worked but the profile could not be fetched. The tokens have
	// been removed again.
	ErrProfileUnavailable = errors.New("session: profile unavailable")

	// ErrNoSession means no access token is stored.
	ErrNoSession = errors.New("session: not signed in")

	// ErrSessionEnded is returned by Login and Register when the session was
	// ended (logout, auth failure, another sign-in) before they completed.
	ErrSessionEnded = errors.New("session: ended during sign-in")

	// ErrClosed is returned by operations on a closed manager.
	ErrClosed = errors.New("session: manager closed")
)

// AuthAPI is the slice of the auth backend the manager needs.
// *authapi.Client implements it.
type AuthAPI interface {
	Login(ctx context.Context, req authapi.LoginRequest) (*authapi.TokenResponse, error)
	Register(ctx context.Context, req authapi.RegisterRequest) (*authapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*authapi.TokenResponse, error)
	Profile(ctx context.Context, accessToken string) (*authapi.Profile, error)
	Logout(ctx context.Context, accessToken string) error
}

// Manager is the session context: it holds who is signed in, keeps their
// tokens fresh and tells listeners when that changes. It is safe for
// concurrent use.
type Manager struct {
	api    AuthAPI
	store  credstore.Store
	logger *slog.Logger
	opts   options

	sched     *Scheduler
	refresher *refresher

	mu          sync.RWMutex
	status      Status
	profile     *authapi.Profile
	loading     bool
	authPending int
	closed      bool

	// commitMu orders token writes against teardown. epoch is bumped under
	// it whenever a session ends or a new one is signed in.
	commitMu sync.Mutex
	epoch    uint64

	startOnce sync.Once
	startErr  error

	bg sync.WaitGroup
}

func New(api AuthAPI, store credstore.Store, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		api:     api,
		store:   store,
		logger:  o.logger.With("component", "session"),
		opts:    o,
		status:  StatusUninitialized,
		loading: true,
	}

	m.sched = NewScheduler(o.leadTime, m.scheduledRefresh)
	m.sched.now = o.now

	m.refresher = &refresher{
		api:     api,
		store:   store,
		policy:  o.policy,
		timeout: o.refreshTimeout,
		logger:  m.logger,
		epoch:   m.currentEpoch,
		commit:  m.commitRenewal,
		fail:    m.failRenewal,
	}

	return m
}

// Start restores a persisted session. It runs once; later calls return the
// first call's result. A nil error with IsAuthenticated false means there was
// nothing to restore or the stored tokens were rejected.
func (m *Manager) Start(ctx context.Context) error {
	m.startOnce.Do(func() {
		m.startErr = m.start(ctx)
	})
	return m.startErr
}

func (m *Manager) start(ctx context.Context) error {
	if !m.beginStart() {
		return ErrClosed
	}
	defer m.finishStart()

	creds, err := m.store.Load(ctx)
	if err != nil {
		m.settleStart(StatusUnauthenticated, nil, "")
		return fmt.Errorf("session: load credentials: %w", err)
	}
	if !creds.HasAccess() {
		m.settleStart(StatusUnauthenticated, nil, "")
		return nil
	}

	if tokenx.IsLikelyValid(creds.AccessToken, m.opts.skew, m.opts.now()) {
		profile, err := m.api.Profile(ctx, creds.AccessToken)
		if err == nil {
			m.settleStart(StatusAuthenticated, profile, creds.AccessToken)
			return nil
		}
		m.logger.Info("stored access token not accepted, refreshing", "error", err)
	}

	if m.isClosed() {
		return nil
	}
	if !m.refresher.Refresh(ctx) {
		m.settleStart(StatusUnauthenticated, nil, "")
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("session: start: %w", err)
		}
		return nil
	}

	creds, err = m.store.Load(ctx)
	if err != nil {
		m.HandleAuthFailure(ctx)
		return fmt.Errorf("session: load credentials: %w", err)
	}
	profile, err := m.api.Profile(ctx, creds.AccessToken)
	if err != nil {
		m.logger.Info("profile fetch failed after refresh", "error", err)
		m.HandleAuthFailure(ctx)
		return nil
	}
	m.settleStart(StatusAuthenticated, profile, creds.AccessToken)
	return nil
}

// Login exchanges credentials for a token pair, persists it and loads the
// profile. On failure the session is left as it was before the call, except
// that a partially stored token pair is removed.
func (m *Manager) Login(ctx context.Context, req authapi.LoginRequest) error {
	return m.signIn(ctx, "login", func(ctx context.Context) (*authapi.TokenResponse, error) {
		return m.api.Login(ctx, req)
	})
}

// Register creates the account and signs in with the returned tokens.
func (m *Manager) Register(ctx context.Context, req authapi.RegisterRequest) error {
	return m.signIn(ctx, "register", func(ctx context.Context) (*authapi.TokenResponse, error) {
		return m.api.Register(ctx, req)
	})
}

func (m *Manager) signIn(ctx context.Context, op string, exchange func(context.Context) (*authapi.TokenResponse, error)) error {
	if m.isClosed() {
		return ErrClosed
	}

	m.setAuthPending(1)
	defer m.setAuthPending(-1)

	tokens, err := exchange(ctx)
	if err != nil {
		return fmt.Errorf("session: %s: %w", op, err)
	}

	epoch, err := m.beginSession(ctx, tokens)
	if err != nil {
		return fmt.Errorf("session: %s: %w", op, err)
	}

	profile, err := m.api.Profile(ctx, tokens.AccessToken)
	if err != nil {
		m.commitMu.Lock()
		if m.epoch == epoch {
			if cerr := m.endSessionLocked(context.WithoutCancel(ctx)); cerr != nil {
				m.logger.Error("failed to roll back tokens", "op", op, "error", cerr)
			}
		}
		m.commitMu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrProfileUnavailable, op, err)
	}

	// Status and timer are set under commitMu, ordering this sign-in against
	// a concurrent logout.
	m.commitMu.Lock()
	if m.epoch != epoch {
		m.commitMu.Unlock()
		return fmt.Errorf("session: %s: %w", op, ErrSessionEnded)
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.commitMu.Unlock()
		return ErrClosed
	}
	m.status = StatusAuthenticated
	m.profile = profile
	st := m.snapshotLocked()
	m.mu.Unlock()
	m.sched.Schedule(tokens.AccessToken)
	m.commitMu.Unlock()

	m.notify(st)
	m.logger.Info("signed in", "op", op, "user_id", profile.ID)
	return nil
}

// beginSession starts a new epoch and stores the pair from a sign-in,
// replacing whatever an earlier session or a late renewal left behind.
func (m *Manager) beginSession(ctx context.Context, tokens *authapi.TokenResponse) (uint64, error) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	m.epoch++
	m.sched.Cancel()

	// A response without a refresh token must not inherit the previous
	// user's one.
	if tokens.RefreshToken == "" {
		if err := m.store.Clear(ctx); err != nil {
			return m.epoch, fmt.Errorf("clear credentials: %w", err)
		}
	}
	if err := m.store.Save(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return m.epoch, fmt.Errorf("persist tokens: %w", err)
	}
	return m.epoch, nil
}

// Logout ends the session locally and tells the backend in the background.
// The local state is cleared even if the store fails; that error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	creds, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("logout: failed to load credentials", "error", err)
	}

	m.commitMu.Lock()
	clearErr := m.endSessionLocked(ctx)
	m.commitMu.Unlock()
	m.transition(StatusUnauthenticated, nil)

	// Close has already waited for background work.
	if creds.HasAccess() && !m.isClosed() {
		m.notifyLogout(creds.AccessToken)
	}

	if clearErr != nil {
		return fmt.Errorf("session: logout: %w", clearErr)
	}
	m.logger.Info("signed out")
	return nil
}

func (m *Manager) notifyLogout(accessToken string) {
	m.bg.Add(1)
	go func() {
		defer m.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.opts.logoutTimeout)
		defer cancel()

		if err := m.api.Logout(ctx, accessToken); err != nil {
			m.logger.Debug("logout notification failed", "error", err)
		}
	}()
}

// RefreshToken renews the token pair. See CollisionPolicy for what a false
// result means when renewals overlap.
func (m *Manager) RefreshToken(ctx context.Context) bool {
	return m.refresher.Refresh(ctx)
}

// HandleAuthFailure ends the session after the backend refused our tokens.
// The stored tokens are always removed; the visible state only changes while
// the manager is open.
func (m *Manager) HandleAuthFailure(ctx context.Context) {
	m.commitMu.Lock()
	err := m.endSessionLocked(context.WithoutCancel(ctx))
	m.commitMu.Unlock()
	m.afterAuthFailure(err)
}

// failRenewal ends the session a failed renewal belonged to. A session that
// already ended, or was replaced by a new sign-in, is left alone.
func (m *Manager) failRenewal(ctx context.Context, epoch uint64) {
	m.commitMu.Lock()
	if m.epoch != epoch {
		m.commitMu.Unlock()
		m.logger.Debug("ignoring failed renewal from an ended session")
		return
	}
	err := m.endSessionLocked(context.WithoutCancel(ctx))
	m.commitMu.Unlock()
	m.afterAuthFailure(err)
}

func (m *Manager) afterAuthFailure(clearErr error) {
	if clearErr != nil {
		m.logger.Error("failed to clear credentials", "error", clearErr)
	}
	if m.transition(StatusUnauthenticated, nil) {
		m.logger.Info("session ended by auth failure")
	}
}

// commitRenewal stores a renewed pair unless the session it was issued for
// has ended. The timer is re-armed only for a session that is live or still
// being restored.
func (m *Manager) commitRenewal(ctx context.Context, epoch uint64, access, refresh string) (bool, error) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if m.epoch != epoch {
		return false, nil
	}
	if err := m.store.Save(ctx, access, refresh); err != nil {
		return false, err
	}

	m.mu.RLock()
	live := !m.closed && (m.status == StatusAuthenticated || m.status == StatusLoading)
	m.mu.RUnlock()
	if live {
		m.sched.Schedule(access)
	}
	return true, nil
}

func (m *Manager) currentEpoch() uint64 {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	return m.epoch
}

// endSessionLocked starts a new epoch so in-flight renewals are discarded,
// disarms the timer and removes the stored pair. Callers hold commitMu.
func (m *Manager) endSessionLocked(ctx context.Context) error {
	m.epoch++
	m.sched.Cancel()
	return m.store.Clear(ctx)
}

// AccessToken returns a token to send with a request. A token whose embedded
// expiry is within the skew is renewed first; tokens without a readable
// expiry are returned as stored and left to the backend to judge.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	creds, err := m.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("session: load credentials: %w", err)
	}
	if !creds.HasAccess() {
		return "", ErrNoSession
	}

	exp, ok := tokenx.DecodeExpiry(creds.AccessToken)
	if !ok || exp.After(m.opts.now().Add(m.opts.skew)) {
		return creds.AccessToken, nil
	}

	m.refresher.Refresh(ctx)

	creds, err = m.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("session: load credentials: %w", err)
	}
	if !creds.HasAccess() {
		return "", ErrNoSession
	}
	return creds.AccessToken, nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status == StatusAuthenticated
}

// Loading reports whether startup is still running.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// AuthLoading reports whether a login or registration is in flight.
func (m *Manager) AuthLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authPending > 0
}

// Profile returns a copy of the signed-in user's profile.
func (m *Manager) Profile() (authapi.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return authapi.Profile{}, false
	}
	return *m.profile, true
}

// RefreshDeadline returns when the next scheduled refresh fires.
func (m *Manager) RefreshDeadline() (t time.Time, armed bool) {
	return m.sched.Deadline()
}

// Close stops the scheduler and waits for background logout notifications.
// Results that arrive after Close no longer change the visible state.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.sched.Cancel()
	m.bg.Wait()
	return nil
}

func (m *Manager) scheduledRefresh() {
	if m.isClosed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.refreshTimeout)
	defer cancel()
	if !m.refresher.Refresh(ctx) {
		m.logger.Info("scheduled refresh did not renew tokens")
	}
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) beginStart() bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.status = StatusLoading
	st := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(st)
	return true
}

func (m *Manager) finishStart() {
	m.mu.Lock()
	if !m.loading {
		m.mu.Unlock()
		return
	}
	m.loading = false
	if m.status == StatusLoading {
		m.status = StatusUnauthenticated
	}
	closed := m.closed
	st := m.snapshotLocked()
	m.mu.Unlock()

	if !closed {
		m.notify(st)
	}
}

// settleStart applies the startup outcome unless something else (a login, a
// failed refresh) already moved the session out of Loading.
func (m *Manager) settleStart(status Status, profile *authapi.Profile, accessToken string) {
	m.mu.Lock()
	if m.closed || m.status != StatusLoading {
		m.mu.Unlock()
		return
	}
	m.status = status
	m.profile = profile
	m.mu.Unlock()

	if status == StatusAuthenticated {
		m.sched.Schedule(accessToken)
	}
}

// transition sets status and profile and notifies listeners. It reports false
// when the manager is closed and nothing changed.
func (m *Manager) transition(status Status, profile *authapi.Profile) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.status = status
	m.profile = profile
	st := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(st)
	return true
}

func (m *Manager) setAuthPending(delta int) {
	m.mu.Lock()
	m.authPending += delta
	closed := m.closed
	st := m.snapshotLocked()
	m.mu.Unlock()

	if !closed {
		m.notify(st)
	}
}

func (m *Manager) snapshotLocked() State {
	return State{
		Status:      m.status,
		Profile:     m.profile,
		Loading:     m.loading,
		AuthLoading: m.authPending > 0,
	}
}

func (m *Manager) notify(st State) {
	for _, fn := range m.opts.listeners {
		fn(st)
	}
}
