package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/credstore"
)

func newTestManager(t *testing.T, api *fakeAPI, store credstore.Store, opts ...Option) *Manager {
	t.Helper()
	m := New(api, store, opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func requireStored(t *testing.T, store credstore.Store, access, refresh string) {
	t.Helper()
	creds, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, access, creds.AccessToken)
	require.Equal(t, refresh, creds.RefreshToken)
}

func TestManager_InitialState(t *testing.T) {
	m := newTestManager(t, &fakeAPI{}, credstore.NewMemory())

	st := m.State()
	require.Equal(t, StatusUninitialized, st.Status)
	require.True(t, st.Loading)
	require.False(t, st.AuthLoading)
	require.False(t, m.IsAuthenticated())

	_, ok := m.Profile()
	require.False(t, ok)
}

func TestManager_StartWithoutCredentials(t *testing.T) {
	api := &fakeAPI{}
	rec := &stateRecorder{}
	m := newTestManager(t, api, credstore.NewMemory(), WithStateListener(rec.record))

	require.NoError(t, m.Start(context.Background()))

	require.Equal(t, StatusUnauthenticated, m.State().Status)
	require.False(t, m.Loading())
	require.Zero(t, api.profileCalls.Load())
	require.Zero(t, api.refreshCalls.Load())

	states := rec.all()
	require.Equal(t, StatusLoading, states[0].Status)
	last := states[len(states)-1]
	require.Equal(t, StatusUnauthenticated, last.Status)
	require.False(t, last.Loading)
}

func TestManager_StartWithValidToken(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	access := mintToken(t, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, access, "refresh-1"))

	api := &fakeAPI{}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Start(ctx))

	require.True(t, m.IsAuthenticated())
	profile, ok := m.Profile()
	require.True(t, ok)
	require.Equal(t, "user-1", profile.ID)
	require.Zero(t, api.refreshCalls.Load())

	_, armed := m.RefreshDeadline()
	require.True(t, armed)

	// Start only runs once.
	require.NoError(t, m.Start(ctx))
	require.EqualValues(t, 1, api.profileCalls.Load())
}

func TestManager_StartRefreshesExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, mintToken(t, "user-1", time.Now().Add(-time.Minute)), "refresh-1"))

	fresh := mintToken(t, "user-1", time.Now().Add(time.Hour))
	api := &fakeAPI{
		refresh: func(_ context.Context, rt string) (*authapi.TokenResponse, error) {
			require.Equal(t, "refresh-1", rt)
			return &authapi.TokenResponse{AccessToken: fresh, RefreshToken: "refresh-2"}, nil
		},
		profile: func(_ context.Context, at string) (*authapi.Profile, error) {
			if at != fresh {
				return nil, errRejected
			}
			return &authapi.Profile{ID: "user-1"}, nil
		},
	}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Start(ctx))

	require.True(t, m.IsAuthenticated())
	require.False(t, m.Loading())
	require.EqualValues(t, 1, api.refreshCalls.Load())
	requireStored(t, store, fresh, "refresh-2")
}

func TestManager_StartRefreshesWhenProfileRejectsToken(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	revoked := mintToken(t, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, revoked, "refresh-1"))

	fresh := mintToken(t, "user-1", time.Now().Add(2*time.Hour))
	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			return &authapi.TokenResponse{AccessToken: fresh}, nil
		},
		profile: func(_ context.Context, at string) (*authapi.Profile, error) {
			if at == revoked {
				return nil, errRejected
			}
			return &authapi.Profile{ID: "user-1"}, nil
		},
	}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Start(ctx))

	require.True(t, m.IsAuthenticated())
	require.EqualValues(t, 2, api.profileCalls.Load())
	// The refresh token is kept when the response omits a new one.
	requireStored(t, store, fresh, "refresh-1")
}

func TestManager_StartWithRejectedRefresh(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, "opaque-token", "refresh-1"))

	api := &fakeAPI{}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Start(ctx))

	require.Equal(t, StatusUnauthenticated, m.State().Status)
	require.False(t, m.Loading())
	require.Zero(t, api.profileCalls.Load())
	requireStored(t, store, "", "")
}

func TestManager_StartProfileFailsAfterRefresh(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(-time.Hour)), "refresh-1"))

	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			return &authapi.TokenResponse{AccessToken: mintToken(t, "u", time.Now().Add(time.Hour)), RefreshToken: "refresh-2"}, nil
		},
		profile: func(context.Context, string) (*authapi.Profile, error) {
			return nil, errors.New("connection reset")
		},
	}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Start(ctx))

	require.False(t, m.IsAuthenticated())
	requireStored(t, store, "", "")
	_, armed := m.RefreshDeadline()
	require.False(t, armed)
}

func TestManager_StartStoreError(t *testing.T) {
	boom := errors.New("disk on fire")
	m := newTestManager(t, &fakeAPI{}, failingStore{err: boom})

	err := m.Start(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, StatusUnauthenticated, m.State().Status)
	require.False(t, m.Loading())
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	access := mintToken(t, "user-1", time.Now().Add(time.Hour))

	var sawPending bool
	var m *Manager
	api := &fakeAPI{
		login: func(_ context.Context, req authapi.LoginRequest) (*authapi.TokenResponse, error) {
			require.Equal(t, "ada@example.com", req.Email)
			sawPending = m.AuthLoading()
			return &authapi.TokenResponse{AccessToken: access, RefreshToken: "refresh-1"}, nil
		},
	}
	m = newTestManager(t, api, store)
	require.NoError(t, m.Start(ctx))

	require.NoError(t, m.Login(ctx, authapi.LoginRequest{Email: "ada@example.com", Password: "pw"}))

	require.True(t, sawPending)
	require.False(t, m.AuthLoading())
	require.True(t, m.IsAuthenticated())
	requireStored(t, store, access, "refresh-1")

	deadline, armed := m.RefreshDeadline()
	require.True(t, armed)
	require.WithinDuration(t, time.Now().Add(55*time.Minute), deadline, 5*time.Second)
}

func TestManager_LoginRejected(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		login: func(context.Context, authapi.LoginRequest) (*authapi.TokenResponse, error) {
			return nil, &authapi.APIError{StatusCode: 401, Code: authapi.ErrorCodeInvalidCredentials}
		},
	}
	store := credstore.NewMemory()
	m := newTestManager(t, api, store)
	require.NoError(t, m.Start(ctx))

	err := m.Login(ctx, authapi.LoginRequest{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	require.True(t, authapi.IsUnauthorized(err))
	require.Equal(t, StatusUnauthenticated, m.State().Status)
	require.False(t, m.AuthLoading())
	requireStored(t, store, "", "")
}

func TestManager_LoginRollsBackWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	api := &fakeAPI{
		login: func(context.Context, authapi.LoginRequest) (*authapi.TokenResponse, error) {
			return &authapi.TokenResponse{AccessToken: "a", RefreshToken: "r"}, nil
		},
		profile: func(context.Context, string) (*authapi.Profile, error) {
			return nil, errors.New("503")
		},
	}
	m := newTestManager(t, api, store)
	require.NoError(t, m.Start(ctx))

	err := m.Login(ctx, authapi.LoginRequest{Email: "a@b.c", Password: "pw"})
	require.ErrorIs(t, err, ErrProfileUnavailable)
	require.False(t, m.IsAuthenticated())
	requireStored(t, store, "", "")
}

func TestManager_LoginWithoutRefreshTokenDropsOldOne(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, "old-access", "old-refresh"))

	api := &fakeAPI{
		login: func(context.Context, authapi.LoginRequest) (*authapi.TokenResponse, error) {
			return &authapi.TokenResponse{AccessToken: "new-access"}, nil
		},
	}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Login(ctx, authapi.LoginRequest{Email: "a@b.c", Password: "pw"}))
	requireStored(t, store, "new-access", "")
}

func TestManager_Register(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	api := &fakeAPI{
		register: func(_ context.Context, req authapi.RegisterRequest) (*authapi.TokenResponse, error) {
			require.Equal(t, "12345678901", req.NIN)
			return &authapi.TokenResponse{AccessToken: "a", RefreshToken: "r"}, nil
		},
	}
	m := newTestManager(t, api, store)

	require.NoError(t, m.Register(ctx, authapi.RegisterRequest{Email: "a@b.c", NIN: "12345678901", Password: "pw", Password2: "pw"}))
	require.True(t, m.IsAuthenticated())
	requireStored(t, store, "a", "r")
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	access := mintToken(t, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, access, "refresh-1"))

	api := &fakeAPI{logoutErr: errors.New("offline")}
	m := New(api, store)
	require.NoError(t, m.Start(ctx))
	require.True(t, m.IsAuthenticated())

	require.NoError(t, m.Logout(ctx))
	require.Equal(t, StatusUnauthenticated, m.State().Status)
	requireStored(t, store, "", "")
	_, armed := m.RefreshDeadline()
	require.False(t, armed)

	// Nothing left to notify the backend about.
	require.NoError(t, m.Logout(ctx))

	require.NoError(t, m.Close())
	require.Equal(t, []string{access}, api.logouts())
}

// blockedRefresh returns an API whose refresh waits for release and then
// answers with answer, plus a channel closed when the refresh started.
func blockedRefresh(answer func() (*authapi.TokenResponse, error)) (*fakeAPI, <-chan struct{}, chan struct{}) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			once.Do(func() { close(started) })
			<-release
			return answer()
		},
	}
	return api, started, release
}

func TestManager_SessionEndDiscardsInFlightRefresh(t *testing.T) {
	end := map[string]func(t *testing.T, ctx context.Context, m *Manager){
		"logout":       func(t *testing.T, ctx context.Context, m *Manager) { require.NoError(t, m.Logout(ctx)) },
		"auth failure": func(_ *testing.T, ctx context.Context, m *Manager) { m.HandleAuthFailure(ctx) },
	}

	for name, endSession := range end {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := credstore.NewMemory()
			require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(time.Hour)), "refresh-1"))

			fresh := mintToken(t, "u", time.Now().Add(2*time.Hour))
			api, started, release := blockedRefresh(func() (*authapi.TokenResponse, error) {
				return &authapi.TokenResponse{AccessToken: fresh, RefreshToken: "refresh-2"}, nil
			})
			m := newTestManager(t, api, store)
			require.NoError(t, m.Start(ctx))
			require.True(t, m.IsAuthenticated())

			result := make(chan bool, 1)
			go func() { result <- m.RefreshToken(ctx) }()
			<-started

			endSession(t, ctx, m)
			close(release)

			require.False(t, <-result)
			require.Equal(t, StatusUnauthenticated, m.State().Status)
			requireStored(t, store, "", "")
			_, armed := m.RefreshDeadline()
			require.False(t, armed)
		})
	}
}

func TestManager_StaleRefreshFailureSparesNewLogin(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(time.Hour)), "refresh-1"))

	api, started, release := blockedRefresh(func() (*authapi.TokenResponse, error) {
		return nil, errRejected
	})
	access := mintToken(t, "u", time.Now().Add(time.Hour))
	api.login = func(context.Context, authapi.LoginRequest) (*authapi.TokenResponse, error) {
		return &authapi.TokenResponse{AccessToken: access, RefreshToken: "refresh-login"}, nil
	}
	m := newTestManager(t, api, store)
	require.NoError(t, m.Start(ctx))

	result := make(chan bool, 1)
	go func() { result <- m.RefreshToken(ctx) }()
	<-started

	require.NoError(t, m.Login(ctx, authapi.LoginRequest{Email: "ada@example.com", Password: "pw"}))
	close(release)

	require.False(t, <-result)
	require.True(t, m.IsAuthenticated())
	requireStored(t, store, access, "refresh-login")
	_, armed := m.RefreshDeadline()
	require.True(t, armed)
}

func TestManager_CancelledStartDoesNotArmTimer(t *testing.T) {
	store := credstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), mintToken(t, "u", time.Now().Add(-time.Minute)), "refresh-1"))

	fresh := mintToken(t, "u", time.Now().Add(time.Hour))
	api, started, release := blockedRefresh(func() (*authapi.TokenResponse, error) {
		return &authapi.TokenResponse{AccessToken: fresh, RefreshToken: "refresh-2"}, nil
	})
	m := newTestManager(t, api, store)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	require.ErrorIs(t, m.Start(ctx), context.Canceled)
	require.Equal(t, StatusUnauthenticated, m.State().Status)

	close(release)
	require.Eventually(t, func() bool {
		return !m.refresher.InFlight()
	}, time.Second, 5*time.Millisecond)

	// The rotated pair is kept so the next start can use it, but nothing
	// renews it in the background.
	requireStored(t, store, fresh, "refresh-2")
	_, armed := m.RefreshDeadline()
	require.False(t, armed)
	require.Zero(t, api.profileCalls.Load())
}

func TestManager_LogoutAfterCloseSkipsNotification(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(time.Hour)), "refresh-1"))

	api := &fakeAPI{}
	m := New(api, store)
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Close())

	require.NoError(t, m.Logout(ctx))
	requireStored(t, store, "", "")
	require.Empty(t, api.logouts())
}

func TestManager_RefreshFailureEndsSession(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(time.Hour)), "refresh-1"))

	api := &fakeAPI{}
	m := newTestManager(t, api, store)
	require.NoError(t, m.Start(ctx))
	require.True(t, m.IsAuthenticated())

	require.False(t, m.RefreshToken(ctx))
	require.Equal(t, StatusUnauthenticated, m.State().Status)
	requireStored(t, store, "", "")
}

func TestManager_RefreshWithoutRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, "a", ""))

	api := &fakeAPI{}
	m := newTestManager(t, api, store)

	require.False(t, m.RefreshToken(ctx))
	require.Zero(t, api.refreshCalls.Load())
	requireStored(t, store, "", "")
}

func TestManager_ConcurrentRefreshJoinsInFlight(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, "a", "refresh-1"))

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			once.Do(func() { close(started) })
			<-release
			return &authapi.TokenResponse{AccessToken: "b", RefreshToken: "refresh-2"}, nil
		},
	}
	m := newTestManager(t, api, store)

	const callers = 8
	results := make(chan bool, callers)
	var (
		wg      sync.WaitGroup
		arrived atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arrived.Add(1)
			results <- m.RefreshToken(ctx)
		}()
	}

	<-started
	require.True(t, m.refresher.InFlight())
	require.Eventually(t, func() bool {
		return arrived.Load() == callers
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for ok := range results {
		require.True(t, ok)
	}
	require.EqualValues(t, 1, api.refreshCalls.Load())
	require.False(t, m.refresher.InFlight())
	requireStored(t, store, "b", "refresh-2")
}

func TestManager_ConcurrentRefreshRejected(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, "a", "refresh-1"))

	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			close(started)
			<-release
			return &authapi.TokenResponse{AccessToken: "b"}, nil
		},
	}
	m := newTestManager(t, api, store, WithCollisionPolicy(RejectConcurrent))

	first := make(chan bool, 1)
	go func() { first <- m.RefreshToken(ctx) }()

	<-started
	require.False(t, m.RefreshToken(ctx))

	close(release)
	require.True(t, <-first)
	require.EqualValues(t, 1, api.refreshCalls.Load())
	requireStored(t, store, "b", "refresh-1")
}

func TestManager_RefreshCallerStopsWaitingOnCancel(t *testing.T) {
	store := credstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), "a", "refresh-1"))

	release := make(chan struct{})
	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			<-release
			return &authapi.TokenResponse{AccessToken: "b"}, nil
		},
	}
	m := newTestManager(t, api, store)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.False(t, m.RefreshToken(ctx))

	// The renewal itself still completes.
	close(release)
	require.Eventually(t, func() bool {
		creds, _ := store.Load(context.Background())
		return creds.AccessToken == "b"
	}, time.Second, 10*time.Millisecond)
}

func TestManager_AccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		m := newTestManager(t, &fakeAPI{}, credstore.NewMemory())
		_, err := m.AccessToken(ctx)
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("valid token returned as is", func(t *testing.T) {
		store := credstore.NewMemory()
		access := mintToken(t, "u", time.Now().Add(time.Hour))
		require.NoError(t, store.Save(ctx, access, "r"))
		api := &fakeAPI{}
		m := newTestManager(t, api, store)

		got, err := m.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, access, got)
		require.Zero(t, api.refreshCalls.Load())
	})

	t.Run("opaque token returned as is", func(t *testing.T) {
		store := credstore.NewMemory()
		require.NoError(t, store.Save(ctx, "opaque", "r"))
		api := &fakeAPI{}
		m := newTestManager(t, api, store)

		got, err := m.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "opaque", got)
		require.Zero(t, api.refreshCalls.Load())
	})

	t.Run("token within skew is renewed", func(t *testing.T) {
		store := credstore.NewMemory()
		require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(time.Minute)), "r"))
		fresh := mintToken(t, "u", time.Now().Add(time.Hour))
		api := &fakeAPI{
			refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
				return &authapi.TokenResponse{AccessToken: fresh}, nil
			},
		}
		m := newTestManager(t, api, store)

		got, err := m.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, fresh, got)
		require.EqualValues(t, 1, api.refreshCalls.Load())
	})

	t.Run("rejected renewal ends session", func(t *testing.T) {
		store := credstore.NewMemory()
		require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(-time.Minute)), "r"))
		m := newTestManager(t, &fakeAPI{}, store)

		_, err := m.AccessToken(ctx)
		require.ErrorIs(t, err, ErrNoSession)
	})
}

func TestManager_ScheduledRefreshFires(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	// Expiry has second precision, so with a 2s lead the timer fires within 1s.
	require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(3*time.Second)), "refresh-1"))

	fresh := mintToken(t, "u", time.Now().Add(time.Hour))
	api := &fakeAPI{
		refresh: func(context.Context, string) (*authapi.TokenResponse, error) {
			return &authapi.TokenResponse{AccessToken: fresh, RefreshToken: "refresh-2"}, nil
		},
	}
	m := newTestManager(t, api, store, WithLeadTime(2*time.Second), WithSkew(0))
	require.NoError(t, m.Start(ctx))
	require.True(t, m.IsAuthenticated())

	require.Eventually(t, func() bool {
		return api.refreshCalls.Load() == 1
	}, 3*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		deadline, armed := m.RefreshDeadline()
		return armed && deadline.After(time.Now().Add(50*time.Minute))
	}, time.Second, 10*time.Millisecond)
	requireStored(t, store, fresh, "refresh-2")
	require.True(t, m.IsAuthenticated())
}

func TestManager_ClosedIgnoresLateResults(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewMemory()
	require.NoError(t, store.Save(ctx, mintToken(t, "u", time.Now().Add(time.Hour)), "r"))

	rec := &stateRecorder{}
	api := &fakeAPI{}
	m := New(api, store, WithStateListener(rec.record))
	require.NoError(t, m.Start(ctx))
	require.True(t, m.IsAuthenticated())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	seen := len(rec.all())

	m.HandleAuthFailure(ctx)
	require.True(t, m.IsAuthenticated())
	require.Len(t, rec.all(), seen)
	// Credentials the backend refused are still removed.
	requireStored(t, store, "", "")

	require.ErrorIs(t, m.Login(ctx, authapi.LoginRequest{}), ErrClosed)
	_, armed := m.RefreshDeadline()
	require.False(t, armed)
}

func TestManager_StartAfterClose(t *testing.T) {
	m := New(&fakeAPI{}, credstore.NewMemory())
	require.NoError(t, m.Close())
	require.ErrorIs(t, m.Start(context.Background()), ErrClosed)
}

func TestStatus_String(t *testing.T) {
	require.Equal(t, "authenticated", StatusAuthenticated.String())
	require.Equal(t, "unknown", Status(42).String())
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, string, string) error { return f.err }

func (f failingStore) Load(context.Context) (credstore.Credentials, error) {
	return credstore.Credentials{}, f.err
}

func (f failingStore) Clear(context.Context) error { return f.err }
