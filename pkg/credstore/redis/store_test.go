package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/pkg/credstore"
	credredis "github.com/safescrow/dashboard/pkg/credstore/redis"
)

func newStore(t *testing.T, cfg credredis.Config) (*credredis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := credredis.New(rdb, cfg)
	require.NoError(t, err)
	return s, mr
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := credredis.New(nil, credredis.Config{Namespace: "x"})
	require.Error(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	_, err = credredis.New(rdb, credredis.Config{})
	require.Error(t, err)
}

func TestStore_SaveLoadClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newStore(t, credredis.Config{Namespace: "escrow:session:alice"})

	require.NoError(t, s.Save(ctx, "access-1", "refresh-1"))
	require.Equal(t, "access-1", mustGet(t, mr, "escrow:session:alice:access_token"))
	require.Equal(t, "refresh-1", mustGet(t, mr, "escrow:session:alice:refresh_token"))

	require.NoError(t, s.Save(ctx, "access-2", ""))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, credstore.Credentials{AccessToken: "access-2", RefreshToken: "refresh-1"}, got)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	require.False(t, mr.Exists("escrow:session:alice:access_token"))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, credstore.Credentials{}, got)
}

func TestStore_TTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newStore(t, credredis.Config{Namespace: "ns", TTL: time.Hour})

	require.NoError(t, s.Save(ctx, "access-1", "refresh-1"))
	require.Equal(t, time.Hour, mr.TTL("ns:access_token"))
	require.Equal(t, time.Hour, mr.TTL("ns:refresh_token"))

	mr.FastForward(2 * time.Hour)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.False(t, got.HasAccess())
	require.False(t, got.HasRefresh())
}

func TestStore_EmptyAccessRejected(t *testing.T) {
	t.Parallel()
	s, _ := newStore(t, credredis.Config{Namespace: "ns"})
	require.ErrorIs(t, s.Save(context.Background(), "", "r"), credstore.ErrEmptyAccessToken)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
