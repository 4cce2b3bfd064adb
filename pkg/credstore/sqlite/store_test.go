package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/pkg/credstore"
	"github.com/safescrow/dashboard/pkg/credstore/sqlite"
)

func openTemp(t *testing.T) (*sqlite.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.db")
	s, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_SaveLoadClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openTemp(t)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, credstore.Credentials{}, got)

	require.NoError(t, s.Save(ctx, "access-1", "refresh-1"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, credstore.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}, got)

	// Renewal without a fresh refresh token keeps the stored one.
	require.NoError(t, s.Save(ctx, "access-2", ""))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-2", got.AccessToken)
	require.Equal(t, "refresh-1", got.RefreshToken)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, credstore.Credentials{}, got)
}

func TestStore_EmptyAccessRejected(t *testing.T) {
	t.Parallel()
	s, _ := openTemp(t)

	err := s.Save(context.Background(), "", "refresh-1")
	require.ErrorIs(t, err, credstore.ErrEmptyAccessToken)
}

func TestStore_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "session.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "access-1", "refresh-1"))
	require.NoError(t, first.Close())

	// Reopening re-runs migrations, which must be a no-op.
	second, err := sqlite.Open(path)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, second.Ping(ctx))

	got, err := second.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, credstore.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}, got)
}
