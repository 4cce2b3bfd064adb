package config

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/pkg/tokenx"
)

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("ESCROW_API_URL", "http://env:8080")
	t.Setenv("ESCROW_SESSION_DB", "/tmp/env.db")
	t.Setenv("ESCROW_REDIS_ADDR", "")
	t.Setenv("ESCROW_REFRESH_LEAD", "45")
	t.Setenv("ESCROW_TIMEOUT", "")

	cfg, rest, err := Load([]string{"-api", "http://flag:9090", "orders", "-all"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "http://flag:9090", cfg.APIURL)
	require.Equal(t, "/tmp/env.db", cfg.SessionDB)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, 45*time.Second, cfg.RefreshLead)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, []string{"orders", "-all"}, rest)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ESCROW_API_URL", "ESCROW_REFRESH_LEAD", "ESCROW_REDIS_NAMESPACE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, rest, err := Load(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.APIURL)
	require.Equal(t, tokenx.DefaultLeadTime, cfg.RefreshLead)
	require.Equal(t, "escrowctl:session", cfg.RedisNamespace)
	require.Equal(t, "warn", cfg.LogLevel)
	require.NotEmpty(t, cfg.SessionDB)
	require.Empty(t, rest)
}

func TestLoad_Help(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := Load([]string{"-h"}, &stderr)
	require.ErrorIs(t, err, flag.ErrHelp)
	require.Contains(t, stderr.String(), "usage: escrowctl")
}
