package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Not parallel: these tests set environment variables.

func TestLoadConfig(t *testing.T) {
	t.Setenv("LEDGER_API_BASE", "https://ledger.example.com/api/v1")
	t.Setenv("LEDGER_ACCESS_TTL", "30m")
	t.Setenv("LEDGER_RATE_LIMIT", "2.5")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://ledger.example.com/api/v1", cfg.APIBase)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.InDelta(t, 2.5, cfg.RateLimit, 0.0001)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("LEDGER_HTTP_TIMEOUT", "soon")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "parse env")
}

func TestConfigResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "ok", cfg: Config{APIBase: "http://localhost:8000/api/v1", StateDir: "/tmp/ledger"}},
		{name: "no scheme", cfg: Config{APIBase: "localhost:8000"}, wantErr: "invalid API base"},
		{name: "ftp", cfg: Config{APIBase: "ftp://example.com"}, wantErr: "invalid API base"},
		{name: "negative rate", cfg: Config{APIBase: "http://x", RateLimit: -1}, wantErr: "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			err := cfg.resolve()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, filepath.Join("/tmp/ledger", "key"), cfg.KeyFile)
			require.Equal(t, filepath.Join("/tmp/ledger", "tokens.db"), cfg.DatabasePath())
		})
	}
}

func TestConfigResolveDefaultsStateDir(t *testing.T) {
	t.Setenv("HOME", "/home/alice")

	cfg := Config{APIBase: "http://localhost:8000/api/v1"}
	require.NoError(t, cfg.resolve())
	require.Equal(t, "/home/alice/.ledger", cfg.StateDir)
}
