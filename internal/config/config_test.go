package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSyncMode(t *testing.T) {
	cases := []struct {
		name       string
		override   string
		production bool
		want       string
		wantErr    bool
	}{
		{name: "default development", override: "", production: false, want: SyncModeAsync},
		{name: "default production", override: "", production: true, want: SyncModeAwait},
		{name: "explicit await wins in development", override: "await", production: false, want: SyncModeAwait},
		{name: "explicit async wins in production", override: "async", production: true, want: SyncModeAsync},
		{name: "case insensitive", override: " AWAIT ", production: false, want: SyncModeAwait},
		{name: "invalid override", override: "sometimes", production: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mode, err := resolveSyncMode(tc.override, tc.production)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, mode)
		})
	}
}

func TestHTTPAddress(t *testing.T) {
	require.Equal(t, ":8080", Config{AppPort: "8080"}.HTTPAddress())
	require.Equal(t, ":9000", Config{AppPort: ":9000"}.HTTPAddress())
}

func TestIsProduction(t *testing.T) {
	require.True(t, Config{AppEnv: "Production"}.IsProduction())
	require.False(t, Config{AppEnv: "development"}.IsProduction())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SEGUIMIENTO_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEGUIMIENTO_JWT_SECRET", "secret")
	t.Setenv("SEGUIMIENTO_APP_ENV", "development")
	t.Setenv("SEGUIMIENTO_SYNC_MODE", "")
	t.Setenv("SEGUIMIENTO_SYNC_TIMEOUT_MS", "")
	t.Setenv("SEGUIMIENTO_TASKS_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, "Hoja1", cfg.SheetName)
	require.Equal(t, SyncModeAsync, cfg.SyncMode)
	require.Equal(t, "4s", cfg.SyncTimeout.String())
	require.Equal(t, "5m0s", cfg.TaskBoardCacheTTL.String())
}
