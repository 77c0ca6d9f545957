package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/steamfriends/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		content         string
		wantInitDelay   int
		wantRefresh     int
		wantAPIKey      string
		wantBackend     string
		wantErr         error
		wantEnabled     bool
		wantTimeout     time.Duration
		wantRefreshTime time.Duration
	}{
		{
			name: "defaults",
			content: `
version = 1
`,
			wantInitDelay:   1,
			wantRefresh:     3600,
			wantAPIKey:      config.UnsetAPIKey,
			wantBackend:     "file",
			wantEnabled:     false,
			wantTimeout:     10 * time.Second,
			wantRefreshTime: time.Hour,
		},
		{
			name: "values below range are raised",
			content: `
version = 1

[steam]
api_key = "abc"
init_delay = 0
refresh_interval = 5
`,
			wantInitDelay:   1,
			wantRefresh:     60,
			wantAPIKey:      "abc",
			wantBackend:     "file",
			wantEnabled:     true,
			wantTimeout:     10 * time.Second,
			wantRefreshTime: time.Minute,
		},
		{
			name: "values above range are lowered",
			content: `
version = 1

[steam]
api_key = "abc"
init_delay = 30
refresh_interval = 100000
request_timeout = 2500

[storage]
backend = "redis"
`,
			wantInitDelay:   10,
			wantRefresh:     86400,
			wantAPIKey:      "abc",
			wantBackend:     "redis",
			wantEnabled:     true,
			wantTimeout:     2500 * time.Millisecond,
			wantRefreshTime: 24 * time.Hour,
		},
		{
			name:    "missing version",
			content: `[steam]` + "\n" + `api_key = "abc"`,
			wantErr: config.ErrConfigVersionMissing,
		},
		{
			name:    "wrong version",
			content: `version = 7`,
			wantErr: config.ErrConfigVersionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadFile(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantInitDelay, cfg.Steam.InitDelay)
			assert.Equal(t, tt.wantRefresh, cfg.Steam.RefreshInterval)
			assert.Equal(t, tt.wantAPIKey, cfg.Steam.APIKey)
			assert.Equal(t, tt.wantBackend, cfg.Storage.Backend)
			assert.Equal(t, tt.wantEnabled, cfg.Steam.Enabled())
			assert.Equal(t, tt.wantTimeout, cfg.Steam.RequestTimeoutDuration())
			assert.Equal(t, tt.wantRefreshTime, cfg.Steam.RefreshIntervalDuration())
			assert.Equal(t, config.DefaultConcurrency, cfg.Steam.MaxConcurrentRequests)
		})
	}
}

func TestSteamValidate(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", config.UnsetAPIKey} {
		s := config.Steam{APIKey: key}
		require.ErrorIs(t, s.Validate(), config.ErrAPIKeyUnset)
	}

	s := config.Steam{APIKey: "0123456789ABCDEF"}
	assert.NoError(t, s.Validate())
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
