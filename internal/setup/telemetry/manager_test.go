package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/steamfriends/internal/setup/config"
	"github.com/robalyx/steamfriends/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetLogger(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	lm := telemetry.NewManager(logDir, &config.Debug{LogLevel: "debug", MaxLogsToKeep: 3})
	defer lm.Close()

	logger, err := lm.GetLogger()
	require.NoError(t, err)

	logger.Info("hello from test")
	_ = logger.Sync()

	content, err := os.ReadFile(filepath.Join(lm.GetCurrentSessionDir(), "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from test")
	assert.NotEmpty(t, lm.GetInstanceID())
}

func TestManagerInvalidLevel(t *testing.T) {
	t.Parallel()

	lm := telemetry.NewManager(t.TempDir(), &config.Debug{LogLevel: "loud", MaxLogsToKeep: 3})
	defer lm.Close()

	_, err := lm.GetLogger()
	assert.Error(t, err)
}

func TestManagerRotatesOldSessions(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	old := time.Now().Add(-time.Hour)

	for _, name := range []string{"a", "b", "c"} {
		dir := filepath.Join(logDir, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.Chtimes(dir, old, old))
		old = old.Add(time.Minute)
	}

	lm := telemetry.NewManager(logDir, &config.Debug{LogLevel: "info", MaxLogsToKeep: 2})
	defer lm.Close()

	_, err := lm.GetLogger()
	require.NoError(t, err)

	sessions, err := filepath.Glob(filepath.Join(logDir, "*"))
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.NoDirExists(t, filepath.Join(logDir, "a"))
	assert.NoDirExists(t, filepath.Join(logDir, "b"))
	assert.DirExists(t, filepath.Join(logDir, "c"))
}

func TestWorkerLoggerBeforeSession(t *testing.T) {
	t.Parallel()

	lm := telemetry.NewManager(t.TempDir(), &config.Debug{LogLevel: "info"})
	logger := lm.GetWorkerLogger("warmup")
	assert.NotNil(t, logger)
}
