package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/redis"
	"github.com/robalyx/steamfriends/internal/setup/config"
	"github.com/robalyx/steamfriends/internal/storage"
	"github.com/robalyx/steamfriends/internal/storage/file"
	"github.com/robalyx/steamfriends/internal/storage/postgres"
	storageRedis "github.com/robalyx/steamfriends/internal/storage/redis"
	"github.com/robalyx/steamfriends/internal/storage/sqlite"
	"go.uber.org/zap"
)

// Storage backend names accepted by storage.backend.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var (
	ErrUnknownBackend     = errors.New("unknown storage backend")
	ErrRedisNotConfigured = errors.New("redis host is not configured")
)

// newBackend opens the record store backend selected in the config.
func newBackend(
	ctx context.Context, cfg *config.Config, redisManager *redis.Manager, logger *zap.Logger,
) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case BackendFile:
		return file.New(cfg.Storage.DataDir, logger)
	case BackendSQLite:
		return sqlite.New(cfg.Storage.SQLitePath, logger)
	case BackendPostgres:
		return postgres.New(ctx, &cfg.Storage.PostgreSQL, logger)
	case BackendRedis:
		if redisManager == nil {
			return nil, fmt.Errorf("%w: required by the redis storage backend", ErrRedisNotConfigured)
		}

		client, err := redisManager.GetClient(redis.RecordDBIndex)
		if err != nil {
			return nil, err
		}

		return storageRedis.New(client, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage.Backend)
	}
}

// newRoster returns a Redis-backed roster when Redis is configured so the
// online set survives restarts, and an in-memory roster otherwise.
func newRoster(redisManager *redis.Manager, logger *zap.Logger) (presence.Roster, error) {
	if redisManager == nil {
		return presence.NewMemoryRoster(), nil
	}

	client, err := redisManager.GetClient(redis.PresenceDBIndex)
	if err != nil {
		return nil, err
	}

	return presence.NewRedisRoster(client, logger), nil
}
