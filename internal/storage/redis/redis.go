package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
	"github.com/robalyx/steamfriends/internal/storage"
	"go.uber.org/zap"
)

// KeyPrefix namespaces record keys inside the Redis database.
const KeyPrefix = "steamfriends:"

// Backend stores values as plain Redis strings.
type Backend struct {
	client rueidis.Client
	logger *zap.Logger
}

// New creates a Redis backend on top of an existing client.
// The client is owned by the caller and is not closed by Close.
func New(client rueidis.Client, logger *zap.Logger) *Backend {
	return &Backend{
		client: client,
		logger: logger.Named("redis_store"),
	}
}

// Get fetches the value stored for key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	value, err := b.client.Do(ctx, b.client.B().Get().Key(KeyPrefix+key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}

// Put overwrites the value stored for key.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	cmd := b.client.B().Set().Key(KeyPrefix + key).Value(rueidis.BinaryString(value)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	b.logger.Debug("Wrote record to Redis", zap.String("key", key), zap.Int("bytes", len(value)))

	return nil
}

// Close is a no-op; the Redis manager owns the client.
func (b *Backend) Close() error {
	return nil
}
