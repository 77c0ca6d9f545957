package presence

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// OnlineKey is the Redis set holding connected user IDs.
const OnlineKey = "presence:online"

// RedisRoster keeps the roster in a Redis set so several processes can share it.
type RedisRoster struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewRedisRoster creates a roster backed by client.
func NewRedisRoster(client rueidis.Client, logger *zap.Logger) *RedisRoster {
	return &RedisRoster{
		client: client,
		logger: logger.Named("presence"),
	}
}

func (r *RedisRoster) Connect(ctx context.Context, steamID string) error {
	if err := r.client.Do(ctx, r.client.B().Sadd().Key(OnlineKey).Member(steamID).Build()).Error(); err != nil {
		return fmt.Errorf("failed to add %s to roster: %w", steamID, err)
	}
	return nil
}

func (r *RedisRoster) Disconnect(ctx context.Context, steamID string) error {
	if err := r.client.Do(ctx, r.client.B().Srem().Key(OnlineKey).Member(steamID).Build()).Error(); err != nil {
		return fmt.Errorf("failed to remove %s from roster: %w", steamID, err)
	}
	return nil
}

func (r *RedisRoster) Online(ctx context.Context) ([]string, error) {
	ids, err := r.client.Do(ctx, r.client.B().Smembers().Key(OnlineKey).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}

	slices.Sort(ids)

	return ids, nil
}

// Reset clears the roster, dropping users left over from a previous run.
func (r *RedisRoster) Reset(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(OnlineKey).Build()).Error(); err != nil {
		return fmt.Errorf("failed to reset roster: %w", err)
	}

	r.logger.Debug("Cleared presence roster")

	return nil
}
