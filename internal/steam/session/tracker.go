package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/steam/cache"
	"go.uber.org/zap"
)

// ErrEmptySteamID is returned when a session event carries no Steam ID.
var ErrEmptySteamID = errors.New("empty steam id")

// RecordFinder loads a friend record, starting a fetch when needed.
type RecordFinder interface {
	TryFind(ctx context.Context, steamID string) (*cache.Record, bool)
}

// Tracker turns connect and disconnect events into roster updates
// and cache warm-ups.
type Tracker struct {
	finder RecordFinder
	roster presence.Roster
	logger *zap.Logger
}

// NewTracker creates a Tracker.
func NewTracker(finder RecordFinder, roster presence.Roster, logger *zap.Logger) *Tracker {
	return &Tracker{
		finder: finder,
		roster: roster,
		logger: logger.Named("session_tracker"),
	}
}

// Connected marks steamID as online and makes sure its friend record is
// loaded or being fetched.
func (t *Tracker) Connected(ctx context.Context, steamID string) error {
	if steamID == "" {
		return ErrEmptySteamID
	}

	if err := t.roster.Connect(ctx, steamID); err != nil {
		return fmt.Errorf("failed to mark user online: %w", err)
	}

	_, cached := t.finder.TryFind(ctx, steamID)

	t.logger.Debug("User connected",
		zap.String("steamID", steamID),
		zap.Bool("cached", cached))

	return nil
}

// Disconnected marks steamID as offline. Its friend record stays resident.
func (t *Tracker) Disconnected(ctx context.Context, steamID string) error {
	if steamID == "" {
		return ErrEmptySteamID
	}

	if err := t.roster.Disconnect(ctx, steamID); err != nil {
		return fmt.Errorf("failed to mark user offline: %w", err)
	}

	t.logger.Debug("User disconnected", zap.String("steamID", steamID))

	return nil
}
