package checker

import (
	"context"

	"github.com/robalyx/steamfriends/internal/presence"
	"go.uber.org/zap"
)

// RecordReader answers membership questions from cached friend records
// without starting any fetch.
type RecordReader interface {
	IsFriendOf(ctx context.Context, ownerID, friendID string) bool
}

// FriendChecker answers friendship queries from whatever is currently cached.
// Missing or pending data is reported as "not a friend", never as an error.
type FriendChecker struct {
	records RecordReader
	roster  presence.Roster
	logger  *zap.Logger
}

// NewFriendChecker creates a FriendChecker.
func NewFriendChecker(records RecordReader, roster presence.Roster, logger *zap.Logger) *FriendChecker {
	return &FriendChecker{
		records: records,
		roster:  roster,
		logger:  logger.Named("friend_checker"),
	}
}

// IsFriend reports whether a and b are friends according to either user's
// cached list. Checking both sides keeps a relationship visible when only
// one side's data is present or current.
func (c *FriendChecker) IsFriend(ctx context.Context, a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}

	return c.records.IsFriendOf(ctx, a, b) || c.records.IsFriendOf(ctx, b, a)
}

// OnlineFriendsOf returns the connected users that are friends of steamID.
func (c *FriendChecker) OnlineFriendsOf(ctx context.Context, steamID string) []string {
	online, err := c.roster.Online(ctx)
	if err != nil {
		c.logger.Warn("Failed to list online users", zap.Error(err))
		return []string{}
	}

	friends := make([]string, 0)
	for _, candidate := range online {
		if c.IsFriend(ctx, steamID, candidate) {
			friends = append(friends, candidate)
		}
	}

	return friends
}
