package handler

import (
	"context"
	"net/http"

	"github.com/robalyx/steamfriends/internal/rest/types"
	"github.com/robalyx/steamfriends/internal/steam/cache"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// FriendQuerier answers friendship queries from cached data.
type FriendQuerier interface {
	IsFriend(ctx context.Context, a, b string) bool
	OnlineFriendsOf(ctx context.Context, steamID string) []string
}

// RecordFinder returns resident friend records without fetching.
type RecordFinder interface {
	Find(ctx context.Context, steamID string) (*cache.Record, bool)
}

// UserHandler handles friend query endpoints.
type UserHandler struct {
	querier FriendQuerier
	records RecordFinder
	logger  *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(querier FriendQuerier, records RecordFinder, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		querier: querier,
		records: records,
		logger:  logger.Named("user_handler"),
	}
}

// IsFriend reports whether :id and :target are friends.
func (h *UserHandler) IsFriend(w http.ResponseWriter, req bunrouter.Request) error {
	steamID := req.Param("id")
	targetID := req.Param("target")

	return writeJSON(w, http.StatusOK, types.IsFriendResponse{
		SteamID:  steamID,
		TargetID: targetID,
		IsFriend: h.querier.IsFriend(req.Context(), steamID, targetID),
	})
}

// GetOnlineFriends lists the connected friends of :id.
func (h *UserHandler) GetOnlineFriends(w http.ResponseWriter, req bunrouter.Request) error {
	steamID := req.Param("id")

	return writeJSON(w, http.StatusOK, types.OnlineFriendsResponse{
		SteamID: steamID,
		Friends: h.querier.OnlineFriendsOf(req.Context(), steamID),
	})
}

// GetRecord returns the resident friend record of :id.
func (h *UserHandler) GetRecord(w http.ResponseWriter, req bunrouter.Request) error {
	steamID := req.Param("id")

	record, ok := h.records.Find(req.Context(), steamID)
	if !ok {
		return writeError(w, http.StatusNotFound, "record not found")
	}

	return writeJSON(w, http.StatusOK, types.RecordResponse{
		OwnerID:     record.OwnerID,
		LastUpdated: record.LastUpdated,
		Friends:     record.Friends,
	})
}
