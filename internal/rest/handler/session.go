package handler

import (
	"context"
	"net/http"

	"github.com/robalyx/steamfriends/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// SessionTracker records connect and disconnect events.
type SessionTracker interface {
	Connected(ctx context.Context, steamID string) error
	Disconnected(ctx context.Context, steamID string) error
}

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	tracker SessionTracker
	logger  *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(tracker SessionTracker, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		tracker: tracker,
		logger:  logger.Named("session_handler"),
	}
}

// Connect marks :id as online.
func (h *SessionHandler) Connect(w http.ResponseWriter, req bunrouter.Request) error {
	steamID := req.Param("id")

	if err := h.tracker.Connected(req.Context(), steamID); err != nil {
		h.logger.Error("Failed to connect user", zap.String("steamID", steamID), zap.Error(err))
		return writeError(w, http.StatusInternalServerError, "failed to connect user")
	}

	return writeJSON(w, http.StatusOK, types.SessionResponse{SteamID: steamID, Online: true})
}

// Disconnect marks :id as offline.
func (h *SessionHandler) Disconnect(w http.ResponseWriter, req bunrouter.Request) error {
	steamID := req.Param("id")

	if err := h.tracker.Disconnected(req.Context(), steamID); err != nil {
		h.logger.Error("Failed to disconnect user", zap.String("steamID", steamID), zap.Error(err))
		return writeError(w, http.StatusInternalServerError, "failed to disconnect user")
	}

	return writeJSON(w, http.StatusOK, types.SessionResponse{SteamID: steamID, Online: false})
}
