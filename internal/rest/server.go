package rest

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/robalyx/steamfriends/internal/rest/handler"
	"github.com/robalyx/steamfriends/internal/rest/middleware/requestid"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Server implements the REST API service.
type Server struct {
	userHandler    *handler.UserHandler
	sessionHandler *handler.SessionHandler
}

// NewServer creates the REST API handler.
func NewServer(
	querier handler.FriendQuerier,
	records handler.RecordFinder,
	tracker handler.SessionTracker,
	logger *zap.Logger,
) http.Handler {
	server := &Server{
		userHandler:    handler.NewUserHandler(querier, records, logger),
		sessionHandler: handler.NewSessionHandler(tracker, logger),
	}

	requestIDMiddleware := requestid.New(logger)

	router := bunrouter.New()

	router.Use(requestIDMiddleware.AsRESTMiddleware).WithGroup("/v1", func(g *bunrouter.Group) {
		g.GET("/friends/:id/:target", server.userHandler.IsFriend)
		g.GET("/users/:id/online-friends", server.userHandler.GetOnlineFriends)
		g.GET("/users/:id/record", server.userHandler.GetRecord)
		g.PUT("/sessions/:id", server.sessionHandler.Connect)
		g.DELETE("/sessions/:id", server.sessionHandler.Disconnect)
	})

	router.GET("/healthz", func(w http.ResponseWriter, _ bunrouter.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	return gzhttp.GzipHandler(router)
}
