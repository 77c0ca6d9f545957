package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// HeaderName is the response header carrying the request ID.
const HeaderName = "X-Request-ID"

type requestIDCtxKey struct{}

// FromContext retrieves the request ID from context.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// Middleware tags every request with an ID and logs its outcome.
type Middleware struct {
	logger *zap.Logger
}

// New creates a new request ID middleware.
func New(logger *zap.Logger) *Middleware {
	return &Middleware{
		logger: logger.Named("request"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware handler.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		id := req.Header.Get(HeaderName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		w.Header().Set(HeaderName, id)
		ctx := context.WithValue(req.Context(), requestIDCtxKey{}, id)

		err := next(w, req.WithContext(ctx))

		m.logger.Debug("Handled request",
			zap.String("requestID", id),
			zap.String("method", req.Method),
			zap.String("route", req.Route()),
			zap.String("addr", req.RemoteAddr),
			zap.Error(err))

		return err
	}
}
