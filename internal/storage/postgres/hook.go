package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// QueryHook implements bun.QueryHook to log queries with zap.
type QueryHook struct {
	logger *zap.Logger
}

// NewQueryHook creates a new QueryHook with zap logger.
func NewQueryHook(logger *zap.Logger) *QueryHook {
	return &QueryHook{logger: logger}
}

// BeforeQuery is a no-op.
func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery logs the query and its execution time.
func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Error("Query failed",
			zap.String("query", event.Query),
			zap.Duration("duration", duration),
			zap.Error(event.Err))
		return
	}

	h.logger.Debug("Query executed",
		zap.String("query", event.Query),
		zap.Duration("duration", duration))
}
