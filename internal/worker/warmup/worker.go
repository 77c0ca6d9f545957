package warmup

import (
	"context"
	"time"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/steam/cache"
	"github.com/robalyx/steamfriends/pkg/utils"
	"go.uber.org/zap"
)

// RecordFinder loads a friend record, starting a fetch when needed.
type RecordFinder interface {
	TryFind(ctx context.Context, steamID string) (*cache.Record, bool)
}

// Worker loads the friend record of every user already online at startup,
// one user at a time with a fixed pause between requests.
type Worker struct {
	finder RecordFinder
	roster presence.Roster
	delay  time.Duration
	logger *zap.Logger
}

// New creates a warm-up worker.
func New(finder RecordFinder, roster presence.Roster, delay time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		finder: finder,
		roster: roster,
		delay:  delay,
		logger: logger.Named("warmup_worker"),
	}
}

// Start walks the online roster once and returns when every user has been
// visited or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	online, err := w.roster.Online(ctx)
	if err != nil {
		w.logger.Error("Failed to list online users", zap.Error(err))
		return
	}

	w.logger.Info("Warm-up started",
		zap.Int("users", len(online)),
		zap.Duration("delay", w.delay))

	var cached int
	for i, steamID := range online {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled, stopping warm-up worker") {
			return
		}

		if _, ok := w.finder.TryFind(ctx, steamID); ok {
			cached++
		}

		// No pause after the last user
		if i == len(online)-1 {
			break
		}

		if !utils.IntervalSleep(ctx, w.delay, w.logger, "warm-up worker") {
			return
		}
	}

	w.logger.Info("Warm-up completed",
		zap.Int("users", len(online)),
		zap.Int("alreadyCached", cached))
}
