package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned internally when the cache loop is not running.
var ErrStopped = errors.New("friend cache stopped")

// FriendLister fetches the current friend IDs of a Steam user.
type FriendLister interface {
	GetFriendIDs(ctx context.Context, steamID string) ([]string, error)
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// fetchResult carries a completed fetch back to the cache loop.
type fetchResult struct {
	ownerID   string
	friendIDs []string
	err       error
}

// Cache holds every friend record loaded this session.
//
// All record state is owned by the goroutine running Run. Public methods
// hand a closure to that goroutine and wait for it, and fetch results are
// delivered back on a channel, so the record map has a single writer.
type Cache struct {
	store           *RecordStore
	lister          FriendLister
	refreshInterval time.Duration
	now             func() time.Time
	logger          *zap.Logger

	records map[string]*entry
	ops     chan func(ctx context.Context)
	results chan fetchResult
	stopped chan struct{}
	fetches sync.WaitGroup
}

// New creates a Cache. Run must be started before any other method returns.
func New(
	store *RecordStore, lister FriendLister, refreshInterval time.Duration, logger *zap.Logger, opts ...Option,
) *Cache {
	c := &Cache{
		store:           store,
		lister:          lister,
		refreshInterval: refreshInterval,
		now:             time.Now,
		logger:          logger.Named("friend_cache"),
		records:         make(map[string]*entry),
		ops:             make(chan func(ctx context.Context)),
		results:         make(chan fetchResult),
		stopped:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run processes cache operations and fetch results until ctx is cancelled.
// In-flight fetches are cancelled and awaited before Run returns.
func (c *Cache) Run(ctx context.Context) error {
	defer close(c.stopped)

	c.logger.Info("Friend cache started",
		zap.Duration("refreshInterval", c.refreshInterval))

	for {
		select {
		case <-ctx.Done():
			c.fetches.Wait()
			c.logger.Info("Friend cache stopped", zap.Int("records", len(c.records)))
			return ctx.Err()
		case op := <-c.ops:
			op(ctx)
		case result := <-c.results:
			c.handleResult(ctx, result)
		}
	}
}

// TryFind returns the record for steamID if it is ready to be trusted.
//
// A resident record is returned directly; if it has gone stale a refresh is
// started in the background. Otherwise the persisted record is loaded: a
// fresh one is returned, a stale one triggers a refresh and reports absent.
// With nothing persisted, a placeholder is registered and persisted, a fetch
// is started and absent is reported. Only one fetch per owner is ever in
// flight.
func (c *Cache) TryFind(ctx context.Context, steamID string) (*Record, bool) {
	var (
		record *Record
		found  bool
	)

	err := c.do(ctx, func(runCtx context.Context) {
		record, found = c.tryFind(runCtx, steamID)
	})
	if err != nil {
		return nil, false
	}

	return record, found
}

// Find returns the resident record for steamID without touching the store
// or starting a fetch. Placeholders and records awaiting refresh are returned too.
func (c *Cache) Find(ctx context.Context, steamID string) (*Record, bool) {
	var (
		record *Record
		found  bool
	)

	err := c.do(ctx, func(context.Context) {
		if e, ok := c.records[steamID]; ok {
			record, found = e.record.clone(), true
		}
	})
	if err != nil {
		return nil, false
	}

	return record, found
}

// IsFriendOf reports whether the resident record of ownerID lists friendID.
// Absent records report false.
func (c *Cache) IsFriendOf(ctx context.Context, ownerID, friendID string) bool {
	var result bool

	err := c.do(ctx, func(context.Context) {
		if e, ok := c.records[ownerID]; ok {
			result = e.hasFriend(friendID)
		}
	})

	return err == nil && result
}

// Remove evicts the resident record for steamID, if any.
// A fetch still in flight for it will be dropped on completion.
func (c *Cache) Remove(ctx context.Context, steamID string) {
	_ = c.do(ctx, func(context.Context) {
		c.remove(steamID)
	})
}

// MergeFetchResult replaces the friend list of the resident record for
// steamID and persists it. Results for owners that are not resident are dropped.
func (c *Cache) MergeFetchResult(ctx context.Context, steamID string, friendIDs []string) {
	_ = c.do(ctx, func(runCtx context.Context) {
		c.merge(runCtx, steamID, friendIDs)
	})
}

// Len returns the number of resident records.
func (c *Cache) Len(ctx context.Context) int {
	var n int

	_ = c.do(ctx, func(context.Context) {
		n = len(c.records)
	})

	return n
}

// do runs op on the cache loop and waits for it to finish.
func (c *Cache) do(ctx context.Context, op func(ctx context.Context)) error {
	done := make(chan struct{})
	wrapped := func(runCtx context.Context) {
		defer close(done)
		op(runCtx)
	}

	select {
	case c.ops <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) tryFind(ctx context.Context, steamID string) (*Record, bool) {
	if steamID == "" {
		return nil, false
	}

	if e, ok := c.records[steamID]; ok {
		if !e.pending && c.isStale(&e.record) {
			c.dispatch(ctx, e)
		}

		if !e.ready {
			return nil, false
		}

		return e.record.clone(), true
	}

	if record, ok := c.store.Read(ctx, steamID); ok {
		e := newEntry(*record)
		c.records[steamID] = e

		if c.isStale(&e.record) {
			c.logger.Debug("Loaded stale friend record",
				zap.String("steamID", steamID),
				zap.Time("lastUpdated", e.record.UpdatedAt()))
			c.dispatch(ctx, e)
			return nil, false
		}

		e.ready = true

		return e.record.clone(), true
	}

	// Register a placeholder so concurrent lookups do not start another fetch
	e := newEntry(Record{
		OwnerID:     steamID,
		LastUpdated: c.now().Unix(),
		Friends:     []string{},
	})
	c.records[steamID] = e

	if err := c.store.Write(ctx, &e.record); err != nil {
		c.logger.Warn("Failed to persist placeholder record",
			zap.String("steamID", steamID),
			zap.Error(err))
	}

	c.dispatch(ctx, e)

	return nil, false
}

// isStale reports whether record is older than the refresh interval.
func (c *Cache) isStale(record *Record) bool {
	return c.now().Unix() > record.LastUpdated+int64(c.refreshInterval/time.Second)
}

// dispatch starts a background fetch for e and marks it pending.
func (c *Cache) dispatch(ctx context.Context, e *entry) {
	e.pending = true
	ownerID := e.record.OwnerID

	c.fetches.Add(1)
	go func() {
		defer c.fetches.Done()

		friendIDs, err := c.lister.GetFriendIDs(ctx, ownerID)

		select {
		case c.results <- fetchResult{ownerID: ownerID, friendIDs: friendIDs, err: err}:
		case <-ctx.Done():
		}
	}()

	c.logger.Debug("Requested friend list", zap.String("steamID", ownerID))
}

func (c *Cache) handleResult(ctx context.Context, result fetchResult) {
	if e, ok := c.records[result.ownerID]; ok {
		e.pending = false
	}

	if result.err != nil {
		c.logger.Warn("Failed to fetch friend list",
			zap.String("steamID", result.ownerID),
			zap.Error(result.err))
		return
	}

	c.merge(ctx, result.ownerID, result.friendIDs)
}

func (c *Cache) merge(ctx context.Context, steamID string, friendIDs []string) {
	old, ok := c.records[steamID]
	if !ok {
		c.logger.Debug("Dropping friend list for untracked user", zap.String("steamID", steamID))
		return
	}

	updated := newEntry(Record{
		OwnerID:     steamID,
		LastUpdated: c.now().Unix(),
		Friends:     friendIDs,
	})
	updated.ready = true
	updated.pending = old.pending

	c.remove(steamID)
	c.records[steamID] = updated

	if err := c.store.Write(ctx, &updated.record); err != nil {
		c.logger.Warn("Failed to persist friend record",
			zap.String("steamID", steamID),
			zap.Error(err))
	}

	c.logger.Debug("Updated friend record",
		zap.String("steamID", steamID),
		zap.Int("friendCount", len(updated.record.Friends)))
}

func (c *Cache) remove(steamID string) {
	delete(c.records, steamID)
}
