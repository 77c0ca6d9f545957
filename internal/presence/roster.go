// Package presence tracks which Steam users are currently connected.
package presence

import (
	"context"
	"slices"
	"sync"
)

// Roster is the set of currently connected users.
type Roster interface {
	// Connect marks steamID as online.
	Connect(ctx context.Context, steamID string) error
	// Disconnect marks steamID as offline.
	Disconnect(ctx context.Context, steamID string) error
	// Online returns every connected user ID in ascending order.
	Online(ctx context.Context) ([]string, error)
}

// MemoryRoster is a process-local Roster.
type MemoryRoster struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

// NewMemoryRoster creates an empty in-memory roster.
func NewMemoryRoster() *MemoryRoster {
	return &MemoryRoster{online: make(map[string]struct{})}
}

func (r *MemoryRoster) Connect(_ context.Context, steamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.online[steamID] = struct{}{}
	return nil
}

func (r *MemoryRoster) Disconnect(_ context.Context, steamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.online, steamID)
	return nil
}

func (r *MemoryRoster) Online(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.online))
	for id := range r.online {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids, nil
}
