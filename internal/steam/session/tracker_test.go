package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/steam/cache"
	"github.com/robalyx/steamfriends/internal/steam/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingFinder struct {
	mu    sync.Mutex
	calls []string
}

func (f *recordingFinder) TryFind(_ context.Context, steamID string) (*cache.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, steamID)
	return nil, false
}

func TestTrackerLifecycle(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	finder := &recordingFinder{}
	roster := presence.NewMemoryRoster()
	tracker := session.NewTracker(finder, roster, zap.NewNop())

	require.NoError(t, tracker.Connected(ctx, "U1"))
	require.NoError(t, tracker.Connected(ctx, "U2"))

	online, err := roster.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, online)
	assert.Equal(t, []string{"U1", "U2"}, finder.calls)

	require.NoError(t, tracker.Disconnected(ctx, "U1"))

	online, err = roster.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"U2"}, online)
	assert.Len(t, finder.calls, 2)
}

func TestTrackerRejectsEmptyID(t *testing.T) {
	t.Parallel()

	finder := &recordingFinder{}
	tracker := session.NewTracker(finder, presence.NewMemoryRoster(), zap.NewNop())

	require.ErrorIs(t, tracker.Connected(t.Context(), ""), session.ErrEmptySteamID)
	require.ErrorIs(t, tracker.Disconnected(t.Context(), ""), session.ErrEmptySteamID)
	assert.Empty(t, finder.calls)
}
