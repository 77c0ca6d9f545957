package presence_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisRoster(t *testing.T) *presence.RedisRoster {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return presence.NewRedisRoster(client, zap.NewNop())
}

func TestRosters(t *testing.T) {
	t.Parallel()

	rosters := map[string]presence.Roster{
		"memory": presence.NewMemoryRoster(),
		"redis":  newRedisRoster(t),
	}

	for name, roster := range rosters {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			online, err := roster.Online(ctx)
			require.NoError(t, err)
			assert.Empty(t, online)

			require.NoError(t, roster.Connect(ctx, "B"))
			require.NoError(t, roster.Connect(ctx, "A"))
			require.NoError(t, roster.Connect(ctx, "A"))

			online, err = roster.Online(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B"}, online)

			require.NoError(t, roster.Disconnect(ctx, "A"))
			require.NoError(t, roster.Disconnect(ctx, "missing"))

			online, err = roster.Online(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"B"}, online)
		})
	}
}

func TestRedisRosterReset(t *testing.T) {
	t.Parallel()

	roster := newRedisRoster(t)
	ctx := t.Context()

	require.NoError(t, roster.Connect(ctx, "A"))
	require.NoError(t, roster.Reset(ctx))

	online, err := roster.Online(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}
