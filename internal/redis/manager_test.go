package redis_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/robalyx/steamfriends/internal/redis"
	"github.com/robalyx/steamfriends/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagerReusesClients(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	host, portStr, _ := strings.Cut(mr.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	manager := redis.NewManager(&config.Redis{Host: host, Port: port}, zap.NewNop())
	defer manager.Close()

	first, err := manager.GetClient(redis.PresenceDBIndex)
	require.NoError(t, err)

	second, err := manager.GetClient(redis.PresenceDBIndex)
	require.NoError(t, err)
	assert.Same(t, first, second)

	ctx := t.Context()
	require.NoError(t, first.Do(ctx, first.B().Set().Key("k").Value("v").Build()).Error())

	mr.Select(redis.PresenceDBIndex)
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	// Closing twice must not panic
	manager.Close()
	manager.Close()
}
