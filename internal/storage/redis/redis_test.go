package redis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/steamfriends/internal/storage"
	storageRedis "github.com/robalyx/steamfriends/internal/storage/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) (*storageRedis.Backend, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return storageRedis.New(client, zap.NewNop()), mr
}

func TestBackend(t *testing.T) {
	t.Parallel()

	backend, mr := setupTest(t)
	ctx := t.Context()

	_, err := backend.Get(ctx, "SteamFriends/friendInfo_1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, backend.Put(ctx, "SteamFriends/friendInfo_1", []byte(`{"ownerID":"1"}`)))

	got, err := backend.Get(ctx, "SteamFriends/friendInfo_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ownerID":"1"}`, string(got))

	raw, err := mr.Get(storageRedis.KeyPrefix + "SteamFriends/friendInfo_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ownerID":"1"}`, raw)

	require.NoError(t, backend.Put(ctx, "SteamFriends/friendInfo_1", []byte(`{"ownerID":"2"}`)))
	got, err = backend.Get(ctx, "SteamFriends/friendInfo_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ownerID":"2"}`, string(got))

	require.ErrorIs(t, backend.Put(ctx, "", nil), storage.ErrInvalidKey)
}
