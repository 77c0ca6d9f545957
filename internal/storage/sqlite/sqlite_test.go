package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/robalyx/steamfriends/internal/storage"
	"github.com/robalyx/steamfriends/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBackend(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "records.db")
	backend, err := sqlite.New(path, zap.NewNop())
	require.NoError(t, err)

	ctx := t.Context()

	_, err = backend.Get(ctx, "SteamFriends/friendInfo_1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, backend.Put(ctx, "SteamFriends/friendInfo_1", []byte(`{"friends":["2"]}`)))
	require.NoError(t, backend.Put(ctx, "SteamFriends/friendInfo_1", []byte(`{"friends":["3"]}`)))

	got, err := backend.Get(ctx, "SteamFriends/friendInfo_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"friends":["3"]}`, string(got))

	require.NoError(t, backend.Close())

	// Values survive reopening the database
	reopened, err := sqlite.New(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.Get(ctx, "SteamFriends/friendInfo_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"friends":["3"]}`, string(got))
}
