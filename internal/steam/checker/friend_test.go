package checker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/steam/checker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// staticRecords maps owner IDs to friend IDs.
type staticRecords map[string][]string

func (s staticRecords) IsFriendOf(_ context.Context, ownerID, friendID string) bool {
	for _, id := range s[ownerID] {
		if id == friendID {
			return true
		}
	}
	return false
}

type brokenRoster struct {
	presence.Roster
}

func (brokenRoster) Online(context.Context) ([]string, error) {
	return nil, errors.New("redis unavailable")
}

func TestIsFriend(t *testing.T) {
	t.Parallel()

	records := staticRecords{
		"A":  {"B"},
		"B":  {},
		"U1": {"U2", "U3"},
	}
	c := checker.NewFriendChecker(records, presence.NewMemoryRoster(), zap.NewNop())
	ctx := t.Context()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "listed on owner side", a: "A", b: "B", want: true},
		{name: "listed only on other side", a: "B", b: "A", want: true},
		{name: "listed friend", a: "U1", b: "U2", want: true},
		{name: "unlisted friend", a: "U1", b: "U9", want: false},
		{name: "both unknown", a: "X", b: "Y", want: false},
		{name: "self", a: "A", b: "A", want: false},
		{name: "empty id", a: "", b: "B", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsFriend(ctx, tt.a, tt.b))
		})
	}
}

func TestOnlineFriendsOf(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	roster := presence.NewMemoryRoster()
	for _, id := range []string{"A", "B", "C", "D"} {
		require.NoError(t, roster.Connect(ctx, id))
	}

	records := staticRecords{
		"A": {"B", "Z"},
		"C": {"A"},
	}
	c := checker.NewFriendChecker(records, roster, zap.NewNop())

	assert.Equal(t, []string{"B", "C"}, c.OnlineFriendsOf(ctx, "A"))
	assert.Equal(t, []string{"A"}, c.OnlineFriendsOf(ctx, "C"))
	assert.Empty(t, c.OnlineFriendsOf(ctx, "D"))
}

func TestOnlineFriendsOfRosterFailure(t *testing.T) {
	t.Parallel()

	c := checker.NewFriendChecker(staticRecords{"A": {"B"}}, brokenRoster{}, zap.NewNop())

	friends := c.OnlineFriendsOf(t.Context(), "A")
	assert.NotNil(t, friends)
	assert.Empty(t, friends)
}
