package counselors

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoster(t *testing.T) (*RosterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRosterStore(client, time.Hour), mr
}

func TestRosterCheckInAndList(t *testing.T) {
	store, _ := newTestRoster(t)
	ctx := context.Background()

	first, err := store.CheckIn(ctx, Counselor{
		Name:     "Dana",
		Email:    "dana@example.org",
		OnDutyAt: time.Now().UTC().Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := store.CheckIn(ctx, Counselor{Name: "Riley", Phone: "+15550002222"})
	require.NoError(t, err)

	roster, err := store.OnDuty(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	// Oldest shift first.
	assert.Equal(t, first.ID, roster[0].ID)
	assert.Equal(t, second.ID, roster[1].ID)
}

func TestRosterCheckInRefreshesExisting(t *testing.T) {
	store, _ := newTestRoster(t)
	ctx := context.Background()

	c, err := store.CheckIn(ctx, Counselor{ID: "c-1", Name: "Dana", Email: "dana@example.org"})
	require.NoError(t, err)

	c.Phone = "+15550003333"
	_, err = store.CheckIn(ctx, c)
	require.NoError(t, err)

	roster, err := store.OnDuty(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "+15550003333", roster[0].Phone)
}

func TestRosterCheckOut(t *testing.T) {
	store, _ := newTestRoster(t)
	ctx := context.Background()

	c, err := store.CheckIn(ctx, Counselor{Name: "Dana", Email: "dana@example.org"})
	require.NoError(t, err)

	require.NoError(t, store.CheckOut(ctx, c.ID))

	roster, err := store.OnDuty(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestRosterValidation(t *testing.T) {
	store, _ := newTestRoster(t)
	ctx := context.Background()

	_, err := store.CheckIn(ctx, Counselor{Email: "x@example.org"})
	require.Error(t, err)

	_, err = store.CheckIn(ctx, Counselor{Name: "No Contact"})
	require.Error(t, err)

	require.Error(t, store.CheckOut(ctx, ""))
}

func TestRosterExpiresWithTTL(t *testing.T) {
	store, mr := newTestRoster(t)
	ctx := context.Background()

	_, err := store.CheckIn(ctx, Counselor{Name: "Dana", Email: "dana@example.org"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	roster, err := store.OnDuty(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)
}
