package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinexplorer/internal/pricing"
	"github.com/iliyamo/cinexplorer/internal/seatmap"
	"github.com/iliyamo/cinexplorer/internal/selection"
)

func draft() selection.Draft {
	b3 := seatmap.SeatID{Row: "B", Number: 3}
	b4 := seatmap.SeatID{Row: "B", Number: 4}
	return selection.Draft{
		SessionID:       "5",
		SelectedSeats:   []seatmap.SeatID{b3, b4},
		TicketTypes:     map[seatmap.SeatID]pricing.TicketType{b3: pricing.Full, b4: pricing.Half},
		TotalPriceCents: 3750,
	}
}

// exerciseStore runs the contract every Store implementation must meet.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, 1, 5)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, 1, 5, draft()))
	got, err := s.Load(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, draft(), got)

	// other users and sessions are isolated
	_, err = s.Load(ctx, 2, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load(ctx, 1, 6)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, 1, 5))
	_, err = s.Load(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, 1, 5))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	_, rdb := newRedis(t)
	exerciseStore(t, NewRedisStore(rdb, time.Minute, "test"))
}

func TestRedisStoreExpires(t *testing.T) {
	t.Parallel()
	mr, rdb := newRedis(t)
	s := NewRedisStore(rdb, 0, "")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 1, 5, draft()))
	assert.True(t, mr.Exists("cart:1:5"))
	assert.Equal(t, DefaultTTL, mr.TTL("cart:1:5"))

	mr.FastForward(DefaultTTL + time.Second)
	_, err := s.Load(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	t.Parallel()
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set("cart:1:5", "{not json"))
	_, err := NewRedisStore(rdb, time.Minute, "cart").Load(context.Background(), 1, 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
