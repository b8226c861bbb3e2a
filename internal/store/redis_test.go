package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreFromClient(client)
}

func TestGetSetJSON(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetJSON(ctx, IncidentKey("INC-1"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SetJSON(ctx, IncidentKey("INC-1"), []byte(`{"status":"detecting"}`), time.Hour))

	data, ok, err := s.GetJSON(ctx, IncidentKey("INC-1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"status":"detecting"}`, string(data))
}

func TestIncrResetsTTL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.Incr(ctx, FlapCountKey("link-A"), time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	v, err = s.Incr(ctx, FlapCountKey("link-A"), time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), v)

	ttl, err := s.client.TTL(ctx, FlapCountKey("link-A")).Result()
	require.NoError(t, err)
	require.Equal(t, time.Minute, ttl)
}

func TestPushFrontTrims(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := FlapHistoryKey("link-A")

	for i := 0; i < 5; i++ {
		require.NoError(t, s.PushFront(ctx, key, "ts", 3, time.Minute))
	}

	members, err := s.ListRange(ctx, key, 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 3)
}

func TestZAddAndRangeByScore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := CorrelationGroupKey("same-link-multiple-metrics", "link-A")

	require.NoError(t, s.ZAdd(ctx, key, 100, "alert-1", time.Minute))
	require.NoError(t, s.ZAdd(ctx, key, 200, "alert-2", time.Minute))
	require.NoError(t, s.ZAdd(ctx, key, 300, "alert-3", time.Minute))

	members, err := s.ZRangeByScore(ctx, key, 150, 300)
	require.NoError(t, err)
	require.Equal(t, []string{"alert-2", "alert-3"}, members)
}

func TestSAddSPopDrainsFreeSetFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := BSIDFreeSetKey("PE-SJ")

	require.NoError(t, s.SAdd(ctx, key, "24007"))

	member, ok, err := s.SPop(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "24007", member)

	_, ok, err = s.SPop(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteIsNotErrorOnMissingKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, IncidentKey("does-not-exist")))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
