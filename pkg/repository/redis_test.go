package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := NewRedisRepositoryFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { repo.Close() })
	return repo, mr
}

func TestRedisJSONRoundTrip(t *testing.T) {
	repo, mr := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))

	type report struct {
		Daily string `json:"daily"`
	}

	var got report
	assert.ErrorIs(t, repo.GetJSON(ctx, "analytics:2026-01-01", &got), ErrCacheMiss)

	require.NoError(t, repo.SetJSON(ctx, "analytics:2026-01-01", report{Daily: "30.00"}, time.Minute))
	require.NoError(t, repo.GetJSON(ctx, "analytics:2026-01-01", &got))
	assert.Equal(t, "30.00", got.Daily)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.GetJSON(ctx, "analytics:2026-01-01", &got), ErrCacheMiss)

	require.NoError(t, repo.SetJSON(ctx, "k", report{}, 0))
	require.NoError(t, repo.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisHitWindow(t *testing.T) {
	repo, mr := newTestRedis(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Hit(ctx, "rate:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, time.Minute, mr.TTL("rate:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	got, err := repo.Hit(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got)
}

func TestRedisCounters(t *testing.T) {
	repo, _ := newTestRedis(t)
	ctx := context.Background()

	n, err := repo.GetInt(ctx, "analytics:generation")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.Incr(ctx, "analytics:generation")
	require.NoError(t, err)
	n, err = repo.GetInt(ctx, "analytics:generation")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
