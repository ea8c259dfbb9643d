package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisLogRepository_MissingLogIsNotFound(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisLogRepository(rdb, "ops:log", 10)

	_, err := repo.Recent(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRedisLogRepository_BoundedNewestFirst(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisLogRepository(rdb, "ops:log", 5)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 8; i++ {
		require.NoError(t, repo.Append(ctx, model.LogEntry{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Level:     model.LogLevelInfo,
			Message:   fmt.Sprintf("event %d", i),
		}))
	}

	entries, err := repo.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "event 7", entries[0].Message)
	assert.Equal(t, "event 3", entries[4].Message)
}

func TestRedisLogRepository_BatchKeepsOrder(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisLogRepository(rdb, "ops:log", 100)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx,
		model.LogEntry{Message: "a", Level: "info"},
		model.LogEntry{Message: "b", Level: "error"},
	))

	entries, err := repo.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "a", entries[1].Message)
}

func TestRedisLogRepository_SkipsGarbage(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewRedisLogRepository(rdb, "ops:log", 100)
	ctx := context.Background()

	require.NoError(t, rdb.LPush(ctx, "ops:log", "not json").Err())
	require.NoError(t, repo.Append(ctx, model.LogEntry{Message: "ok"}))

	entries, err := repo.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Message)
}

func TestRedisLogRepository_Unavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewRedisLogRepository(rdb, "ops:log", 100)
	mr.Close()

	_, err := repo.Recent(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestRedisTokenBlocklist(t *testing.T) {
	mr, rdb := newTestRedis(t)
	bl := NewRedisTokenBlocklist(rdb, "revoked:")
	ctx := context.Background()

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry must expire with the token")
}

func TestRedisTokenBlocklist_AlreadyExpiredIsNoop(t *testing.T) {
	mr, rdb := newTestRedis(t)
	bl := NewRedisTokenBlocklist(rdb, "revoked:")

	require.NoError(t, bl.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked:old"))
}
