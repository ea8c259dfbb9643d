package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlocklist remembers revoked token ids until the token would have expired anyway.
type TokenBlocklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenBlocklist struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisTokenBlocklist(rdb redis.Cmdable, prefix string) TokenBlocklist {
	return &redisTokenBlocklist{rdb: rdb, prefix: prefix, now: time.Now}
}

func (b *redisTokenBlocklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.rdb.Set(ctx, b.prefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redisTokenBlocklist.Revoke: %w", err)
	}
	return nil
}

func (b *redisTokenBlocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.rdb.Exists(ctx, b.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redisTokenBlocklist.IsRevoked: %w", err)
	}
	return n > 0, nil
}
