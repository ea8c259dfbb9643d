package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// LogRepository is a bounded, append-only log of operational events.
type LogRepository interface {
	Append(ctx context.Context, entries ...model.LogEntry) error
	// Recent returns the retained entries newest first, or common.ErrNotFound
	// when the log has never been written.
	Recent(ctx context.Context) ([]model.LogEntry, error)
}

type redisLogRepository struct {
	rdb      redis.Cmdable
	key      string
	capacity int64
}

// NewRedisLogRepository keeps at most capacity entries in the list at key.
func NewRedisLogRepository(rdb redis.Cmdable, key string, capacity int) LogRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &redisLogRepository{rdb: rdb, key: key, capacity: int64(capacity)}
}

// Append expects entries oldest first; the newest ends up at the head of the list.
func (r *redisLogRepository) Append(ctx context.Context, entries ...model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("redisLogRepository.Append marshal: %w", err)
		}
		values = append(values, b)
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, values...)
		pipe.LTrim(ctx, r.key, 0, r.capacity-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisLogRepository.Append: %w", err)
	}
	return nil
}

func (r *redisLogRepository) Recent(ctx context.Context) ([]model.LogEntry, error) {
	n, err := r.rdb.Exists(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redisLogRepository.Recent exists: %w", err)
	}
	if n == 0 {
		return nil, common.ErrNotFound
	}

	raw, err := r.rdb.LRange(ctx, r.key, 0, r.capacity-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redisLogRepository.Recent: %w", err)
	}

	entries := make([]model.LogEntry, 0, len(raw))
	for _, s := range raw {
		var e model.LogEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue // foreign or truncated line
		}
		entries = append(entries, e)
	}
	return entries, nil
}
