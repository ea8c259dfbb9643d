package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"
)

// MaxLogEntries caps one log listing.
const MaxLogEntries = 100

type LogService struct {
	repo         repository.LogRepository
	storeTimeout time.Duration
}

func NewLogService(repo repository.LogRepository, storeTimeout time.Duration) *LogService {
	return &LogService{repo: repo, storeTimeout: storeTimeout}
}

// List returns at most MaxLogEntries entries of the given level, newest first.
// An empty level means all.
func (s *LogService) List(ctx context.Context, level string) ([]model.LogEntry, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = model.LogLevelAll
	}
	if !model.ValidLogLevel(level) {
		var fe fieldErrors
		fe.add("level", "must be one of all, error, warn, info, debug")
		return nil, fe.err()
	}

	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	entries, err := s.repo.Recent(sctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Log file not found")
		}
		return nil, common.WrapError(common.ErrNotFound, "Log source not available", err)
	}

	out := make([]model.LogEntry, 0, min(len(entries), MaxLogEntries))
	for _, e := range entries {
		if level != model.LogLevelAll && e.Level != level {
			continue
		}
		out = append(out, e)
		if len(out) == MaxLogEntries {
			break
		}
	}
	return out, nil
}
