package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"

	"github.com/google/uuid"
)

type MessageService struct {
	repo         repository.MessageRepository
	storeTimeout time.Duration
	now          func() time.Time
}

func NewMessageService(repo repository.MessageRepository, storeTimeout time.Duration) *MessageService {
	return &MessageService{repo: repo, storeTimeout: storeTimeout, now: time.Now}
}

type CreateMessageRequest struct {
	Text string `json:"text"`
}

func (s *MessageService) Create(ctx context.Context, req CreateMessageRequest) (*model.Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		var fe fieldErrors
		fe.add("text", "is required")
		return nil, fe.err()
	}

	msg := &model.Message{
		ID:   uuid.NewString(),
		Text: req.Text,
		// Postgres keeps microseconds; truncate so the stored value round-trips exactly.
		Timestamp: s.now().UTC().Truncate(time.Microsecond),
	}

	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.repo.Create(sctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	return msg, nil
}

// List returns every message, newest first. There is no page limit.
func (s *MessageService) List(ctx context.Context) ([]model.Message, error) {
	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	msgs, err := s.repo.ListNewestFirst(sctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return msgs, nil
}
