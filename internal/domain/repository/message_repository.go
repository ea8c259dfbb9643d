package repository

import (
	"context"
	"database/sql"
	"fmt"

	"msgboard/internal/domain/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListNewestFirst returns every message ordered by timestamp descending.
	ListNewestFirst(ctx context.Context) ([]model.Message, error)
}

type pgMessageRepository struct {
	db *sql.DB
}

func NewPgMessageRepository(db *sql.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

func (r *pgMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (id, text, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, msg.ID, msg.Text, msg.Timestamp); err != nil {
		return fmt.Errorf("pgMessageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) ListNewestFirst(ctx context.Context) ([]model.Message, error) {
	query := `SELECT id, text, created_at FROM messages ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListNewestFirst: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.ListNewestFirst scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListNewestFirst rows: %w", err)
	}
	return messages, nil
}
