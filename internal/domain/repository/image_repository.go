package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ImageRepository interface {
	Create(ctx context.Context, img *model.Image) error
	FindByID(ctx context.Context, id string) (*model.Image, error)
	// ListRecent returns at most limit images, most recently uploaded first.
	ListRecent(ctx context.Context, limit int) ([]model.Image, error)
}

type pgImageRepository struct {
	db *sql.DB
}

func NewPgImageRepository(db *sql.DB) ImageRepository {
	return &pgImageRepository{db: db}
}

func (r *pgImageRepository) Create(ctx context.Context, img *model.Image) error {
	query := `INSERT INTO images (id, filename, original_name, path, size, mime_type, user_id, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.Filename, img.OriginalName, img.Path, img.Size, img.MimeType, img.UserID, img.UploadedAt)
	if err != nil {
		return fmt.Errorf("pgImageRepository.Create: %w", err)
	}
	return nil
}

const imageColumns = `id, filename, original_name, path, size, mime_type, user_id, uploaded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*model.Image, error) {
	img := &model.Image{}
	var userID sql.NullString
	if err := row.Scan(&img.ID, &img.Filename, &img.OriginalName, &img.Path, &img.Size, &img.MimeType, &userID, &img.UploadedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		img.UserID = &userID.String
	}
	return img, nil
}

func (r *pgImageRepository) FindByID(ctx context.Context, id string) (*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`
	img, err := scanImage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		// A malformed uuid cannot match any row.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgImageRepository.FindByID: %w", err)
	}
	return img, nil
}

func (r *pgImageRepository) ListRecent(ctx context.Context, limit int) ([]model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images ORDER BY uploaded_at DESC, id DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgImageRepository.ListRecent: %w", err)
	}
	defer rows.Close()

	images := []model.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("pgImageRepository.ListRecent scan: %w", err)
		}
		images = append(images, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgImageRepository.ListRecent rows: %w", err)
	}
	return images, nil
}
