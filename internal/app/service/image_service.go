package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"
	"msgboard/internal/logging"
	"msgboard/internal/platform/storage"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	DefaultMaxUploadBytes = 5 * 1024 * 1024
	MaxListedImages       = 100
	sniffLen              = 512
)

var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true,
}

type ImageService struct {
	repo         repository.ImageRepository
	blobs        storage.BlobStore
	log          logging.Logger
	maxBytes     int64
	storeTimeout time.Duration
	now          func() time.Time
}

func NewImageService(
	repo repository.ImageRepository,
	blobs storage.BlobStore,
	log logging.Logger,
	maxBytes int64,
	storeTimeout time.Duration,
) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ImageService{
		repo:         repo,
		blobs:        blobs,
		log:          log,
		maxBytes:     maxBytes,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// MaxBytes is the largest accepted upload.
func (s *ImageService) MaxBytes() int64 { return s.maxBytes }

// UploadInput is one received file. Content must be positioned at the start.
type UploadInput struct {
	OriginalName string
	Size         int64
	Content      io.ReadSeeker
	UserID       *string
}

// IsAllowedImageName reports whether the client-supplied name carries an allowed extension.
func IsAllowedImageName(name string) bool {
	return allowedExtensions[extension(name)]
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func (s *ImageService) TooLargeError() error {
	return common.NewError(common.ErrValidation, fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
}

func (s *ImageService) Upload(ctx context.Context, in UploadInput) (*model.Image, error) {
	if !IsAllowedImageName(in.OriginalName) {
		return nil, common.NewError(common.ErrValidation, "Only image files are allowed (jpg, jpeg, png, gif, webp)")
	}
	if in.Size > s.maxBytes {
		return nil, s.TooLargeError()
	}

	mimeType, err := sniff(in.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if !allowedContentTypes[mimeType] {
		return nil, common.NewError(common.ErrValidation, "File content is not a supported image")
	}

	ext := extension(in.OriginalName)
	name := uuid.NewString() + "." + ext

	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	storedPath, err := s.blobs.Save(sctx, name, in.Content, in.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	img := &model.Image{
		ID:           uuid.NewString(),
		Filename:     name,
		OriginalName: in.OriginalName,
		Path:         storedPath,
		Size:         in.Size,
		MimeType:     mimeType,
		UserID:       in.UserID,
		UploadedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(sctx, img); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), storedPath); delErr != nil {
			s.log.Warn(ctx, "failed to remove orphaned upload", "path", storedPath, "err", delErr)
		}
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	s.log.Info(ctx, "image uploaded", "image_id", img.ID, "size", img.Size, "mime_type", mimeType)
	img.DownloadName = downloadName(img)
	return img, nil
}

// List returns up to MaxListedImages images, most recent first.
func (s *ImageService) List(ctx context.Context) ([]model.Image, error) {
	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	imgs, err := s.repo.ListRecent(sctx, MaxListedImages)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}
	for i := range imgs {
		imgs[i].DownloadName = downloadName(&imgs[i])
	}
	return imgs, nil
}

func (s *ImageService) Get(ctx context.Context, id string) (*model.Image, error) {
	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	img, err := s.repo.FindByID(sctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Image not found")
		}
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	img.DownloadName = downloadName(img)
	return img, nil
}

// URLFor fills img.URL using the scheme and host the client used.
func (s *ImageService) URLFor(base string, img *model.Image) {
	img.URL = s.blobs.URL(base, img.Path)
}

func sniff(r io.ReadSeeker) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func downloadName(img *model.Image) string {
	base := strings.TrimSuffix(img.OriginalName, filepath.Ext(img.OriginalName))
	name := slug.Make(base)
	if name == "" {
		name = "image"
	}
	return name + "." + extension(img.Filename)
}
