package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"
	"msgboard/internal/domain/repository/repotest"
	"msgboard/internal/logging"
	"msgboard/internal/platform/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newImageService(t *testing.T, repo repository.ImageRepository) (*ImageService, string) {
	t.Helper()
	dir := t.TempDir()
	disk, err := storage.NewDiskStore(dir, "uploads")
	require.NoError(t, err)
	return NewImageService(repo, disk, logging.Nop(), 0, time.Second), dir
}

func pngInput(name string) UploadInput {
	return UploadInput{OriginalName: name, Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)}
}

func TestImageService_Upload(t *testing.T) {
	svc, dir := newImageService(t, repotest.NewMemoryImageRepository())
	uid := "user-1"
	in := pngInput("My Holiday Photo.PNG")
	in.UserID = &uid

	img, err := svc.Upload(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, "My Holiday Photo.PNG", img.OriginalName)
	assert.Equal(t, "my-holiday-photo.png", img.DownloadName)
	assert.Equal(t, "uploads/"+img.Filename, img.Path)
	assert.NotContains(t, img.Filename, "Holiday")
	assert.Equal(t, ".png", filepath.Ext(img.Filename))
	require.NotNil(t, img.UserID)
	assert.Equal(t, uid, *img.UserID)

	stored, err := os.ReadFile(filepath.Join(dir, img.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	got, err := svc.Get(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Equal(t, img.Filename, got.Filename)

	svc.URLFor("https://example.com", got)
	assert.Equal(t, "https://example.com/uploads/"+img.Filename, got.URL)
}

func TestImageService_Upload_Rejections(t *testing.T) {
	svc, dir := newImageService(t, repotest.NewMemoryImageRepository())

	tests := []struct {
		name    string
		in      UploadInput
		message string
	}{
		{"executable", pngInput("payload.exe"), "Only image files are allowed (jpg, jpeg, png, gif, webp)"},
		{"no extension", pngInput("photo"), "Only image files are allowed (jpg, jpeg, png, gif, webp)"},
		{
			"too large",
			UploadInput{OriginalName: "photo.png", Size: 6 * 1024 * 1024, Content: bytes.NewReader(pngHeader)},
			"File too large (max 5MB)",
		},
		{
			"content mismatch",
			UploadInput{OriginalName: "photo.png", Size: 11, Content: bytes.NewReader([]byte("hello world"))},
			"File content is not a supported image",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))
			assert.Equal(t, tt.message, common.ClientMessage(err, true))
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave nothing on disk")
}

type failingImageRepo struct{ repository.ImageRepository }

func (failingImageRepo) Create(context.Context, *model.Image) error {
	return errors.New("connection reset")
}

func TestImageService_Upload_RemovesBlobWhenRecordFails(t *testing.T) {
	svc, dir := newImageService(t, failingImageRepo{})

	_, err := svc.Upload(context.Background(), pngInput("photo.png"))
	require.Error(t, err)
	assert.Equal(t, 500, common.HTTPStatusFromError(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageService_ListCapsNewestFirst(t *testing.T) {
	svc, _ := newImageService(t, repotest.NewMemoryImageRepository())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var last *model.Image
	for i := 0; i < 105; i++ {
		img, err := svc.Upload(context.Background(), pngInput(fmt.Sprintf("img-%d.png", i)))
		require.NoError(t, err)
		last = img
	}

	imgs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, imgs, MaxListedImages)
	assert.Equal(t, last.ID, imgs[0].ID)
	assert.Equal(t, "img-104.png", imgs[0].DownloadName)
	for i := 1; i < len(imgs); i++ {
		assert.True(t, imgs[i-1].UploadedAt.After(imgs[i].UploadedAt))
	}
	assert.Equal(t, "img-5.png", imgs[len(imgs)-1].OriginalName)
}

func TestImageService_GetMissing(t *testing.T) {
	svc, _ := newImageService(t, repotest.NewMemoryImageRepository())

	_, err := svc.Get(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Equal(t, "Image not found", common.ClientMessage(err, true))
}
