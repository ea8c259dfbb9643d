package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveServeDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	stored, err := store.Save(ctx, "abc.png", strings.NewReader("pngbytes"), 8, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/abc.png", stored)

	b, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "pngbytes", string(b))

	assert.Equal(t, "http://example.com/uploads/abc.png", store.URL("http://example.com/", stored))

	rr := httptest.NewRecorder()
	store.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/abc.png", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, "pngbytes", string(body))

	require.NoError(t, store.Delete(ctx, stored))
	_, err = os.Stat(filepath.Join(dir, "abc.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, stored), "deleting twice is fine")
}

func TestDiskStore_NeverOverwrites(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.png", strings.NewReader("1"), 1, "image/png")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "a.png", strings.NewReader("2"), 1, "image/png")
	assert.Error(t, err)
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../x.png", "a/b.png", `a\b.png`} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"), 1, "image/png")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}
