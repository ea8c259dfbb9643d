package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore writes blobs into a directory that is also served over HTTP
// under /<prefix>/.
type DiskStore struct {
	dir    string
	prefix string
}

func NewDiskStore(dir, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *DiskStore) Save(ctx context.Context, name string, content io.ReadSeeker, size int64, contentType string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	full := filepath.Join(s.dir, name)

	// O_EXCL: generated names never overwrite an existing file.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("DiskStore.Save create: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("DiskStore.Save copy: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("DiskStore.Save close: %w", err)
	}
	return path.Join(s.prefix, name), nil
}

func (s *DiskStore) Delete(ctx context.Context, storedPath string) error {
	name := path.Base(storedPath)
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("DiskStore.Delete: %w", err)
	}
	return nil
}

func (s *DiskStore) URL(base, storedPath string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(storedPath, "/")
}

// Prefix is the URL path the files are served under, without slashes.
func (s *DiskStore) Prefix() string { return s.prefix }

// Handler serves the stored files; mount it under /<prefix>/.
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix("/"+s.prefix+"/", http.FileServer(http.Dir(s.dir)))
}
