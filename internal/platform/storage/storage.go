// Package storage keeps uploaded image bytes, on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid blob name")

// BlobStore persists uploaded files under server-generated names.
type BlobStore interface {
	// Save stores content under name and returns the path recorded on the image.
	Save(ctx context.Context, name string, content io.ReadSeeker, size int64, contentType string) (string, error)
	// Delete removes a previously saved blob. Missing blobs are not an error.
	Delete(ctx context.Context, storedPath string) error
	// URL builds the absolute address of storedPath. base is scheme://host of the inbound request.
	URL(base, storedPath string) string
}

// checkName rejects anything that could escape the storage root.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}
