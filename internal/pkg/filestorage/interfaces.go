package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key does not exist in the store
var ErrNotFound = errors.New("blob not found")

// BlobStorage stores dossier documents under opaque keys
type BlobStorage interface {
	// Put writes the content of r under key
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a time limited download link for key
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// GenerateKey builds the storage key of a document: <applicationID>/<unix millis>_<file name>
func GenerateKey(applicationID uuid.UUID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s", applicationID, now.UnixMilli(), sanitizeName(filename))
}

// sanitizeName keeps the base name and drops characters that would escape the key prefix
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r < 0x20:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "document.pdf"
	}
	return name
}
