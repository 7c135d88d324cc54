package filestorage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidSignature is returned for tampered or expired local download links
var ErrInvalidSignature = errors.New("invalid or expired signature")

// LocalStorage handles saving files to the local filesystem.
// Download links point back at the API and are signed with an HMAC of key and expiry.
type LocalStorage struct {
	basePath string
	baseURL  string
	secret   []byte
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the directory on the server; baseURL is the public prefix of the download route.
func NewLocalStorage(basePath, baseURL, secret string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   []byte(secret),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// path resolves key inside basePath and refuses keys that climb out of it
func (ls *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(ls.basePath, clean), nil
}

// Put writes r to basePath/key
func (ls *LocalStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	dstPath, err := ls.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to save file content: %w", err)
	}

	ls.logger.Debug().Str("key", key).Int64("size", size).Msg("File saved")
	return nil
}

// Delete removes a stored file. A missing file counts as deleted.
func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := ls.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			ls.logger.Warn().Str("key", key).Msg("File to delete does not exist")
			return nil
		}
		ls.logger.Error().Err(err).Str("key", key).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Open returns a reader over a stored file
func (ls *LocalStorage) Open(key string) (*os.File, error) {
	p, err := ls.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

// SignedURL returns <baseURL>/<escaped key>?expires=<unix>&signature=<hmac>.
// The signature covers the raw key, which is what the router hands back after decoding.
func (ls *LocalStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, err := ls.path(key); err != nil {
		return "", err
	}
	expires := ls.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", ls.sign(key, expires))
	return ls.baseURL + "/" + escapeKey(key) + "?" + q.Encode(), nil
}

// escapeKey escapes every path segment of key so file names can carry '#', '?' or '%'
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// Verify checks a link produced by SignedURL
func (ls *LocalStorage) Verify(key, expires, signature string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || ls.now().Unix() > exp {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(ls.sign(key, exp)), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func (ls *LocalStorage) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, ls.secret)
	mac.Write([]byte(key + "\n" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
