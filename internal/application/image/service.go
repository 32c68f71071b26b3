package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/go-shop-nosql/internal/pkg/clock"
)

// KeyPrefix is the root of every stored image key; keys double as the public
// path under /uploads/.
const KeyPrefix = "uploads"

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

type Service interface {
	Upload(ctx context.Context, prefix string, input UploadInput) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	DeleteAll(ctx context.Context, keys []string)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	store objectStore
	clock clock.Clocker
}

func NewService(store objectStore, clk clock.Clocker) Service {
	if clk == nil {
		clk = clock.New()
	}
	return &service{store: store, clock: clk}
}

// Upload stores input under uploads/<prefix>/<unixnano>-<safe name> and
// returns the key.
func (s *service) Upload(ctx context.Context, prefix string, input UploadInput) (string, error) {
	safeName := sanitizeFilename(input.Filename)
	key := fmt.Sprintf("%s/%s/%d-%s", KeyPrefix, sanitizeFilename(prefix), s.clock.Now().UnixNano(), safeName)

	contentType := input.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromName(safeName)
	}

	// S3 needs a seekable body to sign the payload over plain HTTP.
	data, err := io.ReadAll(input.Reader)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", safeName, err)
	}
	if err := s.store.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("upload image %s: %w", safeName, err)
	}
	sum := sha256.Sum256(data)
	slog.Debug("image stored", "key", key, "size", len(data), "sha256", hex.EncodeToString(sum[:]))
	return key, nil
}

func (s *service) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.store.Download(ctx, strings.TrimPrefix(key, "/"))
}

// DeleteAll removes every key, logging failures instead of returning them.
func (s *service) DeleteAll(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			slog.Warn("failed to delete image", "key", key, "err", err)
		}
	}
}

func contentTypeFromName(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	}
	if ct := mime.TypeByExtension(path.Ext(lower)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// sanitizeFilename strips directory components and keeps only alphanumerics,
// dot, dash and underscore.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
