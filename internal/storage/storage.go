// Package storage persists uploaded media and maps it to public urls.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/services"
)

// Category groups uploads by media type.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
)

var allowedExtensions = map[Category]map[string]bool{
	CategoryImage: {".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true},
	CategoryVideo: {".mp4": true, ".webm": true, ".mov": true},
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := allowedExtensions[c]; !ok {
		return "", services.InvalidInput("unknown upload category %q", s)
	}
	return c, nil
}

// BlobStore stores uploaded files and deletes them by url.
type BlobStore interface {
	// Store writes r under a fresh name in category and returns its public url.
	// filename only contributes its extension.
	Store(ctx context.Context, r io.Reader, filename string, category Category) (string, error)

	// Delete removes the blob behind url. Deleting a blob that is already gone
	// is not an error; a url this store did not issue is invalid input.
	Delete(ctx context.Context, url string) error
}

// objectKey returns "<category>/<uuid><ext>" for a new upload.
func objectKey(filename string, category Category) (string, error) {
	exts, ok := allowedExtensions[category]
	if !ok {
		return "", services.InvalidInput("unknown upload category %q", category)
	}
	ext := strings.ToLower(path.Ext(filename))
	if !exts[ext] {
		return "", services.InvalidInput("file type %q is not allowed for %s uploads", ext, category)
	}
	return string(category) + "/" + uuid.NewString() + ext, nil
}

// parseKey validates a "<category>/<name>" key taken from a url.
func parseKey(key string) (string, error) {
	category, name, ok := strings.Cut(key, "/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: not an uploaded file url", services.ErrInvalidInput)
	}
	if _, ok := allowedExtensions[Category(category)]; !ok {
		return "", fmt.Errorf("%w: not an uploaded file url", services.ErrInvalidInput)
	}
	return category + "/" + name, nil
}

var errForeignURL = fmt.Errorf("%w: url does not belong to this store", services.ErrInvalidInput)

// New returns the blob store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		return NewLocalStore(cfg.UploadDir)
	case config.StorageBackendS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
