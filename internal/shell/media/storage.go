// Package media stores uploaded files (product photos, payment proofs) on
// local disk or in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	// ErrUnsupportedType is returned when an upload is not an allowed type.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("file is empty")

	// ErrInvalidKey is returned for keys that escape the storage root.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage persists media objects by key.
type Storage interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a storage backend.
type Config struct {
	// Driver is "local" or "s3".
	Driver string

	// Dir is the root directory for the local driver.
	Dir string

	// BaseURL is the URL prefix local files are served under.
	BaseURL string

	S3 S3Config
}

// NewStorage creates the storage backend named by cfg.Driver.
func NewStorage(ctx context.Context, cfg Config, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.Dir, cfg.BaseURL, logger)
	case "s3":
		return NewS3Storage(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unsupported media driver: %s", cfg.Driver)
	}
}
