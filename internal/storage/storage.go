package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/filesmanager/internal/config"
)

// ErrObjectNotFound is returned by Open when nothing is stored under the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines the interface for blob storage operations.
// Keys are produced by Key and are opaque to callers; derivatives are
// stored under the original key plus a suffix.
type Storage interface {
	// Key returns the storage key for a freshly generated object name
	Key(name string) string

	// Save stores content at key, replacing anything already there
	Save(ctx context.Context, key string, content io.Reader) error

	// Open returns the content stored at key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key
	Delete(ctx context.Context, key string) error
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverLocal, "":
		slog.Info("initializing local storage", "root", c.FolderPath)
		return NewLocalStorage(c.FolderPath), nil
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
