// Package storage contains the blob store abstraction and its backends.
//
// Keys are slash-separated paths. The local backend writes them as files on
// disk; the MinIO backend uses them as object names inside a bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"filesmanager/internal/config"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("blob not found")

// PutObjectOptions define optional parameters for writing blobs.
// Size should be the exact number of bytes if known, or -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a blob store keyed by path. Implementations are safe for concurrent
// writers to different keys and concurrent readers of the same key.
type Storage interface {
	// Put writes the blob under key, replacing any previous content.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get returns a streaming reader for the blob alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected in cfg.
func New(cfg config.StorageConfig, minioCfg config.MinIOConfig) (Storage, error) {
	switch cfg.Backend {
	case "", config.StorageLocal:
		return NewLocal(), nil
	case config.StorageMinIO:
		return NewMinIO(minioCfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
