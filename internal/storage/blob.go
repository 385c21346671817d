// Package storage provides the opaque key-value blob abstraction backing
// page content and the image library.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no blob exists under the requested name.
var ErrNotFound = errors.New("blob not found")

// Object describes a stored blob without its payload.
type Object struct {
	Name         string
	ContentType  string
	Size         int64
	LastModified time.Time
}

// Store is the blob contract every backend must satisfy. Writes are
// overwrite-by-name; there is no versioning.
type Store interface {
	// Get returns the blob payload, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	// Stat returns blob metadata without the payload, or ErrNotFound.
	Stat(ctx context.Context, name string) (Object, error)
	// Put creates or replaces the named blob.
	Put(ctx context.Context, name string, data []byte, contentType string) error
	// Delete removes the named blob, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	// List returns metadata for all blobs whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}
