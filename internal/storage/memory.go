package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryBlob struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps blobs in an in-process map, ideal for local
// development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
	now   func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob), now: time.Now}
}

// Get returns the blob payload, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob.data))
	copy(out, blob.data)
	return out, nil
}

// Stat returns blob metadata, or ErrNotFound.
func (s *MemoryStore) Stat(_ context.Context, name string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[name]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{
		Name:         name,
		ContentType:  blob.contentType,
		Size:         int64(len(blob.data)),
		LastModified: blob.modified,
	}, nil
}

// Put creates or replaces the named blob.
func (s *MemoryStore) Put(_ context.Context, name string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[name] = memoryBlob{data: stored, contentType: contentType, modified: s.now()}
	return nil
}

// Delete removes the named blob.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[name]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, name)
	return nil
}

// List returns metadata for blobs under prefix, sorted by name.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]Object, 0)
	for name, blob := range s.blobs {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		objects = append(objects, Object{
			Name:         name,
			ContentType:  blob.contentType,
			Size:         int64(len(blob.data)),
			LastModified: blob.modified,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}
