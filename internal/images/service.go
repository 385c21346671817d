// Package images manages the named image assets backing the admin
// image library.
package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldpal/internal/storage"
)

const prefix = "images/"

// ErrInvalidName is returned for empty names or names that escape the
// images/ key space.
var ErrInvalidName = errors.New("invalid image name")

// ErrNotFound is returned when the named image does not exist.
var ErrNotFound = errors.New("image not found")

// Image describes a stored asset as exposed over the API.
type Image struct {
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Size         int64      `json:"size"`
	ContentType  string     `json:"content_type"`
	LastModified *time.Time `json:"last_modified"`
}

// Service stores and lists images through the blob abstraction under
// "images/{filename}" keys. Uploads overwrite by name; there is no
// versioning.
type Service struct {
	blobs   storage.Store
	baseURL string
}

// NewService constructs a Service. baseURL is prefixed to blob keys to
// form public retrieval URLs and defaults to locally served /assets.
func NewService(blobs storage.Store, baseURL string) *Service {
	if baseURL == "" {
		baseURL = "/assets"
	}
	return &Service{blobs: blobs, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload creates or replaces the named image and returns its public URL.
func (s *Service) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.blobs.Put(ctx, prefix+name, data, contentType); err != nil {
		return "", fmt.Errorf("images: upload %q: %w", name, err)
	}
	return s.URL(name), nil
}

// List returns all stored images.
func (s *Service) List(ctx context.Context) ([]Image, error) {
	objects, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("images: list: %w", err)
	}

	out := make([]Image, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Name, prefix)
		img := Image{
			Name:        name,
			URL:         s.URL(name),
			Size:        obj.Size,
			ContentType: obj.ContentType,
		}
		if !obj.LastModified.IsZero() {
			modified := obj.LastModified
			img.LastModified = &modified
		}
		out = append(out, img)
	}
	return out, nil
}

// Delete removes the named image.
func (s *Service) Delete(ctx context.Context, filename string) error {
	name, err := cleanName(filename)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, prefix+name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("images: delete %q: %w", name, err)
	}
	return nil
}

// URL returns the public retrieval URL for an image name.
func (s *Service) URL(name string) string {
	return s.baseURL + "/" + prefix + name
}

func cleanName(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	return name, nil
}
