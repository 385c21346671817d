// Package content implements the page-keyed JSON document store with
// optional section-scoped reads and writes.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode"

	"fieldpal/internal/storage"
)

// Document is a page's content: named sections mapping to arbitrary JSON
// values. Raw messages keep nested values untouched across a
// read-merge-write cycle.
type Document map[string]json.RawMessage

// Store reads and writes page documents through the blob abstraction
// under "content/{page}.json" keys.
type Store struct {
	blobs storage.Store
}

// NewStore constructs a Store.
func NewStore(blobs storage.Store) *Store {
	return &Store{blobs: blobs}
}

func contentKey(page string) string {
	return "content/" + page + ".json"
}

// Get returns the full document for a page. A page with no stored
// document yields the default skeleton {title: <Page Title>, content: ""}
// rather than an error.
func (s *Store) Get(ctx context.Context, page string) (Document, error) {
	raw, err := s.blobs.Get(ctx, contentKey(page))
	if errors.Is(err, storage.ErrNotFound) {
		return defaultDocument(page), nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: get %q: %w", page, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("content: decode %q: %w", page, err)
	}
	return doc, nil
}

// GetSection returns {content: <section value>} for the named section,
// or {content: {}} when the page or section does not exist.
func (s *Store) GetSection(ctx context.Context, page, section string) (Document, error) {
	raw, err := s.blobs.Get(ctx, contentKey(page))
	if errors.Is(err, storage.ErrNotFound) {
		return Document{"content": json.RawMessage(`{}`)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: get %q: %w", page, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("content: decode %q: %w", page, err)
	}

	value, ok := doc[section]
	if !ok {
		return Document{"content": json.RawMessage(`{}`)}, nil
	}
	return Document{"content": value}, nil
}

// Save replaces the page's full document.
func (s *Store) Save(ctx context.Context, page string, doc Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("content: encode %q: %w", page, err)
	}
	if err := s.blobs.Put(ctx, contentKey(page), raw, "application/json"); err != nil {
		return fmt.Errorf("content: save %q: %w", page, err)
	}
	return nil
}

// SaveSection merges a single section into the existing document,
// leaving all other sections untouched. A missing document is treated as
// empty. The read-merge-write is not transactional: concurrent section
// writes to the same page race at whole-document granularity and the
// last writer wins.
func (s *Store) SaveSection(ctx context.Context, page, section string, value json.RawMessage) error {
	doc := Document{}
	raw, err := s.blobs.Get(ctx, contentKey(page))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("content: get %q: %w", page, err)
	}
	if err == nil {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("content: decode %q: %w", page, err)
		}
	}

	doc[section] = value
	return s.Save(ctx, page, doc)
}

func defaultDocument(page string) Document {
	title, _ := json.Marshal(titleCase(page))
	return Document{
		"title":   json.RawMessage(title),
		"content": json.RawMessage(`""`),
	}
}

// titleCase uppercases the first letter of each alphabetic run, so
// "about" becomes "About" and "our-team" becomes "Our-Team".
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if !prevLetter {
				out[i] = unicode.ToUpper(r)
			} else {
				out[i] = unicode.ToLower(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(out)
}
