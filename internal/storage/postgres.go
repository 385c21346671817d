package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStore persists blobs in a single bytea-backed table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type blobRow struct {
	Name         string    `db:"name"`
	Data         []byte    `db:"data"`
	ContentType  string    `db:"content_type"`
	Size         int64     `db:"size"`
	LastModified time.Time `db:"last_modified"`
}

// Get returns the blob payload, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM blobs WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", name, err)
	}
	return data, nil
}

// Stat returns blob metadata, or ErrNotFound.
func (s *PostgresStore) Stat(ctx context.Context, name string) (Object, error) {
	var row blobRow
	err := s.db.GetContext(ctx, &row,
		`SELECT name, ''::bytea AS data, content_type, size, last_modified FROM blobs WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("stat blob %q: %w", name, err)
	}
	return Object{Name: row.Name, ContentType: row.ContentType, Size: row.Size, LastModified: row.LastModified}, nil
}

// Put creates or replaces the named blob. Plain upsert: concurrent writers
// race at whole-blob granularity, last write wins.
func (s *PostgresStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (name, data, content_type, size, last_modified)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET data = EXCLUDED.data,
		    content_type = EXCLUDED.content_type,
		    size = EXCLUDED.size,
		    last_modified = now()`,
		name, data, contentType, int64(len(data)))
	if err != nil {
		return fmt.Errorf("put blob %q: %w", name, err)
	}
	return nil
}

// Delete removes the named blob.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns metadata for blobs under prefix, sorted by name.
func (s *PostgresStore) List(ctx context.Context, prefix string) ([]Object, error) {
	rows := []blobRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT name, ''::bytea AS data, content_type, size, last_modified
		FROM blobs
		WHERE name LIKE $1 || '%'
		ORDER BY name`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list blobs %q: %w", prefix, err)
	}

	objects := make([]Object, 0, len(rows))
	for _, row := range rows {
		objects = append(objects, Object{
			Name:         row.Name,
			ContentType:  row.ContentType,
			Size:         row.Size,
			LastModified: row.LastModified,
		})
	}
	return objects, nil
}
