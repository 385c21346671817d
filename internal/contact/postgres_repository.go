package contact

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository persists submissions in the contact_submissions
// table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save appends a submission.
func (r *PostgresRepository) Save(ctx context.Context, submission Submission) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO contact_submissions (partition_key, row_key, name, email, subject, message, submitted_at)
		VALUES (:partition_key, :row_key, :name, :email, :subject, :message, :submitted_at)`,
		submission)
	if err != nil {
		return fmt.Errorf("save contact submission: %w", err)
	}
	return nil
}

// List returns submissions newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Submission, error) {
	submissions := []Submission{}
	err := r.db.SelectContext(ctx, &submissions, `
		SELECT partition_key, row_key, name, email, subject, message, submitted_at
		FROM contact_submissions
		ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	return submissions, nil
}
