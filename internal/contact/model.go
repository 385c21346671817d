// Package contact stores contact-form submissions and drives the
// notification pipeline around them.
package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrValidation wraps user-input validation failures.
var ErrValidation = errors.New("validation error")

// Submission is an immutable contact-form record. PartitionKey is the
// UTC year-month of submission, RowKey a generated unique id. Records
// are never updated or deleted by this system.
type Submission struct {
	PartitionKey string    `db:"partition_key" json:"partition_key"`
	RowKey       uuid.UUID `db:"row_key" json:"row_key"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Subject      string    `db:"subject" json:"subject"`
	Message      string    `db:"message" json:"message"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// Repository persists submissions.
type Repository interface {
	// Save appends a submission.
	Save(ctx context.Context, submission Submission) error
	// List returns all submissions ordered by submission time
	// descending, newest first.
	List(ctx context.Context) ([]Submission, error)
}
