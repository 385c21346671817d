package contact

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository stores submissions in process memory, for local
// development and tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data []Submission
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Save appends a submission.
func (r *InMemoryRepository) Save(_ context.Context, submission Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, submission)
	return nil
}

// List returns submissions newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Submission, len(r.data))
	copy(out, r.data)
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
