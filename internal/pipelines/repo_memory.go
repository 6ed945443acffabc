package pipelines

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database
// is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	runs []Pipeline
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// List returns all runs, most recently updated first.
func (r *MemoryRepo) List(ctx context.Context) ([]Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	runs := make([]Pipeline, len(r.runs))
	copy(runs, r.runs)
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].UpdatedAt.After(runs[j].UpdatedAt)
	})
	return runs, nil
}

// GetByID returns a run by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return Pipeline{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.runs {
		if r.runs[i].ID == id {
			return r.runs[i], nil
		}
	}
	return Pipeline{}, ErrNotFound
}

// LatestFailed returns the most recently updated failed run.
func (r *MemoryRepo) LatestFailed(ctx context.Context) (Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return Pipeline{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Pipeline
	for i := range r.runs {
		if r.runs[i].Status != StatusFailed {
			continue
		}
		if latest == nil || r.runs[i].UpdatedAt.After(latest.UpdatedAt) {
			latest = &r.runs[i]
		}
	}
	if latest == nil {
		return Pipeline{}, ErrNotFound
	}
	return *latest, nil
}

// Create stores one new run.
func (r *MemoryRepo) Create(ctx context.Context, run Pipeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			return ErrDuplicateID
		}
	}
	r.runs = append(r.runs, run)
	return nil
}

// ReplaceAll swaps the full run set, used by demo seeding.
func (r *MemoryRepo) ReplaceAll(ctx context.Context, runs []Pipeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = make([]Pipeline, len(runs))
	copy(r.runs, runs)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
