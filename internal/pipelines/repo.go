package pipelines

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a pipeline run does not exist.
var ErrNotFound = errors.New("pipeline not found")

// ErrDuplicateID is returned when a run with the same ID already exists.
var ErrDuplicateID = errors.New("pipeline id already exists")

// Repo abstracts pipeline run storage.
type Repo interface {
	List(ctx context.Context) ([]Pipeline, error)
	GetByID(ctx context.Context, id string) (Pipeline, error)
	LatestFailed(ctx context.Context) (Pipeline, error)
	Create(ctx context.Context, run Pipeline) error
	ReplaceAll(ctx context.Context, runs []Pipeline) error
}
