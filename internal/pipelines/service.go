package pipelines

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"vela-dashboard-backend/internal/analysis"
)

// Service contains business logic for pipeline runs.
type Service struct {
	Repo Repo

	// Rng overrides the demo-seeding randomness in tests.
	Rng *rand.Rand
}

// List returns all runs, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Pipeline, error) {
	return s.Repo.List(ctx)
}

// Get returns one run by ID.
func (s *Service) Get(ctx context.Context, id string) (Pipeline, error) {
	return s.Repo.GetByID(ctx, id)
}

// Create validates and stores a new run, filling in ID and timestamps when
// absent.
func (s *Service) Create(ctx context.Context, run Pipeline) (Pipeline, error) {
	if !ValidStatus(run.Status) {
		return Pipeline{}, ErrInvalidStatus
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = now
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Pipeline{}, err
	}
	return run, nil
}

// SeedDemo replaces the stored runs with freshly generated demo data and
// returns what was written.
func (s *Service) SeedDemo(ctx context.Context) ([]Pipeline, error) {
	runs := GenerateDemoRuns(s.Rng, time.Now().UTC())
	if err := s.Repo.ReplaceAll(ctx, runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestFailureRecord builds an analysis input from the most recent failed
// run. The run itself carries no log text; callers supply logs and the error
// message from the build output they hold.
func (s *Service) LatestFailureRecord(ctx context.Context, logs, errMsg, pipelineConfig string) (analysis.FailureRecord, error) {
	run, err := s.Repo.LatestFailed(ctx)
	if err != nil {
		return analysis.FailureRecord{}, err
	}
	return failureRecordFrom(run, logs, errMsg, pipelineConfig), nil
}

// FailureRecordFor builds an analysis input from one specific run.
func (s *Service) FailureRecordFor(ctx context.Context, id, logs, errMsg, pipelineConfig string) (analysis.FailureRecord, error) {
	run, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return analysis.FailureRecord{}, err
	}
	if run.Status != StatusFailed {
		return analysis.FailureRecord{}, ErrNotFailed
	}
	return failureRecordFrom(run, logs, errMsg, pipelineConfig), nil
}

func failureRecordFrom(run Pipeline, logs, errMsg, pipelineConfig string) analysis.FailureRecord {
	step := run.CurrentStep
	if step == "" {
		step = "unknown"
	}
	return analysis.FailureRecord{
		Repository:     run.RepoName,
		Branch:         run.Branch,
		FailingStep:    step,
		ErrorMessage:   errMsg,
		LogText:        logs,
		PipelineConfig: pipelineConfig,
	}
}
