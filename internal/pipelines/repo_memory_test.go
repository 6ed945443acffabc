package pipelines

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedMemoryRepo(t *testing.T) *MemoryRepo {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryRepo()
	err := repo.ReplaceAll(context.Background(), []Pipeline{
		{ID: "run-1", RepoName: "target/web-frontend", Status: StatusSuccess, UpdatedAt: base.Add(-2 * time.Hour)},
		{ID: "run-2", RepoName: "target/payment-service", Status: StatusFailed, UpdatedAt: base.Add(-1 * time.Hour)},
		{ID: "run-3", RepoName: "target/inventory-api", Status: StatusFailed, UpdatedAt: base},
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	return repo
}

func TestMemoryRepoListOrder(t *testing.T) {
	repo := seedMemoryRepo(t)

	runs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-3" || runs[2].ID != "run-1" {
		t.Fatalf("expected most recently updated first, got %s..%s", runs[0].ID, runs[2].ID)
	}
}

func TestMemoryRepoGetByID(t *testing.T) {
	repo := seedMemoryRepo(t)

	run, err := repo.GetByID(context.Background(), "run-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.RepoName != "target/payment-service" {
		t.Fatalf("unexpected run: %+v", run)
	}

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoLatestFailed(t *testing.T) {
	repo := seedMemoryRepo(t)

	run, err := repo.LatestFailed(context.Background())
	if err != nil {
		t.Fatalf("LatestFailed: %v", err)
	}
	if run.ID != "run-3" {
		t.Fatalf("expected most recent failed run, got %s", run.ID)
	}

	empty := NewMemoryRepo()
	if _, err := empty.LatestFailed(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty repo, got %v", err)
	}
}

func TestMemoryRepoCreate(t *testing.T) {
	repo := seedMemoryRepo(t)

	err := repo.Create(context.Background(), Pipeline{ID: "run-4", RepoName: "target/search-service", Status: StatusPending})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "run-4"); err != nil {
		t.Fatalf("GetByID after Create: %v", err)
	}

	err = repo.Create(context.Background(), Pipeline{ID: "run-4", Status: StatusPending})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestMemoryRepoHonorsContextCancellation(t *testing.T) {
	repo := seedMemoryRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.List(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
