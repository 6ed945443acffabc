package pipelines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, repo_name, branch, status, progress, duration, author, commit_hash, current_step, vela_build_id, created_at, updated_at`

// List returns all runs, most recently updated first.
func (r *PGRepo) List(ctx context.Context) ([]Pipeline, error) {
	query := fmt.Sprintf(`SELECT %s FROM pipelines ORDER BY updated_at DESC`, selectColumns)
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Pipeline
	for rows.Next() {
		run, err := scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Pipeline, error) {
	query := fmt.Sprintf(`SELECT %s FROM pipelines WHERE id = $1`, selectColumns)
	run, err := scanPipeline(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Pipeline{}, ErrNotFound
	}
	return run, err
}

// LatestFailed returns the most recently updated failed run.
func (r *PGRepo) LatestFailed(ctx context.Context) (Pipeline, error) {
	query := fmt.Sprintf(`SELECT %s FROM pipelines WHERE status = 'failed' ORDER BY updated_at DESC LIMIT 1`, selectColumns)
	run, err := scanPipeline(r.DB.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return Pipeline{}, ErrNotFound
	}
	return run, err
}

// Create stores one new run.
func (r *PGRepo) Create(ctx context.Context, run Pipeline) error {
	err := insertPipeline(ctx, r.DB, run)
	var pgErr *pgconn.PgError
	// 23505 = unique_violation
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateID
	}
	return err
}

// ReplaceAll swaps the full run set inside one transaction, used by demo
// seeding.
func (r *PGRepo) ReplaceAll(ctx context.Context, runs []Pipeline) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pipelines`); err != nil {
		return err
	}

	for _, run := range runs {
		if err := insertPipeline(ctx, tx, run); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPipeline(ctx context.Context, db execer, run Pipeline) error {
	const insert = `
INSERT INTO pipelines (
    id, repo_name, branch, status, progress, duration, author, commit_hash, current_step, vela_build_id, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var progress sql.NullInt64
	if run.Progress != nil {
		progress = sql.NullInt64{Int64: int64(*run.Progress), Valid: true}
	}
	_, err := db.ExecContext(
		ctx,
		insert,
		run.ID,
		run.RepoName,
		run.Branch,
		string(run.Status),
		progress,
		nullString(run.Duration),
		nullString(run.Author),
		nullString(run.CommitHash),
		nullString(run.CurrentStep),
		nullString(run.VelaBuildID),
		run.CreatedAt,
		run.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPipeline(row rowScanner) (Pipeline, error) {
	var run Pipeline
	var status string
	var progress sql.NullInt64
	var duration, author, commitHash, currentStep, velaBuildID sql.NullString

	err := row.Scan(
		&run.ID,
		&run.RepoName,
		&run.Branch,
		&status,
		&progress,
		&duration,
		&author,
		&commitHash,
		&currentStep,
		&velaBuildID,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return Pipeline{}, err
	}

	run.Status = Status(status)
	if progress.Valid {
		p := int(progress.Int64)
		run.Progress = &p
	}
	run.Duration = duration.String
	run.Author = author.String
	run.CommitHash = commitHash.String
	run.CurrentStep = currentStep.String
	run.VelaBuildID = velaBuildID.String
	return run, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
