package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentcrew/backend/internal/models"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// CreateTx inserts a new job inside the admission transaction.
func (r *JobRepo) CreateTx(ctx context.Context, tx pgx.Tx, j *models.Job) error {
	return tx.QueryRow(ctx, `
		INSERT INTO content_jobs (id, owner_id, topic, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, j.ID, j.OwnerID, j.Topic, j.Status).Scan(&j.CreatedAt)
}

// GetByIDForOwner returns the job only when it belongs to ownerID.
// A missing job and a job owned by someone else both return pgx.ErrNoRows,
// so callers cannot probe for the existence of other owners' jobs.
func (r *JobRepo) GetByIDForOwner(ctx context.Context, jobID, ownerID uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, topic, status, created_at, completed_at, report_path, blog_path, error_message, execution_time_secs, tokens_used, estimated_cost
		FROM content_jobs WHERE id = $1 AND owner_id = $2
	`, jobID, ownerID).Scan(&j.ID, &j.OwnerID, &j.Topic, &j.Status, &j.CreatedAt, &j.CompletedAt, &j.ReportPath, &j.BlogPath, &j.ErrorMessage, &j.ExecutionTimeSecs, &j.TokensUsed, &j.EstimatedCost)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// MarkCompleted performs the single terminal write for a successful job.
// The status guard means a terminal row can never be overwritten; writing a
// job that is not in processing state is reported as an error.
func (r *JobRepo) MarkCompleted(ctx context.Context, jobID uuid.UUID, reportPath, blogPath string, executionTimeSecs, tokensUsed int, estimatedCost float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE content_jobs
		SET status = 'completed', completed_at = now(), report_path = $2, blog_path = $3,
		    execution_time_secs = $4, tokens_used = $5, estimated_cost = $6
		WHERE id = $1 AND status = 'processing'
	`, jobID, reportPath, blogPath, executionTimeSecs, tokensUsed, estimatedCost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}
	return nil
}

// MarkFailed performs the single terminal write for a failed job.
func (r *JobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE content_jobs
		SET status = 'failed', completed_at = now(), error_message = $2
		WHERE id = $1 AND status = 'processing'
	`, jobID, errorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}
	return nil
}

// CountByStatus returns total and completed job counts for reporting.
func (r *JobRepo) CountByStatus(ctx context.Context) (total, completed int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed') FROM content_jobs
	`).Scan(&total, &completed)
	return total, completed, err
}

// CompletedCosts sums estimated_cost over completed jobs.
func (r *JobRepo) CompletedCosts(ctx context.Context) (jobs int, totalCost float64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(estimated_cost), 0)
		FROM content_jobs WHERE status = 'completed'
	`).Scan(&jobs, &totalCost)
	return jobs, totalCost, err
}

// RecentStatuses returns the statuses of the most recently created jobs,
// newest first, used by the health check's success-rate figure.
func (r *JobRepo) RecentStatuses(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status FROM content_jobs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var statuses []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// Ping verifies database connectivity for the health endpoint.
func (r *JobRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(ctx)
}
