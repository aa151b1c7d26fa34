package jobs

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/contentcrew/backend/internal/execution"
	"github.com/contentcrew/backend/internal/models"
)

// DefaultMaxTopicLength bounds submitted topics.
const DefaultMaxTopicLength = 200

// AccountStore is the account repository subset the service needs.
type AccountStore interface {
	ConsumeQuota(ctx context.Context, tx pgx.Tx, id uuid.UUID) (usageCount, monthlyLimit int, err error)
}

// JobStore is the job repository subset the service needs.
type JobStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, j *models.Job) error
	GetByIDForOwner(ctx context.Context, jobID, ownerID uuid.UUID) (*models.Job, error)
	MarkCompleted(ctx context.Context, jobID uuid.UUID, reportPath, blogPath string, executionTimeSecs, tokensUsed int, estimatedCost float64) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) error
}

// InsertGenerateTxFunc enqueues a generation job within the given transaction.
// Provided by main as a closure over river.Client.InsertTx.
type InsertGenerateTxFunc func(ctx context.Context, tx pgx.Tx, args execution.GenerateJobArgs) error

// Submission is what an accepted submit returns: the fresh job id and the
// post-increment quota snapshot.
type Submission struct {
	JobID        uuid.UUID
	UsageCount   int
	MonthlyLimit int
}

type Service interface {
	Submit(ctx context.Context, account *models.Account, topic string) (*Submission, error)
	GetJobForOwner(ctx context.Context, ownerID, jobID uuid.UUID) (*models.Job, error)
}

type service struct {
	accounts       AccountStore
	store          JobStore
	insertGenerate InsertGenerateTxFunc
	maxTopicLength int
}

// NewService creates the admission service. insertGenerate is typically a
// closure over river.Client.InsertTx. Returns *service so it can also serve
// as execution.JobService for the worker.
func NewService(accounts AccountStore, store JobStore, insertGenerate InsertGenerateTxFunc, maxTopicLength int) *service {
	if maxTopicLength <= 0 {
		maxTopicLength = DefaultMaxTopicLength
	}
	return &service{
		accounts:       accounts,
		store:          store,
		insertGenerate: insertGenerate,
		maxTopicLength: maxTopicLength,
	}
}

var _ Service = (*service)(nil)
var _ execution.JobService = (*service)(nil)

// Submit validates the topic, consumes one quota unit, creates the job and
// enqueues its execution. The quota increment, job insert and queue insert
// commit together; on any failure nothing is admitted. The call returns as
// soon as the transaction commits and never waits on the pipeline.
func (s *service) Submit(ctx context.Context, account *models.Account, topic string) (*Submission, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &ValidationError{Reason: "topic is required"}
	}
	// The bound is in characters, not bytes.
	if utf8.RuneCountInString(topic) > s.maxTopicLength {
		return nil, &ValidationError{Reason: "topic too long"}
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	usageCount, monthlyLimit, err := s.accounts.ConsumeQuota(ctx, tx, account.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &QuotaExceededError{Limit: account.MonthlyLimit}
		}
		return nil, err
	}

	job := &models.Job{
		ID:      uuid.New(),
		OwnerID: account.ID,
		Topic:   topic,
		Status:  models.JobStatusProcessing,
	}
	if err := s.store.CreateTx(ctx, tx, job); err != nil {
		return nil, err
	}

	if err := s.insertGenerate(ctx, tx, execution.GenerateJobArgs{
		JobID:   job.ID,
		Topic:   topic,
		OwnerID: account.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &Submission{JobID: job.ID, UsageCount: usageCount, MonthlyLimit: monthlyLimit}, nil
}

// GetJobForOwner returns the job snapshot for the polling owner.
func (s *service) GetJobForOwner(ctx context.Context, ownerID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.store.GetByIDForOwner(ctx, jobID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// MarkJobCompleted implements execution.JobService: the single terminal write
// for a successful generation.
func (s *service) MarkJobCompleted(ctx context.Context, jobID uuid.UUID, reportPath, blogPath string, executionTimeSecs, tokensUsed int, estimatedCost float64) error {
	return s.store.MarkCompleted(ctx, jobID, reportPath, blogPath, executionTimeSecs, tokensUsed, estimatedCost)
}

// MarkJobFailed implements execution.JobService: the single terminal write
// for a failed generation.
func (s *service) MarkJobFailed(ctx context.Context, jobID uuid.UUID, reason string) error {
	return s.store.MarkFailed(ctx, jobID, reason)
}
