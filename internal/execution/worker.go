package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// DefaultPipelineTimeout bounds a single pipeline invocation. A run that
// exceeds it is cancelled and the job is marked failed.
const DefaultPipelineTimeout = 15 * time.Minute

type GenerateJobArgs struct {
	JobID   uuid.UUID `json:"job_id"`
	Topic   string    `json:"topic"`
	OwnerID uuid.UUID `json:"owner_id"`
}

func (GenerateJobArgs) Kind() string { return "generate_content" }

// InsertOpts disables queue-level retries: a failed generation is terminal
// and must be resubmitted as a new admission.
func (GenerateJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}

// Artifacts is what a successful pipeline run produces.
type Artifacts struct {
	ReportPath string
	BlogPath   string
}

// Pipeline is the external generation collaborator: one opaque, long-running
// call that turns a topic into two artifacts or fails.
type Pipeline interface {
	Generate(ctx context.Context, topic string) (*Artifacts, error)
}

// JobService defines the contract the worker needs to record the terminal
// outcome of a job.
type JobService interface {
	MarkJobCompleted(ctx context.Context, jobID uuid.UUID, reportPath, blogPath string, executionTimeSecs, tokensUsed int, estimatedCost float64) error
	MarkJobFailed(ctx context.Context, jobID uuid.UUID, reason string) error
}

type GenerateWorker struct {
	river.WorkerDefaults[GenerateJobArgs]
	jobService JobService
	pipeline   Pipeline
	timeout    time.Duration
	log        *slog.Logger
}

func NewGenerateWorker(js JobService, pipeline Pipeline, timeout time.Duration, log *slog.Logger) *GenerateWorker {
	if timeout <= 0 {
		timeout = DefaultPipelineTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenerateWorker{jobService: js, pipeline: pipeline, timeout: timeout, log: log}
}

func (w *GenerateWorker) Timeout(*river.Job[GenerateJobArgs]) time.Duration {
	return w.timeout
}

// Work drives one generation to completion and performs exactly one terminal
// write. Pipeline failures are captured on the job record and never returned
// to River; an error return here means the terminal write itself failed,
// which is fatal for this job and must not be swallowed.
func (w *GenerateWorker) Work(ctx context.Context, job *river.Job[GenerateJobArgs]) error {
	args := job.Args

	w.log.Info("generation started", "job_id", args.JobID, "topic", args.Topic)
	start := time.Now()

	artifacts, err := w.pipeline.Generate(ctx, args.Topic)
	if err != nil {
		return w.failJob(ctx, args.JobID, err.Error())
	}

	executionTime := int(time.Since(start).Seconds())
	tokens := EstimatedTokensPerJob
	cost := EstimateCost(tokens)

	// Detached from cancellation like the failure path: a run that finishes
	// right at the deadline must still record its success.
	if err := w.jobService.MarkJobCompleted(context.WithoutCancel(ctx), args.JobID, artifacts.ReportPath, artifacts.BlogPath, executionTime, tokens, cost); err != nil {
		return fmt.Errorf("failed to mark job %s completed: %w", args.JobID, err)
	}

	w.log.Info("generation completed",
		"job_id", args.JobID,
		"execution_time_secs", executionTime,
		"tokens", tokens,
		"cost_usd", cost,
	)
	return nil
}

// failJob records the pipeline failure on the job. The write uses a context
// detached from cancellation so a timed-out run can still reach its terminal
// state.
func (w *GenerateWorker) failJob(ctx context.Context, jobID uuid.UUID, reason string) error {
	w.log.Warn("generation failed", "job_id", jobID, "reason", reason)
	if markErr := w.jobService.MarkJobFailed(context.WithoutCancel(ctx), jobID, reason); markErr != nil {
		return fmt.Errorf("generation failed (%s) AND failed to mark job as failed: %w", reason, markErr)
	}
	return nil
}
