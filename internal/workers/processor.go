// Package workers consumes queued journal jobs and runs them
package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/daily-journal/internal/journal"
	"github.com/benvon/daily-journal/internal/lock"
	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"github.com/benvon/daily-journal/internal/queue"
	"github.com/benvon/daily-journal/internal/services/ai"
	"go.uber.org/zap"
)

// lockedRetryDelay is the wait before retrying a job whose period is being processed elsewhere
const lockedRetryDelay = time.Minute

// Runner runs the journal pipelines
type Runner interface {
	RunDaily(ctx context.Context, date models.Date) (*models.DailyResult, error)
	RunWeekly(ctx context.Context, start models.Date) (*models.WeeklyResult, error)
}

// JobProcessor processes journal jobs from the queue
type JobProcessor struct {
	runner   Runner
	jobQueue queue.JobQueue
	logger   *zap.Logger
	now      func() time.Time
}

// NewJobProcessor creates a job processor. jobQueue is used to re-enqueue delayed retries.
func NewJobProcessor(runner Runner, jobQueue queue.JobQueue, log *zap.Logger) *JobProcessor {
	return &JobProcessor{
		runner:   runner,
		jobQueue: jobQueue,
		logger:   logger.OrNop(log),
		now:      time.Now,
	}
}

// Run consumes jobs until ctx is cancelled or the queue stops delivering
func (p *JobProcessor) Run(ctx context.Context, prefetch int) error {
	msgs, errs, err := p.jobQueue.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	p.logger.Info("worker_started", zap.Int("prefetch", prefetch))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			p.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("message channel closed")
			}
			job := msg.GetJob()
			if err := p.ProcessJob(ctx, msg); err != nil {
				p.logger.Error("job_failed",
					zap.Error(err),
					zap.String("job_id", job.ID.String()),
					zap.String("job_type", string(job.Type)),
				)
			}
		}
	}
}

// ProcessJob runs one job and acknowledges it according to the outcome
func (p *JobProcessor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	log := p.logger.With(zap.String("job_id", job.ID.String()), zap.String("job_type", string(job.Type)))

	period, err := job.Period()
	if err != nil {
		p.nack(log, msg, false)
		return err
	}

	switch job.Type {
	case queue.JobTypeProcessDay:
		_, err = p.runner.RunDaily(ctx, period)
	case queue.JobTypeProcessWeek:
		_, err = p.runner.RunWeekly(ctx, period)
	default:
		p.nack(log, msg, false)
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	switch {
	case err == nil:
		log.Info("job_completed", zap.String("date", job.Date))
	case errors.Is(err, journal.ErrNoContent), errors.Is(err, journal.ErrNoEntries):
		log.Info("job_nothing_to_do", zap.String("date", job.Date), zap.String("reason", err.Error()))
	default:
		return p.handleJobError(ctx, log, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// handleJobError retries failed jobs with a delay that depends on the failure
func (p *JobProcessor) handleJobError(ctx context.Context, log *zap.Logger, msg queue.MessageInterface, job *queue.Job, err error) error {
	switch {
	case ai.IsQuotaError(err):
		// Quota resets slowly; retry regardless of the attempt budget
		delay := ai.GetRetryDelay(err, job.RetryCount)
		log.Warn("job_quota_exhausted", zap.Duration("retry_in", delay), zap.Error(err))
		return p.retry(ctx, log, msg, job, delay, err)
	case ai.IsRateLimitError(err) && job.CanRetry():
		delay := ai.GetRetryDelay(err, job.RetryCount)
		log.Warn("job_rate_limited", zap.Duration("retry_in", delay), zap.Error(err))
		return p.retry(ctx, log, msg, job, delay, err)
	case errors.Is(err, lock.ErrLocked) && job.CanRetry():
		log.Info("job_period_locked", zap.Duration("retry_in", lockedRetryDelay))
		return p.retry(ctx, log, msg, job, lockedRetryDelay, err)
	case job.CanRetry():
		delay := ai.GetRetryDelay(err, job.RetryCount)
		log.Warn("job_failed_will_retry",
			zap.Int("attempt", job.RetryCount+1),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		return p.retry(ctx, log, msg, job, delay, err)
	default:
		log.Error("job_failed_to_dlq", zap.Int("max_retries", job.MaxRetries), zap.Error(err))
		p.nack(log, msg, false)
		return fmt.Errorf("job failed (max retries): %w", err)
	}
}

// retry publishes a delayed copy of job and acknowledges the original. If the copy
// cannot be published the original is requeued instead.
func (p *JobProcessor) retry(ctx context.Context, log *zap.Logger, msg queue.MessageInterface, job *queue.Job, delay time.Duration, cause error) error {
	notBefore := p.now().Add(delay)
	delayed := *job
	delayed.NotBefore = &notBefore
	delayed.RetryCount = job.RetryCount + 1

	if err := p.jobQueue.Enqueue(ctx, &delayed); err != nil {
		p.nack(log, msg, true)
		return fmt.Errorf("failed to re-enqueue job after %v: %w", cause, err)
	}
	if err := msg.Ack(); err != nil {
		log.Warn("job_ack_failed", zap.Error(err))
	}
	return fmt.Errorf("job failed (retry at %s): %w", notBefore.Format(time.RFC3339), cause)
}

func (p *JobProcessor) nack(log *zap.Logger, msg queue.MessageInterface, requeue bool) {
	if err := msg.Nack(requeue); err != nil {
		log.Warn("job_nack_failed", zap.Bool("requeue", requeue), zap.Error(err))
	}
}
