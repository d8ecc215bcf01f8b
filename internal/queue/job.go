package queue

import (
	"fmt"
	"time"

	"github.com/benvon/daily-journal/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeProcessDay runs the daily pipeline for Job.Date
	JobTypeProcessDay JobType = "process_day"
	// JobTypeProcessWeek runs the weekly review for the week starting at Job.Date
	JobTypeProcessWeek JobType = "process_week"
)

// DefaultMaxRetries is how many times a failed job is requeued
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	Date       string     `json:"date,omitempty"`       // YYYY-MM-DD; empty means today or the previous week
	NotBefore  *time.Time `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new job for date. A zero date leaves the period to the worker.
func NewJob(jobType JobType, date models.Date) *Job {
	job := &Job{
		ID:         uuid.New(),
		Type:       jobType,
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
	if !date.IsZero() {
		job.Date = date.String()
	}
	return job
}

// Period returns the job's date, or the zero date when none was set
func (j *Job) Period() (models.Date, error) {
	if j.Date == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(j.Date)
	if err != nil {
		return models.Date{}, fmt.Errorf("job %s: invalid date %q: %w", j.ID, j.Date, err)
	}
	return d, nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
