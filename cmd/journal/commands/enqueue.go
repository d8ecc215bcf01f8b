package commands

import (
	"fmt"
	"time"

	"github.com/benvon/daily-journal/internal/queue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type enqueueOptions struct {
	delay       time.Duration
	expireAfter time.Duration
}

// newJob builds the queue job for p. The period is resolved now so a delayed
// job still processes the day it was queued for.
func newJob(p period, o enqueueOptions, now time.Time, loc *time.Location) *queue.Job {
	p = p.resolve(now, loc)
	jobType := queue.JobTypeProcessDay
	if p.weekly {
		jobType = queue.JobTypeProcessWeek
	}
	job := queue.NewJob(jobType, p.date)
	if o.delay > 0 {
		notBefore := now.Add(o.delay)
		job.NotBefore = &notBefore
	}
	if o.expireAfter > 0 {
		notAfter := now.Add(o.delay + o.expireAfter)
		job.NotAfter = &notAfter
	}
	return job
}

func newEnqueueCmd(opts *rootOptions) *cobra.Command {
	var o enqueueOptions

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a daily run or weekly review for the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePeriod(opts.date, opts.week, opts.weekStart)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			q, err := a.jobQueue()
			if err != nil {
				return err
			}
			job := newJob(p, o, time.Now(), a.cfg.Location())
			if err := q.Enqueue(ctx, job); err != nil {
				return fmt.Errorf("failed to enqueue job: %w", err)
			}

			a.logger.Info("job_enqueued",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
				zap.String("date", job.Date),
			)
			_, err = fmt.Fprintf(a.out, "Queued %s job %s for %s.\n", job.Type, job.ID, job.Date)
			return err
		},
	}

	addPeriodFlags(cmd, opts)
	cmd.Flags().DurationVar(&o.delay, "delay", 0, "do not process the job before this much time has passed")
	cmd.Flags().DurationVar(&o.expireAfter, "expire-after", 0, "drop the job if it is still queued this long after it became due")
	return cmd
}
