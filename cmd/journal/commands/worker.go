package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/benvon/daily-journal/internal/handlers"
	"github.com/benvon/daily-journal/internal/queue"
	"github.com/benvon/daily-journal/internal/telemetry"
	"github.com/benvon/daily-journal/internal/workers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type workerOptions struct {
	dlqInterval  time.Duration
	dlqRetention time.Duration
}

func newWorkerCmd(opts *rootOptions) *cobra.Command {
	var o workerOptions

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume queued runs and serve /healthz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flag("log-format"); f != nil && !f.Changed {
				opts.logFormat = "json"
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()
			return runWorker(ctx, a, o)
		},
	}

	cmd.Flags().DurationVar(&o.dlqInterval, "dlq-gc-interval", time.Hour, "how often to purge old dead-lettered jobs")
	cmd.Flags().DurationVar(&o.dlqRetention, "dlq-retention", 7*24*time.Hour, "how long dead-lettered jobs are kept")
	return cmd
}

func runWorker(ctx context.Context, a *app, o workerOptions) error {
	j, err := a.journal(ctx)
	if err != nil {
		return err
	}
	q, err := a.jobQueue()
	if err != nil {
		return err
	}

	health := handlers.NewHealthChecker(a.logger)
	health.Register("rabbitmq", q.HealthCheck)
	if a.redis != nil {
		health.Register("redis", a.redis.Ping)
	}
	if a.postgres != nil {
		health.Register("postgres", a.postgres.Ping)
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.HealthPort),
		Handler:           handlers.NewRouter(health, telemetry.ServiceName, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}

	processor := workers.NewJobProcessor(j, q, a.logger)
	gc := queue.NewGarbageCollector(q, o.dlqInterval, o.dlqRetention, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("health_server_listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return untilCancelled(gc.Start(ctx))
	})
	g.Go(func() error {
		return processor.Run(ctx, a.cfg.RabbitMQPrefetch)
	})

	err = g.Wait()
	a.logger.Info("worker_stopped", zap.Error(err))
	return err
}

func untilCancelled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
