package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/daily-journal/internal/collector"
	"github.com/benvon/daily-journal/internal/config"
	"github.com/benvon/daily-journal/internal/drive"
	"github.com/benvon/daily-journal/internal/gauth"
	"github.com/benvon/daily-journal/internal/journal"
	"github.com/benvon/daily-journal/internal/ledger"
	"github.com/benvon/daily-journal/internal/lock"
	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/queue"
	"github.com/benvon/daily-journal/internal/report"
	"github.com/benvon/daily-journal/internal/services/ai"
	"github.com/benvon/daily-journal/internal/storage/sheets"
	"github.com/benvon/daily-journal/internal/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	_ journal.Collector   = (*collector.Collector)(nil)
	_ journal.Analyzer    = (*ai.Analyzer)(nil)
	_ journal.Store       = (*sheets.Store)(nil)
	_ journal.Reporter    = (*report.Renderer)(nil)
	_ lock.Locker         = (*lock.RedisLocker)(nil)
	_ ledger.Ledger       = (*ledger.PostgresLedger)(nil)
	_ queue.JobQueue      = (*queue.RabbitMQQueue)(nil)
	_ collector.FileStore = (*drive.Client)(nil)
)

// app holds the configuration and the lazily opened backends of one command invocation
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	tp     *sdktrace.TracerProvider

	httpClient *http.Client
	store      *sheets.Store
	redis      *lock.RedisLocker
	postgres   *ledger.PostgresLedger
	rabbit     *queue.RabbitMQQueue
	closers    []func() error
}

func newApp(ctx context.Context, opts *rootOptions, out io.Writer) (*app, error) {
	if err := config.LoadDotEnv(opts.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	debugMode := cfg.DebugMode || opts.debug
	log, err := logger.New(logger.Format(opts.logFormat), debugMode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tp, err := telemetry.InitTracer(ctx, telemetry.Options{
		Enabled:  cfg.OTELEnabled,
		Endpoint: cfg.OTELEndpoint,
	}, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: log, out: out, tp: tp}, nil
}

// close releases backends in reverse order of opening
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("backend_close_failed", zap.Error(err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(ctx, a.tp); err != nil {
		a.logger.Warn("tracer_shutdown_failed", zap.Error(err))
	}
	// Sync fails on non-file sinks such as a terminal
	_ = logger.Sync(a.logger)
}

func (a *app) google(ctx context.Context) (*http.Client, error) {
	if a.httpClient != nil {
		return a.httpClient, nil
	}
	client, err := gauth.HTTPClient(ctx, a.cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	a.httpClient = client
	return client, nil
}

// sheetStore opens the spreadsheet and makes sure every table exists
func (a *app) sheetStore(ctx context.Context) (*sheets.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	client, err := a.google(ctx)
	if err != nil {
		return nil, err
	}
	values, err := sheets.NewGoogleValues(ctx, client, a.cfg.SpreadsheetID)
	if err != nil {
		return nil, err
	}
	store := sheets.NewStore(values, a.cfg.Location(), a.logger)
	if err := store.EnsureTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare spreadsheet: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *app) collector(ctx context.Context) (*collector.Collector, error) {
	client, err := a.google(ctx)
	if err != nil {
		return nil, err
	}
	files, err := drive.NewClient(ctx, client, a.logger)
	if err != nil {
		return nil, err
	}
	return collector.New(files, a.cfg, a.logger), nil
}

// redisLocker connects to REDIS_URL. It returns nil when Redis is not configured.
func (a *app) redisLocker() (*lock.RedisLocker, error) {
	if a.redis != nil || a.cfg.RedisURL == "" {
		return a.redis, nil
	}
	rl, err := lock.NewRedisLocker(a.cfg.RedisURL, lock.DefaultTTL)
	if err != nil {
		return nil, err
	}
	a.redis = rl
	a.closers = append(a.closers, rl.Close)
	a.logger.Info("redis_connected")
	return rl, nil
}

// locker prefers Redis and falls back to lock files shared by the processes of this host
func (a *app) locker() (lock.Locker, error) {
	rl, err := a.redisLocker()
	if err != nil {
		return nil, err
	}
	if rl != nil {
		return rl, nil
	}
	fl, err := lock.NewFile("", lock.DefaultTTL)
	if err != nil {
		return nil, err
	}
	return fl, nil
}

// postgresLedger connects to DATABASE_URL. It returns nil when no database is configured.
func (a *app) postgresLedger(ctx context.Context) (*ledger.PostgresLedger, error) {
	if a.postgres != nil || a.cfg.DatabaseURL == "" {
		return a.postgres, nil
	}
	pl, err := ledger.OpenPostgres(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.postgres = pl
	a.closers = append(a.closers, pl.Close)
	a.logger.Info("ledger_connected")
	return pl, nil
}

func (a *app) ledger(ctx context.Context) (ledger.Ledger, error) {
	pl, err := a.postgresLedger(ctx)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return ledger.Nop{}, nil
	}
	return pl, nil
}

// throttle shares the request budget through Redis when it is configured
func (a *app) throttle() (*ai.Throttle, error) {
	rl, err := a.redisLocker()
	if err != nil {
		return nil, err
	}
	if rl == nil {
		return ai.NewThrottle(a.cfg.AIRequestsPerMinute), nil
	}
	return ai.NewRedisThrottle(rl.Client(), a.cfg.AIRequestsPerMinute)
}

func (a *app) analyzer() (*ai.Analyzer, error) {
	if err := a.cfg.RequireAI(); err != nil {
		return nil, err
	}
	throttle, err := a.throttle()
	if err != nil {
		return nil, err
	}
	provider := ai.NewOpenAIProvider(ai.OpenAIConfig{
		APIKey:      a.cfg.OpenAIKey,
		BaseURL:     a.cfg.AIBaseURL,
		Model:       a.cfg.AIModel,
		Temperature: a.cfg.AITemperature,
		DebugMode:   a.cfg.DebugMode,
		Throttle:    throttle,
	}, a.logger)
	prompts, err := ai.LoadPrompts(a.cfg.PromptsFile)
	if err != nil {
		return nil, err
	}
	a.logger.Info("ai_provider_ready",
		zap.String("model", provider.Model()),
		zap.String("api_key", ai.SanitizeAPIKey(a.cfg.OpenAIKey)),
	)
	return ai.NewAnalyzer(provider, prompts, a.logger)
}

// journal wires the full pipeline
func (a *app) journal(ctx context.Context) (*journal.Journal, error) {
	analyzer, err := a.analyzer()
	if err != nil {
		return nil, err
	}
	col, err := a.collector(ctx)
	if err != nil {
		return nil, err
	}
	return a.journalWith(ctx, col, analyzer)
}

// journalWith wires a journal around the given collector and analyzer. Both may
// be nil for commands that only replay stored writes.
func (a *app) journalWith(ctx context.Context, col journal.Collector, analyzer journal.Analyzer) (*journal.Journal, error) {
	store, err := a.sheetStore(ctx)
	if err != nil {
		return nil, err
	}
	l, err := a.ledger(ctx)
	if err != nil {
		return nil, err
	}
	lk, err := a.locker()
	if err != nil {
		return nil, err
	}
	return journal.New(col, analyzer, store, report.New(a.out), a.cfg.Location(), a.logger,
		journal.WithLedger(l),
		journal.WithLocker(lk),
	), nil
}

func (a *app) jobQueue() (*queue.RabbitMQQueue, error) {
	if a.rabbit != nil {
		return a.rabbit, nil
	}
	if err := a.cfg.RequireQueue(); err != nil {
		return nil, err
	}
	q, err := queue.NewRabbitMQQueue(a.cfg.RabbitMQURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	a.rabbit = q
	a.closers = append(a.closers, q.Close)
	return q, nil
}

// quiet maps the "nothing to do" outcomes to success after they have been reported
func quiet(err error) error {
	if errors.Is(err, journal.ErrNoContent) || errors.Is(err, journal.ErrNoEntries) {
		return nil
	}
	return err
}
