package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/daily-journal/internal/collector"
	"github.com/benvon/daily-journal/internal/ledger"
	"github.com/benvon/daily-journal/internal/lock"
	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"github.com/benvon/daily-journal/internal/services/ai"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoContent is returned when no source produced content for the date
	ErrNoContent = errors.New("no content found for this date")
	// ErrNoEntries is returned when the week has no daily entries
	ErrNoEntries = errors.New("no entries found for this week")
)

// RecentDays is how far back suggestions look for context
const RecentDays = 7

// Journal runs the daily and weekly pipelines
type Journal struct {
	collector Collector
	analyzer  Analyzer
	store     Store
	reporter  Reporter
	ledger    ledger.Ledger
	snapshots ledger.Snapshots
	locker    lock.Locker
	location  *time.Location
	logger    *zap.Logger
	tracer    trace.Tracer
}

// Option configures a Journal
type Option func(*Journal)

// WithLedger records writes in l before applying them. A ledger that also
// implements ledger.Snapshots keeps collected content as well.
func WithLedger(l ledger.Ledger) Option {
	return func(j *Journal) {
		if l == nil {
			return
		}
		j.ledger = l
		if s, ok := l.(ledger.Snapshots); ok {
			j.snapshots = s
		}
	}
}

// WithSnapshots keeps collected content in s instead of in process memory
func WithSnapshots(s ledger.Snapshots) Option {
	return func(j *Journal) {
		if s != nil {
			j.snapshots = s
		}
	}
}

// WithLocker guards runs with lk instead of an in-process lock
func WithLocker(lk lock.Locker) Option {
	return func(j *Journal) {
		if lk != nil {
			j.locker = lk
		}
	}
}

// New creates a Journal. Default dates are evaluated in loc.
func New(c Collector, a Analyzer, s Store, r Reporter, loc *time.Location, log *zap.Logger, opts ...Option) *Journal {
	if loc == nil {
		loc = time.UTC
	}
	j := &Journal{
		collector: c,
		analyzer:  a,
		store:     s,
		reporter:  r,
		ledger:    ledger.Nop{},
		snapshots: ledger.NewMemory(),
		locker:    lock.NewLocal(),
		location:  loc,
		logger:    logger.OrNop(log),
		tracer:    otel.Tracer("journal"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RunDaily processes one date. A zero date means today.
func (j *Journal) RunDaily(ctx context.Context, date models.Date) (*models.DailyResult, error) {
	if date.IsZero() {
		date = models.Today(j.location)
	}
	runID := uuid.New().String()
	ctx = ai.WithRunID(ctx, runID)
	log := j.logger.With(zap.String("run_id", runID), zap.String("date", date.String()))

	release, err := j.locker.Acquire(ctx, lock.Key("daily", date.String()))
	if err != nil {
		return nil, err
	}
	defer j.release(ctx, log, release)

	ctx, span := j.tracer.Start(ctx, "journal.daily", trace.WithAttributes(attribute.String("journal.date", date.String())))
	defer span.End()

	log.Info("daily_run_started")

	saved, err := j.loadCollection(ctx, log, date)
	if err != nil {
		return nil, fail(span, err)
	}
	fresh, err := j.collect(ctx, date)
	if err != nil {
		return nil, fail(span, err)
	}
	collection := combine(saved, fresh)
	if collection.Empty() {
		log.Info("daily_run_no_content")
		if err := j.reporter.NoContent(date); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		return nil, ErrNoContent
	}

	merged := collector.Merge(collection)
	stats := collector.Stats(collection)
	log.Info("content_collected",
		zap.Int("words", stats.TotalWords),
		zap.Int("characters", stats.TotalCharacters),
		zap.Strings("sources", stats.SourceNames()))
	if !fresh.Empty() {
		j.saveCollection(ctx, log, date, collection)
	}

	result, err := j.analyzeDaily(ctx, merged)
	if err != nil {
		return nil, fail(span, err)
	}
	result.RunID = runID
	result.Date = date
	result.Stats = stats

	steps, err := planDaily(runID, models.NewDailyEntry(date, merged, result.Summary, result.Insights, stats),
		models.BuildTaskRecords(date, result.Tasks, result.Suggestions), date, result.Insights)
	if err != nil {
		return nil, fail(span, err)
	}
	// A ledger that keeps the plan can finish it with Replay, so the snapshot
	// is no longer needed once the plan is recorded.
	_, nop := j.ledger.(ledger.Nop)
	planned := func() {
		if !nop {
			j.dropCollection(ctx, log, date)
		}
	}
	ids, err := j.persist(ctx, log, steps, planned)
	if err != nil {
		return nil, fail(span, err)
	}
	if nop {
		j.dropCollection(ctx, log, date)
	}
	result.TaskIDs = ids
	log.Info("daily_run_persisted", zap.Int("tasks", len(ids)))

	if err := j.reporter.Daily(*result); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return result, nil
}

// RunWeekly reviews the seven days starting at start. A zero start means the
// Monday of the previous full week.
func (j *Journal) RunWeekly(ctx context.Context, start models.Date) (*models.WeeklyResult, error) {
	if start.IsZero() {
		start = models.PreviousWeekStart(models.Today(j.location))
	}
	end := start.AddDays(6)
	runID := uuid.New().String()
	ctx = ai.WithRunID(ctx, runID)
	log := j.logger.With(zap.String("run_id", runID), zap.String("week_start", start.String()))

	release, err := j.locker.Acquire(ctx, lock.Key("weekly", start.String()))
	if err != nil {
		return nil, err
	}
	defer j.release(ctx, log, release)

	ctx, span := j.tracer.Start(ctx, "journal.weekly", trace.WithAttributes(attribute.String("journal.week_start", start.String())))
	defer span.End()

	entries, err := j.store.EntriesForWeek(ctx, start)
	if err != nil {
		return nil, fail(span, fmt.Errorf("load week entries: %w", err))
	}
	if len(entries) == 0 {
		log.Info("weekly_run_no_entries")
		if err := j.reporter.NoEntries(start, end); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		return nil, ErrNoEntries
	}
	log.Info("week_entries_loaded", zap.Int("entries", len(entries)))

	review, err := j.analyzer.WeeklyReview(ctx, entries)
	if err != nil {
		return nil, fail(span, fmt.Errorf("weekly review: %w", err))
	}
	review.WeekStart = start
	review.WeekEnd = end

	step, err := ledger.NewStep(runID, 0, ledger.StepAppendWeekly, newWeeklyPayload(review))
	if err != nil {
		return nil, fail(span, err)
	}
	if _, err := j.persist(ctx, log, []ledger.Step{step}, nil); err != nil {
		return nil, fail(span, err)
	}

	result := &models.WeeklyResult{
		RunID:      runID,
		WeekStart:  start,
		WeekEnd:    end,
		EntryCount: len(entries),
		Review:     review,
	}
	if err := j.reporter.Weekly(*result); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return result, nil
}

func (j *Journal) collect(ctx context.Context, date models.Date) (models.Collection, error) {
	ctx, span := j.tracer.Start(ctx, "journal.collect")
	defer span.End()
	c, err := j.collector.Collect(ctx, date)
	if err != nil {
		return nil, fail(span, fmt.Errorf("collect: %w", err))
	}
	return c, nil
}

// analyzeDaily runs the four daily analyses concurrently. The first failure cancels the rest.
func (j *Journal) analyzeDaily(ctx context.Context, merged string) (*models.DailyResult, error) {
	ctx, span := j.tracer.Start(ctx, "journal.analyze")
	defer span.End()

	var r models.DailyResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := j.analyzer.DailySummary(gctx, merged)
		if err != nil {
			return fmt.Errorf("daily summary: %w", err)
		}
		r.Summary = summary
		return nil
	})
	g.Go(func() error {
		tasks, err := j.analyzer.ExtractTasks(gctx, merged)
		if err != nil {
			return fmt.Errorf("extract tasks: %w", err)
		}
		r.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		insights, err := j.analyzer.ExtractInsights(gctx, merged)
		if err != nil {
			return fmt.Errorf("extract insights: %w", err)
		}
		r.Insights = insights
		return nil
	})
	g.Go(func() error {
		suggestions, err := j.suggest(gctx, merged)
		if err != nil {
			return err
		}
		r.Suggestions = suggestions
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fail(span, err)
	}
	return &r, nil
}

func (j *Journal) suggest(ctx context.Context, merged string) ([]models.Suggestion, error) {
	pending, err := j.store.PendingTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending tasks: %w", err)
	}
	recent, err := j.store.RecentEntries(ctx, RecentDays)
	if err != nil {
		return nil, fmt.Errorf("load recent entries: %w", err)
	}
	titles := make([]string, 0, len(pending))
	for _, t := range pending {
		titles = append(titles, t.Task)
	}
	suggestions, err := j.analyzer.SuggestTasks(ctx, merged, titles, recent)
	if err != nil {
		return nil, fmt.Errorf("suggest tasks: %w", err)
	}
	return suggestions, nil
}

func (j *Journal) release(ctx context.Context, log *zap.Logger, release lock.Release) {
	collector.BestEffort(log, "lock_release", func() error {
		return release(context.WithoutCancel(ctx))
	})
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
