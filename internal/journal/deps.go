// Package journal runs the daily and weekly journal pipelines: collect the
// day's files, analyze them with the language model, persist the results and
// report them.
package journal

import (
	"context"

	"github.com/benvon/daily-journal/internal/models"
)

// Collector gathers the per-source content of one date
type Collector interface {
	Collect(ctx context.Context, date models.Date) (models.Collection, error)
}

// Analyzer runs the language model analyses
type Analyzer interface {
	DailySummary(ctx context.Context, content string) (string, error)
	ExtractTasks(ctx context.Context, content string) (models.TaskExtraction, error)
	ExtractInsights(ctx context.Context, content string) (models.Insights, error)
	SuggestTasks(ctx context.Context, content string, pending []string, recent []models.DailyEntry) ([]models.Suggestion, error)
	WeeklyReview(ctx context.Context, entries []models.DailyEntry) (models.WeeklyReview, error)
}

// Store persists journal records
type Store interface {
	SaveDailyEntry(ctx context.Context, e models.DailyEntry) error
	AddTasksBatch(ctx context.Context, tasks []models.Task) ([]string, error)
	SaveInsights(ctx context.Context, date models.Date, ins models.Insights) error
	SaveWeeklyReview(ctx context.Context, r models.WeeklyReview) error
	PendingTasks(ctx context.Context) ([]models.Task, error)
	RecentEntries(ctx context.Context, days int) ([]models.DailyEntry, error)
	EntriesForWeek(ctx context.Context, start models.Date) ([]models.DailyEntry, error)
}

// Reporter presents run outcomes to the user
type Reporter interface {
	NoContent(date models.Date) error
	Daily(r models.DailyResult) error
	NoEntries(start, end models.Date) error
	Weekly(r models.WeeklyResult) error
}
