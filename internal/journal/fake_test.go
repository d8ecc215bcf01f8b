package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benvon/daily-journal/internal/ledger"
	"github.com/benvon/daily-journal/internal/models"
)

// fakeCollector returns collection. With archive set, calls after the first
// return later instead, as the first call's files have been moved away.
type fakeCollector struct {
	collection models.Collection
	later      models.Collection
	archive    bool
	err        error
	calls      int
}

func (f *fakeCollector) Collect(context.Context, models.Date) (models.Collection, error) {
	f.calls++
	if f.archive && f.calls > 1 {
		return f.later, f.err
	}
	return f.collection, f.err
}

type fakeAnalyzer struct {
	summary     string
	tasks       models.TaskExtraction
	insights    models.Insights
	suggestions []models.Suggestion
	review      models.WeeklyReview
	failOn      string
	failOnce    bool

	mu          sync.Mutex
	gotPending  []string
	gotRecent   []models.DailyEntry
	gotWeekDays int
}

func (f *fakeAnalyzer) fail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != op {
		return nil
	}
	if f.failOnce {
		f.failOn = ""
	}
	return fmt.Errorf("%s unavailable", op)
}

func (f *fakeAnalyzer) DailySummary(context.Context, string) (string, error) {
	return f.summary, f.fail("summary")
}

func (f *fakeAnalyzer) ExtractTasks(context.Context, string) (models.TaskExtraction, error) {
	return f.tasks, f.fail("tasks")
}

func (f *fakeAnalyzer) ExtractInsights(context.Context, string) (models.Insights, error) {
	return f.insights, f.fail("insights")
}

func (f *fakeAnalyzer) SuggestTasks(_ context.Context, _ string, pending []string, recent []models.DailyEntry) ([]models.Suggestion, error) {
	f.mu.Lock()
	f.gotPending, f.gotRecent = pending, recent
	f.mu.Unlock()
	return f.suggestions, f.fail("suggestions")
}

func (f *fakeAnalyzer) WeeklyReview(_ context.Context, entries []models.DailyEntry) (models.WeeklyReview, error) {
	f.gotWeekDays = len(entries)
	return f.review, f.fail("weekly")
}

// fakeStore records every call. Writes fail while the matching failX field is set.
type fakeStore struct {
	mu sync.Mutex

	pending []models.Task
	recent  []models.DailyEntry
	week    []models.DailyEntry

	failInsights bool

	calls    []string
	entries  []models.DailyEntry
	tasks    []models.Task
	insights []models.Insights
	reviews  []models.WeeklyReview
	weekArg  models.Date
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) SaveDailyEntry(_ context.Context, e models.DailyEntry) error {
	f.record("SaveDailyEntry")
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeStore) AddTasksBatch(_ context.Context, tasks []models.Task) ([]string, error) {
	f.record("AddTasksBatch")
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = fmt.Sprintf("T%05d", len(f.tasks)+i+1)
	}
	f.tasks = append(f.tasks, tasks...)
	return ids, nil
}

func (f *fakeStore) SaveInsights(_ context.Context, _ models.Date, ins models.Insights) error {
	f.record("SaveInsights")
	if f.failInsights {
		return fmt.Errorf("sheet quota exceeded")
	}
	f.insights = append(f.insights, ins)
	return nil
}

func (f *fakeStore) SaveWeeklyReview(_ context.Context, r models.WeeklyReview) error {
	f.record("SaveWeeklyReview")
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeStore) PendingTasks(context.Context) ([]models.Task, error) {
	f.record("PendingTasks")
	return f.pending, nil
}

func (f *fakeStore) RecentEntries(context.Context, int) ([]models.DailyEntry, error) {
	f.record("RecentEntries")
	return f.recent, nil
}

func (f *fakeStore) EntriesForWeek(_ context.Context, start models.Date) ([]models.DailyEntry, error) {
	f.record("EntriesForWeek")
	f.weekArg = start
	return f.week, nil
}

func (f *fakeStore) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		switch c {
		case "SaveDailyEntry", "AddTasksBatch", "SaveInsights", "SaveWeeklyReview":
			out = append(out, c)
		}
	}
	return out
}

type fakeReporter struct {
	noContent []models.Date
	noEntries int
	daily     []models.DailyResult
	weekly    []models.WeeklyResult
}

func (f *fakeReporter) NoContent(d models.Date) error {
	f.noContent = append(f.noContent, d)
	return nil
}

func (f *fakeReporter) Daily(r models.DailyResult) error {
	f.daily = append(f.daily, r)
	return nil
}

func (f *fakeReporter) NoEntries(models.Date, models.Date) error {
	f.noEntries++
	return nil
}

func (f *fakeReporter) Weekly(r models.WeeklyResult) error {
	f.weekly = append(f.weekly, r)
	return nil
}

// fakeSnapshots wraps an in-memory store and fails loads while loadErr is set
type fakeSnapshots struct {
	*ledger.Memory
	loadErr error
}

func (f *fakeSnapshots) LoadSnapshot(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	return f.Memory.LoadSnapshot(ctx, key)
}

var (
	_ Collector = (*fakeCollector)(nil)
	_ Analyzer  = (*fakeAnalyzer)(nil)
	_ Store     = (*fakeStore)(nil)
	_ Reporter  = (*fakeReporter)(nil)
)
