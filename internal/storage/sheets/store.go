package sheets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"github.com/benvon/daily-journal/internal/validation"
	"go.uber.org/zap"
)

// ErrTaskNotFound is returned when no task row has the requested id
var ErrTaskNotFound = errors.New("task not found")

// Store reads and writes journal records. Tables and their header rows are
// created on first use.
type Store struct {
	api      ValuesAPI
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	ready bool
}

// NewStore creates a store over api. Relative dates are evaluated in loc.
func NewStore(api ValuesAPI, loc *time.Location, log *zap.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{api: api, location: loc, now: time.Now, logger: logger.OrNop(log)}
}

// EnsureTables creates any missing table with its header row
func (s *Store) EnsureTables(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	titles, err := s.api.Titles(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	for _, table := range tableOrder {
		if existing[table] {
			continue
		}
		headers := Headers(table)
		if err := s.api.AddTable(ctx, table, NewTableRows, len(headers)); err != nil {
			return err
		}
		if err := s.api.AppendRows(ctx, table, [][]string{headers}); err != nil {
			return err
		}
		s.logger.Info("table_created", zap.String("table", table))
	}
	s.ready = true
	return nil
}

func (s *Store) timestamp() string {
	return s.now().In(s.location).Format(time.RFC3339)
}

// findRow returns the 1-based row whose first cell equals key, or 0
func (s *Store) findRow(ctx context.Context, table, key string) (int, error) {
	rows, err := s.api.ReadRows(ctx, table, 1)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && row[0] == key {
			return i + 1, nil
		}
	}
	return 0, nil
}

// SaveDailyEntry writes the entry for its date, replacing an existing row for the same date
func (s *Store) SaveDailyEntry(ctx context.Context, e models.DailyEntry) error {
	if err := s.EnsureTables(ctx); err != nil {
		return err
	}

	now := s.timestamp()
	row := []string{
		e.Date.String(),
		truncateRunes(e.RawContent, MaxRawContentLength),
		e.Summary,
		e.Mood,
		e.MoodConfidence,
		e.Energy,
		e.Themes,
		e.Wins,
		e.Challenges,
		e.Sources,
		strconv.Itoa(e.WordCount),
		now,
		now,
	}

	n, err := s.findRow(ctx, TableDailyEntries, e.Date.String())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug("daily_entry_updated", zap.String("date", e.Date.String()), zap.Int("row", n))
		return s.api.UpdateCells(ctx, TableDailyEntries, []CellUpdate{{Row: n, Column: 1, Values: row}})
	}
	s.logger.Debug("daily_entry_appended", zap.String("date", e.Date.String()))
	return s.api.AppendRows(ctx, TableDailyEntries, [][]string{row})
}

// RecentEntries returns entries dated within the last days days (today included), oldest first
func (s *Store) RecentEntries(ctx context.Context, days int) ([]models.DailyEntry, error) {
	cutoff := models.Today(s.location).AddDays(-days)
	return s.entriesWhere(ctx, func(d models.Date) bool { return !d.Before(cutoff) })
}

// EntriesForWeek returns the entries dated start through start+6, oldest first
func (s *Store) EntriesForWeek(ctx context.Context, start models.Date) ([]models.DailyEntry, error) {
	end := start.AddDays(6)
	return s.entriesWhere(ctx, func(d models.Date) bool { return d.Between(start, end) })
}

func (s *Store) entriesWhere(ctx context.Context, keep func(models.Date) bool) ([]models.DailyEntry, error) {
	if err := s.EnsureTables(ctx); err != nil {
		return nil, err
	}
	rows, err := s.api.ReadRows(ctx, TableDailyEntries, len(tableHeaders[TableDailyEntries]))
	if err != nil {
		return nil, err
	}

	var entries []models.DailyEntry
	for _, rec := range records(rows) {
		e, ok := dailyEntryFromRecord(rec)
		if !ok || !keep(e.Date) {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

// AddTask appends one task and returns its id
func (s *Store) AddTask(ctx context.Context, t models.Task) (string, error) {
	if t.Source == "" {
		t.Source = models.TaskSourceManual
	}
	ids, err := s.addTasks(ctx, []models.Task{t})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AddTasksBatch appends tasks in order and returns their ids
func (s *Store) AddTasksBatch(ctx context.Context, tasks []models.Task) ([]string, error) {
	return s.addTasks(ctx, tasks)
}

func (s *Store) addTasks(ctx context.Context, tasks []models.Task) ([]string, error) {
	if len(tasks) == 0 {
		return []string{}, nil
	}
	for i, t := range tasks {
		if err := validation.Validate.Struct(t); err != nil {
			return nil, fmt.Errorf("task %d: %s", i, validation.FormatErrors(err))
		}
	}
	if err := s.EnsureTables(ctx); err != nil {
		return nil, err
	}

	existing, err := s.api.ReadRows(ctx, TableTasks, 1)
	if err != nil {
		return nil, err
	}
	next := len(existing)

	now := s.timestamp()
	ids := make([]string, 0, len(tasks))
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		id := fmt.Sprintf("T%05d", next+i)
		ids = append(ids, id)
		rows = append(rows, taskRow(id, t, now))
	}
	if err := s.api.AppendRows(ctx, TableTasks, rows); err != nil {
		return nil, err
	}
	return ids, nil
}

func taskRow(id string, t models.Task, now string) []string {
	status := t.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	priority := t.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	source := t.Source
	if source == "" {
		source = models.TaskSourceExtracted
	}
	return []string{
		id,
		t.Date,
		t.Task,
		string(status),
		string(priority),
		t.Category,
		t.Deadline,
		t.Reason,
		string(source),
		"",
		now,
		now,
	}
}

// PendingTasks returns every task whose status is pending
func (s *Store) PendingTasks(ctx context.Context) ([]models.Task, error) {
	if err := s.EnsureTables(ctx); err != nil {
		return nil, err
	}
	rows, err := s.api.ReadRows(ctx, TableTasks, len(tableHeaders[TableTasks]))
	if err != nil {
		return nil, err
	}
	var out []models.Task
	for _, rec := range records(rows) {
		t := taskFromRecord(rec)
		if t.Status == models.TaskStatusPending {
			out = append(out, t)
		}
	}
	return out, nil
}

// CompleteTask marks the task with id as completed
func (s *Store) CompleteTask(ctx context.Context, id string) error {
	if err := s.EnsureTables(ctx); err != nil {
		return err
	}
	n, err := s.findRow(ctx, TableTasks, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	now := s.timestamp()
	return s.api.UpdateCells(ctx, TableTasks, []CellUpdate{
		{Row: n, Column: taskColStatus, Values: []string{string(models.TaskStatusCompleted)}},
		{Row: n, Column: taskColCompletedAt, Values: []string{now}},
		{Row: n, Column: taskColUpdatedAt, Values: []string{now}},
	})
}

// SaveWeeklyReview appends a weekly review row. List fields are stored as JSON.
func (s *Store) SaveWeeklyReview(ctx context.Context, r models.WeeklyReview) error {
	if err := s.EnsureTables(ctx); err != nil {
		return err
	}
	patterns := "{}"
	if r.Patterns != nil {
		patterns = mustJSON(r.Patterns)
	}
	suggestions := r.NextWeekSuggestions
	if suggestions == nil {
		suggestions = []models.WeekSuggestion{}
	}
	row := []string{
		r.WeekStart.String(),
		r.WeekEnd.String(),
		r.Overview,
		jsonList(r.Accomplishments),
		patterns,
		jsonList(r.Challenges),
		jsonList(r.Insights),
		mustJSON(suggestions),
		r.HighlightOfWeek,
		r.WordOfWeek,
		s.timestamp(),
	}
	return s.api.AppendRows(ctx, TableWeeklyReviews, [][]string{row})
}

// SaveInsights appends the insights row for date
func (s *Store) SaveInsights(ctx context.Context, date models.Date, ins models.Insights) error {
	if err := s.EnsureTables(ctx); err != nil {
		return err
	}
	row := []string{
		date.String(),
		ins.Mood.Primary,
		ins.EnergyLevel.String(),
		strings.Join(ins.Themes, ", "),
		strings.Join(ins.PeopleMentioned, ", "),
		jsonList(ins.NotableQuotes),
		s.timestamp(),
	}
	return s.api.AppendRows(ctx, TableInsights, [][]string{row})
}
