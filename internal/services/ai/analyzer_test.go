package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

// mockCompleter returns a fixed response and records requests
type mockCompleter struct {
	response string
	err      error
	requests []Request
}

var _ Completer = (*mockCompleter)(nil)

func (m *mockCompleter) Complete(_ context.Context, req Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

func newTestAnalyzer(t *testing.T, m *mockCompleter) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(m, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestAnalyzer_InvalidStructuredOutputFallsBack(t *testing.T) {
	t.Parallel()

	for _, response := range []string{"not json at all", "", "[1, 2, 3]", "null", `{"completed": "oops"`} {
		t.Run(response, func(t *testing.T) {
			t.Parallel()
			a := newTestAnalyzer(t, &mockCompleter{response: response})
			ctx := context.Background()

			tasks, err := a.ExtractTasks(ctx, "content")
			if err != nil {
				t.Fatalf("ExtractTasks error: %v", err)
			}
			if tasks.Completed == nil || tasks.Pending == nil || tasks.Ideas == nil ||
				len(tasks.Completed)+len(tasks.Pending)+len(tasks.Ideas) != 0 {
				t.Errorf("Expected empty default task lists, got %+v", tasks)
			}

			insights, err := a.ExtractInsights(ctx, "content")
			if err != nil {
				t.Fatalf("ExtractInsights error: %v", err)
			}
			if insights.Mood.Primary != "unknown" || insights.Mood.Confidence != "low" || insights.EnergyLevel != "5" {
				t.Errorf("Expected default insights, got %+v", insights)
			}

			suggestions, err := a.SuggestTasks(ctx, "content", nil, nil)
			if err != nil {
				t.Fatalf("SuggestTasks error: %v", err)
			}
			if suggestions == nil || len(suggestions) != 0 {
				t.Errorf("Expected empty suggestions, got %v", suggestions)
			}

			review, err := a.WeeklyReview(ctx, nil)
			if err != nil {
				t.Fatalf("WeeklyReview error: %v", err)
			}
			if review.Overview != models.DefaultWeeklyReviewOverview {
				t.Errorf("Expected default overview, got %q", review.Overview)
			}
		})
	}
}

func TestAnalyzer_TransportErrorPropagates(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("connection refused")
	a := newTestAnalyzer(t, &mockCompleter{err: sentinel})
	ctx := context.Background()

	if _, err := a.DailySummary(ctx, "x"); !errors.Is(err, sentinel) {
		t.Errorf("DailySummary: expected sentinel, got %v", err)
	}
	if _, err := a.ExtractTasks(ctx, "x"); !errors.Is(err, sentinel) {
		t.Errorf("ExtractTasks: expected sentinel, got %v", err)
	}
	if _, err := a.ExtractInsights(ctx, "x"); !errors.Is(err, sentinel) {
		t.Errorf("ExtractInsights: expected sentinel, got %v", err)
	}
	if _, err := a.SuggestTasks(ctx, "x", nil, nil); !errors.Is(err, sentinel) {
		t.Errorf("SuggestTasks: expected sentinel, got %v", err)
	}
	if _, err := a.WeeklyReview(ctx, nil); !errors.Is(err, sentinel) {
		t.Errorf("WeeklyReview: expected sentinel, got %v", err)
	}
}

func TestAnalyzer_ExtractTasks(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{response: "Here you go:\n```json\n{\"completed\": [\"Ran\"], \"pending\": [{\"task\": \"Email Sam\", \"priority\": \"high\"}]}\n```"}
	a := newTestAnalyzer(t, m)

	tasks, err := a.ExtractTasks(context.Background(), "journal")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(tasks.Completed) != 1 || tasks.Completed[0].Task != "Ran" {
		t.Errorf("Unexpected completed: %+v", tasks.Completed)
	}
	if len(tasks.Pending) != 1 || tasks.Pending[0].Priority != "high" {
		t.Errorf("Unexpected pending: %+v", tasks.Pending)
	}
	if tasks.Ideas == nil {
		t.Error("Expected missing ideas to be an empty list")
	}

	req := m.requests[0]
	if !req.JSON || req.Operation != PromptExtractTasks || req.User != "journal" {
		t.Errorf("Unexpected request: %+v", req)
	}
}

func TestAnalyzer_DailySummary(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{response: "  You wrote a lot today.\n"}
	a := newTestAnalyzer(t, m)

	got, err := a.DailySummary(context.Background(), "merged")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "You wrote a lot today." {
		t.Errorf("Expected trimmed summary, got %q", got)
	}
	req := m.requests[0]
	if req.JSON {
		t.Error("Summary should not use JSON mode")
	}
	if req.User != "Today's journal entries:\n\nmerged" {
		t.Errorf("Unexpected user prompt %q", req.User)
	}
	if !strings.Contains(req.System, "second person") {
		t.Errorf("Expected summary system prompt, got %q", req.System)
	}
}

func TestAnalyzer_SuggestTasksInput(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{response: `{"suggestions": [{"task": "Call mom", "priority": "low", "reason": "birthday", "estimated_time": 15, "category": "social"}, "Stretch"]}`}
	a := newTestAnalyzer(t, m)

	var recent []models.DailyEntry
	start := models.NewDate(2024, time.January, 1)
	for i := 0; i < 9; i++ {
		recent = append(recent, models.DailyEntry{Date: start.AddDays(i), Summary: strings.Repeat("x", 150)})
	}

	got, err := a.SuggestTasks(context.Background(), "today", []string{"Taxes", "Gym"}, recent)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].EstimatedTime != "15" || got[1].Task != "Stretch" {
		t.Errorf("Unexpected suggestions: %+v", got)
	}

	user := m.requests[0].User
	if !strings.HasPrefix(user, "TODAY'S JOURNAL:\ntoday\n") {
		t.Errorf("Expected journal first, got %q", user)
	}
	if !strings.Contains(user, "CURRENT PENDING TASKS:\n- Taxes\n- Gym") {
		t.Errorf("Expected pending tasks, got %q", user)
	}
	if strings.Contains(user, "2024-01-02:") {
		t.Error("Expected only the last 7 entries")
	}
	if !strings.Contains(user, "- 2024-01-03: "+strings.Repeat("x", 100)+"...\n") {
		t.Errorf("Expected truncated summary line, got %q", user)
	}
}

func TestAnalyzer_WeeklyReview(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{response: `{
		"overview": "A steady week.",
		"accomplishments": ["Shipped"],
		"patterns": {"mood_trend": "up", "energy_trend": "flat", "recurring_themes": ["work"]},
		"next_week_suggestions": [{"suggestion": "Rest", "why": "tired"}, "Read"],
		"highlight_of_week": "Launch",
		"word_of_week": "Momentum"
	}`}
	a := newTestAnalyzer(t, m)

	entries := []models.DailyEntry{
		{Date: models.NewDate(2024, time.January, 8), Summary: "Good", Mood: "happy", Energy: "7"},
		{Date: models.NewDate(2024, time.January, 9)},
	}
	review, err := a.WeeklyReview(context.Background(), entries)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if review.Overview != "A steady week." || review.Patterns == nil || review.Patterns.MoodTrend != "up" {
		t.Errorf("Unexpected review: %+v", review)
	}
	if len(review.NextWeekSuggestions) != 2 || review.NextWeekSuggestions[1].Suggestion != "Read" {
		t.Errorf("Unexpected suggestions: %+v", review.NextWeekSuggestions)
	}

	req := m.requests[0]
	if req.Temperature != 0.8 {
		t.Errorf("Expected weekly temperature 0.8, got %v", req.Temperature)
	}
	if !strings.Contains(req.User, "--- 2024-01-08 ---\nSummary: Good\nMood: happy\nEnergy: 7\nThemes: N/A\n") {
		t.Errorf("Unexpected weekly input %q", req.User)
	}
	if !strings.Contains(req.User, "--- 2024-01-09 ---\nSummary: N/A") {
		t.Errorf("Expected N/A placeholders, got %q", req.User)
	}
}

func TestDecodeJSONObject(t *testing.T) {
	t.Parallel()

	var v struct {
		A int `json:"a"`
	}
	if err := decodeJSONObject(`{"a": 1}`, &v); err != nil || v.A != 1 {
		t.Errorf("Plain object: %v, %+v", err, v)
	}
	if err := decodeJSONObject("Sure! {\"a\": 2} Hope that helps.", &v); err != nil || v.A != 2 {
		t.Errorf("Wrapped object: %v, %+v", err, v)
	}
	if err := decodeJSONObject("no braces", &v); err == nil {
		t.Error("Expected error without an object")
	}
}
