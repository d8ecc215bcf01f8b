package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benvon/daily-journal/internal/models"
)

func TestDaily(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := models.DailyResult{
		Date:    models.NewDate(2024, time.January, 15),
		Stats:   models.CollectionStats{TotalWords: 250, SourcesUsed: []models.SourceCategory{models.SourceNotebook, models.SourceVoice}},
		Summary: "You had a full day.",
		Tasks: models.TaskExtraction{
			Completed: []models.TaskItem{{Task: "Ran 5k"}},
			Pending:   []models.TaskItem{{Task: "Call dentist", Priority: "high"}},
		},
		Insights: models.Insights{
			Mood:        models.Mood{Primary: "upbeat"},
			EnergyLevel: "8",
			Themes:      models.StringList{"health", "work"},
			Wins:        models.StringList{"Personal best"},
		},
		Suggestions: []models.Suggestion{{Task: "Stretch", Priority: "low", Reason: "Sore legs after the run"}},
	}

	if err := New(&buf).Daily(res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"DAILY SUMMARY - 2024-01-15",
		"250 words from 2 sources",
		"You had a full day.",
		"Mood: upbeat | Energy: 8/10",
		"Themes: health, work",
		"COMPLETED (1)",
		"✓ Ran 5k",
		"PENDING (1)",
		"[high]",
		"Call dentist",
		"SUGGESTED FOR TOMORROW (1)",
		"└─ Sore legs after the run",
		"WINS",
		"Personal best",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "CHALLENGES") {
		t.Error("Expected empty challenges section to be omitted")
	}
}

func TestDaily_Defaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(&buf).Daily(models.DailyResult{Date: models.NewDate(2024, 1, 15)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Mood: unknown | Energy: ?/10") {
		t.Errorf("Expected placeholder mood line, got\n%s", buf.String())
	}
}

func TestWeekly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := models.WeeklyResult{
		WeekStart:  models.NewDate(2024, time.January, 8),
		WeekEnd:    models.NewDate(2024, time.January, 14),
		EntryCount: 5,
		Review: models.WeeklyReview{
			Overview:            "A steady week.",
			Accomplishments:     models.StringList{"Shipped release"},
			Patterns:            &models.WeekPatterns{MoodTrend: "rising"},
			NextWeekSuggestions: []models.WeekSuggestion{{Suggestion: "Rest Sunday", Why: "recovery"}},
			WordOfWeek:          "momentum",
		},
	}

	if err := New(&buf).Weekly(res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"WEEKLY REVIEW: 2024-01-08 to 2024-01-14",
		"5 daily entries",
		"A steady week.",
		"Shipped release",
		"Mood: rising",
		"Energy: N/A",
		"→ Rest Sunday (recovery)",
		"HIGHLIGHT: N/A",
		"WORD OF WEEK: momentum",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestNoContentAndNoEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf)
	if err := r.NoContent(models.NewDate(2024, 1, 15)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := r.NoEntries(models.NewDate(2024, 1, 8), models.NewDate(2024, 1, 14)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No content found for 2024-01-15.") || !strings.Contains(out, "2024-01-08 to 2024-01-14") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestItemWraps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf).WithWidth(30)
	var b strings.Builder
	r.item(&b, "•", "one two three four five six seven eight nine ten")
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("Expected wrapped lines, got %q", b.String())
	}
	if !strings.HasPrefix(lines[1], "     ") {
		t.Errorf("Expected continuation indent, got %q", lines[1])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteError(t *testing.T) {
	t.Parallel()

	if err := New(failingWriter{}).NoContent(models.NewDate(2024, 1, 15)); err == nil {
		t.Error("Expected write error")
	}
}

func TestTasks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf)
	tasks := []models.Task{
		{ID: "T00001", Task: "Call dentist", Priority: models.PriorityHigh, Deadline: "2024-01-20"},
		{ID: "T00002", Task: "Water plants", Priority: "whenever"},
	}
	if err := r.Tasks("PENDING", tasks); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"PENDING (2)",
		"T00001 [high] Call dentist (due 2024-01-20)",
		"T00002 [med] Water plants",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := r.Tasks("PENDING", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "none") {
		t.Errorf("Expected empty marker, got:\n%s", buf.String())
	}
}
