package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

const (
	// RecentHistoryLimit is how many recent entries feed the suggestions prompt
	RecentHistoryLimit = 7
	// historySummaryLength is how much of each recent summary is quoted
	historySummaryLength = 100
)

// Analyzer runs the journal analyses against a language model. Transport and
// API failures are returned; unparseable structured output is replaced by the
// documented default for that analysis.
type Analyzer struct {
	completer Completer
	prompts   Prompts
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil prompts catalogue uses the built-in prompts.
func NewAnalyzer(completer Completer, prompts Prompts, log *zap.Logger) (*Analyzer, error) {
	if prompts == nil {
		var err error
		if prompts, err = DefaultPrompts(); err != nil {
			return nil, err
		}
	}
	if err := prompts.validate(); err != nil {
		return nil, err
	}
	return &Analyzer{completer: completer, prompts: prompts, logger: logger.OrNop(log)}, nil
}

// DailySummary returns a short second-person summary of the day
func (a *Analyzer) DailySummary(ctx context.Context, content string) (string, error) {
	out, err := a.completer.Complete(ctx, a.prompts.Request(PromptDailySummary, "Today's journal entries:\n\n"+content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ExtractTasks finds completed, pending and candidate tasks in the content
func (a *Analyzer) ExtractTasks(ctx context.Context, content string) (models.TaskExtraction, error) {
	out, err := a.completer.Complete(ctx, a.prompts.Request(PromptExtractTasks, content))
	if err != nil {
		return models.TaskExtraction{}, err
	}

	var tasks models.TaskExtraction
	if !a.decode(PromptExtractTasks, out, &tasks) {
		return models.DefaultTaskExtraction(), nil
	}
	if tasks.Completed == nil {
		tasks.Completed = []models.TaskItem{}
	}
	if tasks.Pending == nil {
		tasks.Pending = []models.TaskItem{}
	}
	if tasks.Ideas == nil {
		tasks.Ideas = []models.TaskItem{}
	}
	return tasks, nil
}

// ExtractInsights reads mood, energy, themes and highlights from the content
func (a *Analyzer) ExtractInsights(ctx context.Context, content string) (models.Insights, error) {
	out, err := a.completer.Complete(ctx, a.prompts.Request(PromptExtractInsights, content))
	if err != nil {
		return models.Insights{}, err
	}

	var insights models.Insights
	if !a.decode(PromptExtractInsights, out, &insights) {
		return models.DefaultInsights(), nil
	}
	return insights, nil
}

// SuggestTasks proposes tasks for the next day from today's content, the open
// task titles and recent entries. At most RecentHistoryLimit entries are used,
// the most recent ones.
func (a *Analyzer) SuggestTasks(ctx context.Context, content string, pending []string, recent []models.DailyEntry) ([]models.Suggestion, error) {
	user := buildSuggestionsInput(content, pending, recent)
	out, err := a.completer.Complete(ctx, a.prompts.Request(PromptSuggestTasks, user))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	if !a.decode(PromptSuggestTasks, out, &parsed) || parsed.Suggestions == nil {
		return []models.Suggestion{}, nil
	}
	return parsed.Suggestions, nil
}

// WeeklyReview synthesizes a review from the week's daily entries
func (a *Analyzer) WeeklyReview(ctx context.Context, entries []models.DailyEntry) (models.WeeklyReview, error) {
	out, err := a.completer.Complete(ctx, a.prompts.Request(PromptWeeklyReview, buildWeeklyInput(entries)))
	if err != nil {
		return models.WeeklyReview{}, err
	}

	var review models.WeeklyReview
	if !a.decode(PromptWeeklyReview, out, &review) {
		return models.DefaultWeeklyReview(), nil
	}
	return review, nil
}

// decode parses a JSON object response into v and logs when it cannot
func (a *Analyzer) decode(operation, content string, v any) bool {
	if err := decodeJSONObject(content, v); err != nil {
		a.logger.Warn("llm_response_unparseable",
			zap.String("operation", operation),
			zap.String("error", logger.SanitizeError(err)),
			zap.String("response_preview", SanitizeResponse(content, false)),
		)
		return false
	}
	return true
}

// decodeJSONObject unmarshals content, retrying on the outermost {...} span
// when the model wrapped the object in prose or code fences
func decodeJSONObject(content string, v any) error {
	raw := []byte(strings.TrimSpace(content))
	if len(raw) == 0 {
		return errors.New("empty response")
	}
	if raw[0] == '{' {
		if err := json.Unmarshal(raw, v); err == nil {
			return nil
		}
	}
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start == -1 || end <= start {
		return errors.New("no JSON object in response")
	}
	if err := json.Unmarshal(raw[start:end+1], v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func buildSuggestionsInput(content string, pending []string, recent []models.DailyEntry) string {
	var b strings.Builder
	b.WriteString("TODAY'S JOURNAL:\n")
	b.WriteString(content)
	b.WriteString("\n")

	if len(pending) > 0 {
		b.WriteString("\n\nCURRENT PENDING TASKS:\n")
		for i, t := range pending {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + t)
		}
	}
	b.WriteString("\n")

	if len(recent) > 0 {
		if len(recent) > RecentHistoryLimit {
			recent = recent[len(recent)-RecentHistoryLimit:]
		}
		b.WriteString("\n\nRECENT PATTERNS (last 7 days):\n")
		for _, e := range recent {
			fmt.Fprintf(&b, "- %s: %s...\n", e.Date, truncateRunes(e.Summary, historySummaryLength))
		}
	}
	return b.String()
}

func buildWeeklyInput(entries []models.DailyEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "\n--- %s ---\nSummary: %s\nMood: %s\nEnergy: %s\nThemes: %s\n",
			orNA(e.Date.String()), orNA(e.Summary), orNA(e.Mood), orNA(e.Energy), orNA(e.Themes))
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
