package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes any JSON scalar into its string form. Models are inconsistent about
// quoting numbers ("7" vs 7), so fields like energy level accept both.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

// String returns the underlying string
func (f FlexString) String() string {
	return string(f)
}

// StringList decodes a JSON array whose elements may be strings, scalars, or objects.
// Objects are reduced to their first string-valued field in key order of preference.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := rawToText(item); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

func rawToText(item json.RawMessage) string {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return ""
	}
	switch item[0] {
	case '"':
		var s string
		if json.Unmarshal(item, &s) == nil {
			return s
		}
	case '{':
		var obj map[string]any
		if json.Unmarshal(item, &obj) == nil {
			for _, key := range []string{"task", "suggestion", "text", "description", "name"} {
				if s, ok := obj[key].(string); ok {
					return s
				}
			}
		}
		return string(item)
	}
	if string(item) == "null" {
		return ""
	}
	return string(item)
}

// Priority is a task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NormalizePriority maps free-form model output onto a known priority, defaulting to medium
func NormalizePriority(p string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(p))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// TaskItem is one task mentioned in a journal. The model may emit a bare string
// instead of an object; both forms decode into TaskItem.
type TaskItem struct {
	Task     string     `json:"task"`
	Context  string     `json:"context,omitempty"`
	Priority string     `json:"priority,omitempty"`
	Deadline FlexString `json:"deadline,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler
func (t *TaskItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TaskItem{Task: s}
		return nil
	}
	type plain TaskItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TaskItem(p)
	return nil
}

// TaskExtraction is the structured result of task extraction
type TaskExtraction struct {
	Completed []TaskItem `json:"completed"`
	Pending   []TaskItem `json:"pending"`
	Ideas     []TaskItem `json:"ideas"`
}

// DefaultTaskExtraction is returned when the model output cannot be parsed
func DefaultTaskExtraction() TaskExtraction {
	return TaskExtraction{
		Completed: []TaskItem{},
		Pending:   []TaskItem{},
		Ideas:     []TaskItem{},
	}
}

// Mood is the emotional reading of a day
type Mood struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary,omitempty"`
	Confidence string `json:"confidence"`
}

// UnmarshalJSON accepts either an object or a bare mood word
func (m *Mood) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Mood{Primary: s}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*m = Mood{}
		return nil
	}
	type plain struct {
		Primary    FlexString `json:"primary"`
		Secondary  FlexString `json:"secondary"`
		Confidence FlexString `json:"confidence"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Mood{Primary: p.Primary.String(), Secondary: p.Secondary.String(), Confidence: p.Confidence.String()}
	return nil
}

// Insights is the structured result of insight extraction
type Insights struct {
	Mood            Mood       `json:"mood"`
	EnergyLevel     FlexString `json:"energy_level"`
	Themes          StringList `json:"themes"`
	Wins            StringList `json:"wins"`
	Challenges      StringList `json:"challenges"`
	PeopleMentioned StringList `json:"people_mentioned"`
	NotableQuotes   StringList `json:"notable_quotes"`
}

// DefaultInsights is returned when the model output cannot be parsed
func DefaultInsights() Insights {
	return Insights{
		Mood:            Mood{Primary: "unknown", Confidence: "low"},
		EnergyLevel:     "5",
		Themes:          StringList{},
		Wins:            StringList{},
		Challenges:      StringList{},
		PeopleMentioned: StringList{},
		NotableQuotes:   StringList{},
	}
}

// Suggestion is a task proposed for the next day
type Suggestion struct {
	Task          string     `json:"task"`
	Priority      string     `json:"priority"`
	Reason        string     `json:"reason"`
	EstimatedTime FlexString `json:"estimated_time"`
	Category      string     `json:"category"`
}

// UnmarshalJSON accepts either an object or a bare task string
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Suggestion{Task: text}
		return nil
	}
	type plain struct {
		Task          FlexString `json:"task"`
		Priority      FlexString `json:"priority"`
		Reason        FlexString `json:"reason"`
		EstimatedTime FlexString `json:"estimated_time"`
		Category      FlexString `json:"category"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Suggestion{
		Task:          p.Task.String(),
		Priority:      p.Priority.String(),
		Reason:        p.Reason.String(),
		EstimatedTime: p.EstimatedTime,
		Category:      p.Category.String(),
	}
	return nil
}

// WeekPatterns describes trends across a week
type WeekPatterns struct {
	MoodTrend       string     `json:"mood_trend"`
	EnergyTrend     string     `json:"energy_trend"`
	RecurringThemes StringList `json:"recurring_themes"`
}

// WeekSuggestion is a recommendation for the coming week
type WeekSuggestion struct {
	Suggestion string `json:"suggestion"`
	Why        string `json:"why,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string
func (s *WeekSuggestion) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = WeekSuggestion{Suggestion: text}
		return nil
	}
	type plain WeekSuggestion
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = WeekSuggestion(p)
	return nil
}

// WeeklyReview is the synthesized review of one week
type WeeklyReview struct {
	WeekStart           Date             `json:"-"`
	WeekEnd             Date             `json:"-"`
	Overview            string           `json:"overview"`
	Accomplishments     StringList       `json:"accomplishments"`
	Patterns            *WeekPatterns    `json:"patterns,omitempty"`
	Challenges          StringList       `json:"challenges"`
	Insights            StringList       `json:"insights"`
	NextWeekSuggestions []WeekSuggestion `json:"next_week_suggestions"`
	HighlightOfWeek     string           `json:"highlight_of_week"`
	WordOfWeek          string           `json:"word_of_week"`
}

// DefaultWeeklyReviewOverview is the overview used when the model output cannot be parsed
const DefaultWeeklyReviewOverview = "Could not generate weekly review"

// DefaultWeeklyReview is returned when the model output cannot be parsed
func DefaultWeeklyReview() WeeklyReview {
	return WeeklyReview{Overview: DefaultWeeklyReviewOverview}
}

// EnergyScore parses the energy level as an integer when possible
func (i Insights) EnergyScore() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(i.EnergyLevel.String()))
	if err != nil {
		return 0, false
	}
	return n, true
}
