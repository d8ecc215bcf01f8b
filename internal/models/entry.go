package models

import (
	"strings"
	"time"
)

// DailyEntry is one row of the daily entries table
type DailyEntry struct {
	Date           Date      `json:"date"`
	RawContent     string    `json:"raw_content"`
	Summary        string    `json:"summary"`
	Mood           string    `json:"mood"`
	MoodConfidence string    `json:"mood_confidence"`
	Energy         string    `json:"energy"`
	Themes         string    `json:"themes"`
	Wins           string    `json:"wins"`
	Challenges     string    `json:"challenges"`
	Sources        string    `json:"sources"`
	WordCount      int       `json:"word_count"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// NewDailyEntry assembles the daily entry row from the run's results
func NewDailyEntry(date Date, merged string, summary string, insights Insights, stats CollectionStats) DailyEntry {
	return DailyEntry{
		Date:           date,
		RawContent:     merged,
		Summary:        summary,
		Mood:           insights.Mood.Primary,
		MoodConfidence: insights.Mood.Confidence,
		Energy:         insights.EnergyLevel.String(),
		Themes:         strings.Join(insights.Themes, ", "),
		Wins:           strings.Join(insights.Wins, ", "),
		Challenges:     strings.Join(insights.Challenges, ", "),
		Sources:        strings.Join(stats.SourceNames(), ", "),
		WordCount:      stats.TotalWords,
	}
}

// TaskStatus is the lifecycle state of a task row
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusSuggested TaskStatus = "suggested"
)

// TaskSource records where a task row came from
type TaskSource string

const (
	TaskSourceExtracted   TaskSource = "extracted"
	TaskSourceAISuggested TaskSource = "ai_suggested"
	TaskSourceManual      TaskSource = "manual"
)

// Task is one row of the tasks table
type Task struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Task        string     `json:"task" validate:"required"`
	Status      TaskStatus `json:"status" validate:"omitempty,task_status"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	Deadline    string     `json:"deadline"`
	Reason      string     `json:"reason"`
	Source      TaskSource `json:"source"`
	CompletedAt string     `json:"completed_at"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// BuildTaskRecords flattens extracted and suggested tasks into task rows for date.
// Completed tasks come first, then pending, then suggestions.
func BuildTaskRecords(date Date, tasks TaskExtraction, suggestions []Suggestion) []Task {
	ds := date.String()
	records := make([]Task, 0, len(tasks.Completed)+len(tasks.Pending)+len(suggestions))
	for _, t := range tasks.Completed {
		records = append(records, Task{
			Date:   ds,
			Task:   t.Task,
			Status: TaskStatusCompleted,
			Source: TaskSourceExtracted,
		})
	}
	for _, t := range tasks.Pending {
		records = append(records, Task{
			Date:     ds,
			Task:     t.Task,
			Status:   TaskStatusPending,
			Priority: NormalizePriority(t.Priority),
			Deadline: t.Deadline.String(),
			Source:   TaskSourceExtracted,
		})
	}
	for _, s := range suggestions {
		records = append(records, Task{
			Date:     ds,
			Task:     s.Task,
			Status:   TaskStatusSuggested,
			Priority: NormalizePriority(s.Priority),
			Category: s.Category,
			Reason:   s.Reason,
			Source:   TaskSourceAISuggested,
		})
	}
	return records
}
