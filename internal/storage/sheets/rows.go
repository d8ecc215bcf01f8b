package sheets

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/benvon/daily-journal/internal/models"
)

// record is one data row keyed by header name
type record map[string]string

// records converts rows into header-keyed records. The first row is the header.
func records(rows [][]string) []record {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	out := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func dailyEntryFromRecord(rec record) (models.DailyEntry, bool) {
	date, err := models.ParseDate(rec["date"])
	if err != nil {
		return models.DailyEntry{}, false
	}
	words, _ := strconv.Atoi(rec["word_count"])
	created, _ := time.Parse(time.RFC3339, rec["created_at"])
	updated, _ := time.Parse(time.RFC3339, rec["updated_at"])
	return models.DailyEntry{
		Date:           date,
		RawContent:     rec["raw_content"],
		Summary:        rec["summary"],
		Mood:           rec["mood"],
		MoodConfidence: rec["mood_confidence"],
		Energy:         rec["energy"],
		Themes:         rec["themes"],
		Wins:           rec["wins"],
		Challenges:     rec["challenges"],
		Sources:        rec["sources"],
		WordCount:      words,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, true
}

func taskFromRecord(rec record) models.Task {
	return models.Task{
		ID:          rec["id"],
		Date:        rec["date"],
		Task:        rec["task"],
		Status:      models.TaskStatus(rec["status"]),
		Priority:    models.Priority(rec["priority"]),
		Category:    rec["category"],
		Deadline:    rec["deadline"],
		Reason:      rec["reason"],
		Source:      models.TaskSource(rec["source"]),
		CompletedAt: rec["completed_at"],
		CreatedAt:   rec["created_at"],
		UpdatedAt:   rec["updated_at"],
	}
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	return mustJSON(items)
}

// mustJSON encodes values whose types cannot fail to marshal
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
