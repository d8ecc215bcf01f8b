// Package sheets persists journal results in a Google Sheets spreadsheet
// used as a small tabular database: one sheet per table, a header row, and
// one record per row.
package sheets

// Table names
const (
	TableDailyEntries  = "Daily Entries"
	TableTasks         = "Tasks"
	TableWeeklyReviews = "Weekly Reviews"
	TableInsights      = "Insights"
)

// NewTableRows is the row count of a newly created table
const NewTableRows = 5000

// MaxRawContentLength bounds the raw_content cell. Sheets rejects cells over 50000 characters.
const MaxRawContentLength = 50000

var tableHeaders = map[string][]string{
	TableDailyEntries: {
		"date", "raw_content", "summary", "mood", "mood_confidence",
		"energy", "themes", "wins", "challenges", "sources",
		"word_count", "created_at", "updated_at",
	},
	TableTasks: {
		"id", "date", "task", "status", "priority", "category",
		"deadline", "reason", "source", "completed_at",
		"created_at", "updated_at",
	},
	TableWeeklyReviews: {
		"week_start", "week_end", "overview", "accomplishments",
		"patterns", "challenges", "insights", "suggestions",
		"highlight", "word_of_week", "created_at",
	},
	TableInsights: {
		"date", "mood", "energy", "themes", "people_mentioned",
		"notable_quotes", "created_at",
	},
}

// tableOrder is the creation order of tables
var tableOrder = []string{TableDailyEntries, TableTasks, TableWeeklyReviews, TableInsights}

// Headers returns a copy of a table's header row
func Headers(table string) []string {
	h := tableHeaders[table]
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Task table column positions (1-based, as in the sheet)
const (
	taskColStatus      = 4
	taskColCompletedAt = 10
	taskColUpdatedAt   = 12
)
