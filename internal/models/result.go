package models

// DailyResult is everything a daily run produced
type DailyResult struct {
	RunID       string          `json:"run_id"`
	Date        Date            `json:"date"`
	Stats       CollectionStats `json:"stats"`
	Summary     string          `json:"summary"`
	Tasks       TaskExtraction  `json:"tasks"`
	Insights    Insights        `json:"insights"`
	Suggestions []Suggestion    `json:"suggestions"`
	TaskIDs     []string        `json:"task_ids,omitempty"`
}

// WeeklyResult is everything a weekly run produced
type WeeklyResult struct {
	RunID      string       `json:"run_id"`
	WeekStart  Date         `json:"week_start"`
	WeekEnd    Date         `json:"week_end"`
	EntryCount int          `json:"entry_count"`
	Review     WeeklyReview `json:"review"`
}
