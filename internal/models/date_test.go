package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		want        Date
		expectError bool
	}{
		{"valid date", "2024-01-15", Date{2024, time.January, 15}, false},
		{"surrounding whitespace", " 2024-02-29 ", Date{2024, time.February, 29}, false},
		{"wrong layout", "15/01/2024", Date{}, true},
		{"impossible day", "2023-02-30", Date{}, true},
		{"empty", "", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDate(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, time.February, 28)
	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Errorf("Expected leap day, got %s", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("Expected 2024-03-01, got %s", got)
	}
	if got := d.AddDays(-59).String(); got != "2023-12-31" {
		t.Errorf("Expected 2023-12-31, got %s", got)
	}
	if !d.Between(d, d.AddDays(6)) || !d.AddDays(6).Between(d, d.AddDays(6)) {
		t.Error("Expected range bounds to be inclusive")
	}
	if d.AddDays(7).Between(d, d.AddDays(6)) {
		t.Error("Expected day after range to be excluded")
	}
}

func TestDateIn_UsesLocation(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 03:30 UTC on the 16th is still the evening of the 15th in New York.
	ts := time.Date(2024, time.January, 16, 3, 30, 0, 0, time.UTC)
	if got := DateIn(ts, ny).String(); got != "2024-01-15" {
		t.Errorf("Expected 2024-01-15 in New York, got %s", got)
	}
	if got := DateIn(ts, time.UTC).String(); got != "2024-01-16" {
		t.Errorf("Expected 2024-01-16 in UTC, got %s", got)
	}
}

func TestPreviousWeekStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		today Date
		want  string
	}{
		{"monday", NewDate(2024, time.January, 15), "2024-01-08"},
		{"wednesday", NewDate(2024, time.January, 17), "2024-01-08"},
		{"sunday", NewDate(2024, time.January, 21), "2024-01-08"},
		{"next monday", NewDate(2024, time.January, 22), "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PreviousWeekStart(tt.today)
			if got.String() != tt.want {
				t.Errorf("PreviousWeekStart(%s) = %s, want %s", tt.today, got, tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("Expected a Monday, got %s", got.Weekday())
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	var payload struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2024-01-15"}`), &payload); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if payload.Date != NewDate(2024, time.January, 15) {
		t.Errorf("Unexpected date %v", payload.Date)
	}
	if err := json.Unmarshal([]byte(`{"date":"nope"}`), &payload); err == nil {
		t.Error("Expected error for malformed date")
	}
}
