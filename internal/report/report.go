// Package report renders journal run results for the terminal
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/benvon/daily-journal/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	defaultWidth = 72
	ruleWidth    = 60
)

type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	high    lipgloss.Style
	medium  lipgloss.Style
	low     lipgloss.Style
}

// Renderer writes run results to w. Colors are used only when w is a terminal.
type Renderer struct {
	w      io.Writer
	width  int
	styles styles
}

// New creates a renderer for w
func New(w io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:     w,
		width: defaultWidth,
		styles: styles{
			title:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
			section: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
			muted:   lr.NewStyle().Foreground(lipgloss.Color("244")),
			warn:    lr.NewStyle().Foreground(lipgloss.Color("214")),
			high:    lr.NewStyle().Foreground(lipgloss.Color("9")),
			medium:  lr.NewStyle().Foreground(lipgloss.Color("11")),
			low:     lr.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}
}

// WithWidth sets the wrap width of free text
func (r *Renderer) WithWidth(width int) *Renderer {
	if width > 20 {
		r.width = width
	}
	return r
}

// NoContent reports a date with nothing to process
func (r *Renderer) NoContent(date models.Date) error {
	return r.flush(r.styles.warn.Render(fmt.Sprintf("No content found for %s.", date)) + "\n")
}

// NoEntries reports a week with no daily entries
func (r *Renderer) NoEntries(start, end models.Date) error {
	return r.flush(r.styles.warn.Render(fmt.Sprintf("No entries found for the week %s to %s.", start, end)) + "\n")
}

// Daily renders the outcome of a daily run
func (r *Renderer) Daily(res models.DailyResult) error {
	var b strings.Builder
	r.banner(&b, "DAILY SUMMARY - "+res.Date.String())
	b.WriteString(r.styles.muted.Render(fmt.Sprintf("%d words from %d sources", res.Stats.TotalWords, len(res.Stats.SourcesUsed))))
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String(res.Summary, r.width))
	b.WriteString("\n\n")

	mood := res.Insights.Mood.Primary
	if mood == "" {
		mood = "unknown"
	}
	energy := res.Insights.EnergyLevel.String()
	if n, ok := res.Insights.EnergyScore(); ok {
		energy = strconv.Itoa(n)
	} else if energy == "" {
		energy = "?"
	}
	fmt.Fprintf(&b, "Mood: %s | Energy: %s/10\n", mood, energy)
	if len(res.Insights.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s\n", strings.Join(res.Insights.Themes, ", "))
	}

	if items := res.Tasks.Completed; len(items) > 0 {
		r.section(&b, fmt.Sprintf("COMPLETED (%d)", len(items)))
		for _, t := range items {
			r.item(&b, "✓", t.Task)
		}
	}
	if items := res.Tasks.Pending; len(items) > 0 {
		r.section(&b, fmt.Sprintf("PENDING (%d)", len(items)))
		for _, t := range items {
			r.item(&b, r.priorityMarker(t.Priority), t.Task)
		}
	}
	if items := res.Suggestions; len(items) > 0 {
		r.section(&b, fmt.Sprintf("SUGGESTED FOR TOMORROW (%d)", len(items)))
		for _, s := range items {
			r.item(&b, r.priorityMarker(s.Priority), s.Task)
			if s.Reason != "" {
				b.WriteString(indent(wordwrap.String(s.Reason, r.width-8), "      └─ "))
				b.WriteString("\n")
			}
		}
	}
	if items := res.Insights.Wins; len(items) > 0 {
		r.section(&b, "WINS")
		for _, w := range items {
			r.item(&b, "★", w)
		}
	}
	if items := res.Insights.Challenges; len(items) > 0 {
		r.section(&b, "CHALLENGES")
		for _, c := range items {
			r.item(&b, "•", c)
		}
	}
	b.WriteString("\n" + r.rule() + "\n")
	return r.flush(b.String())
}

// Weekly renders the outcome of a weekly run
func (r *Renderer) Weekly(res models.WeeklyResult) error {
	var b strings.Builder
	rev := res.Review
	r.banner(&b, fmt.Sprintf("WEEKLY REVIEW: %s to %s", res.WeekStart, res.WeekEnd))
	b.WriteString(r.styles.muted.Render(fmt.Sprintf("%d daily entries", res.EntryCount)))
	b.WriteString("\n")

	r.section(&b, "OVERVIEW")
	b.WriteString(indent(wordwrap.String(rev.Overview, r.width-3), "   "))
	b.WriteString("\n")

	if len(rev.Accomplishments) > 0 {
		r.section(&b, "ACCOMPLISHMENTS")
		for _, a := range rev.Accomplishments {
			r.item(&b, "★", a)
		}
	}
	if p := rev.Patterns; p != nil {
		r.section(&b, "PATTERNS")
		fmt.Fprintf(&b, "   Mood: %s\n", orNA(p.MoodTrend))
		fmt.Fprintf(&b, "   Energy: %s\n", orNA(p.EnergyTrend))
		if len(p.RecurringThemes) > 0 {
			fmt.Fprintf(&b, "   Recurring: %s\n", strings.Join(p.RecurringThemes, ", "))
		}
	}
	r.section(&b, "NEXT WEEK")
	for _, s := range rev.NextWeekSuggestions {
		text := s.Suggestion
		if s.Why != "" {
			text += " (" + s.Why + ")"
		}
		r.item(&b, "→", text)
	}

	fmt.Fprintf(&b, "\nHIGHLIGHT: %s\n", orNA(rev.HighlightOfWeek))
	fmt.Fprintf(&b, "WORD OF WEEK: %s\n", orNA(rev.WordOfWeek))
	b.WriteString("\n" + r.rule() + "\n")
	return r.flush(b.String())
}

// Tasks renders a list of task rows, one per line with its id
func (r *Renderer) Tasks(title string, tasks []models.Task) error {
	var b strings.Builder
	r.section(&b, fmt.Sprintf("%s (%d)", title, len(tasks)))
	if len(tasks) == 0 {
		b.WriteString(r.styles.muted.Render("   none") + "\n")
		return r.flush(b.String())
	}
	for _, t := range tasks {
		text := t.Task
		if t.Deadline != "" {
			text += " (due " + t.Deadline + ")"
		}
		r.item(&b, t.ID+" "+r.priorityMarker(string(t.Priority)), text)
	}
	return r.flush(b.String())
}

// TaskAdded confirms a manually added task
func (r *Renderer) TaskAdded(id, text string) error {
	return r.flush(fmt.Sprintf("Added %s: %s\n", id, text))
}

// TaskCompleted confirms a task status change
func (r *Renderer) TaskCompleted(id string) error {
	return r.flush(fmt.Sprintf("Marked %s as completed.\n", id))
}

func (r *Renderer) banner(b *strings.Builder, title string) {
	b.WriteString("\n" + r.rule() + "\n")
	b.WriteString(r.styles.title.Render(title) + "\n")
	b.WriteString(r.rule() + "\n\n")
}

func (r *Renderer) rule() string {
	return strings.Repeat("=", ruleWidth)
}

func (r *Renderer) section(b *strings.Builder, title string) {
	b.WriteString("\n" + r.styles.section.Render(title) + "\n")
}

// item writes a bulleted line, wrapping long text under the bullet
func (r *Renderer) item(b *strings.Builder, marker, text string) {
	lines := strings.Split(wordwrap.String(text, r.width-5), "\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(b, "   %s %s\n", marker, line)
			continue
		}
		fmt.Fprintf(b, "     %s\n", line)
	}
}

func (r *Renderer) priorityMarker(p string) string {
	switch models.NormalizePriority(p) {
	case models.PriorityHigh:
		return r.styles.high.Render("[high]")
	case models.PriorityLow:
		return r.styles.low.Render("[low]")
	default:
		return r.styles.medium.Render("[med]")
	}
}

func (r *Renderer) flush(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
