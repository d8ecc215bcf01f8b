package ai

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompt names
const (
	PromptDailySummary    = "daily_summary"
	PromptExtractTasks    = "extract_tasks"
	PromptExtractInsights = "extract_insights"
	PromptSuggestTasks    = "suggest_tasks"
	PromptWeeklyReview    = "weekly_review"
)

var requiredPrompts = []string{
	PromptDailySummary,
	PromptExtractTasks,
	PromptExtractInsights,
	PromptSuggestTasks,
	PromptWeeklyReview,
}

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt is one entry of the prompt catalogue
type Prompt struct {
	System      string  `yaml:"system"`
	JSON        bool    `yaml:"json"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

// Prompts maps prompt names to prompts
type Prompts map[string]Prompt

// DefaultPrompts returns the built-in catalogue
func DefaultPrompts() (Prompts, error) {
	return parsePrompts(defaultPromptsYAML)
}

// LoadPrompts returns the built-in catalogue with entries from overridePath
// replacing built-ins of the same name. An empty path returns the defaults.
func LoadPrompts(overridePath string) (Prompts, error) {
	prompts, err := DefaultPrompts()
	if err != nil {
		return nil, fmt.Errorf("built-in prompts: %w", err)
	}
	if overridePath == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	overrides, err := parsePrompts(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", overridePath, err)
	}
	for name, p := range overrides {
		if _, ok := prompts[name]; !ok {
			return nil, fmt.Errorf("%s: unknown prompt %q", overridePath, name)
		}
		prompts[name] = p
	}
	return prompts, prompts.validate()
}

func parsePrompts(data []byte) (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if p == nil {
		p = Prompts{}
	}
	return p, nil
}

func (p Prompts) validate() error {
	var missing []string
	for _, name := range requiredPrompts {
		if strings.TrimSpace(p[name].System) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("prompts missing system text: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Request builds a model request from the named prompt
func (p Prompts) Request(name, user string) Request {
	prompt := p[name]
	return Request{
		Operation:   name,
		System:      strings.TrimSpace(prompt.System),
		User:        user,
		JSON:        prompt.JSON,
		Temperature: prompt.Temperature,
	}
}
