package collector

import (
	"strings"
	"unicode/utf8"

	"github.com/benvon/daily-journal/internal/models"
)

const (
	// SectionDelimiter separates category sections in the merged document
	SectionDelimiter = "\n\n\n"
	bannerWidth      = 50
)

// Merge renders the collection as one document with a banner per category in
// models.SourceOrder. Empty categories contribute nothing.
func Merge(c models.Collection) string {
	rule := strings.Repeat("=", bannerWidth)
	var sections []string
	for _, category := range models.SourceOrder {
		content := c[category]
		if content == "" {
			continue
		}
		sections = append(sections, rule+"\n"+category.Label()+"\n"+rule+"\n\n"+content)
	}
	return strings.Join(sections, SectionDelimiter)
}

// Stats measures each non-empty category. Characters are Unicode code points,
// words are whitespace-separated tokens.
func Stats(c models.Collection) models.CollectionStats {
	stats := models.CollectionStats{
		SourcesUsed: []models.SourceCategory{},
		BySource:    map[models.SourceCategory]models.SourceStats{},
	}
	for _, category := range models.SourceOrder {
		content := c[category]
		if content == "" {
			continue
		}
		s := models.SourceStats{
			Characters: utf8.RuneCountInString(content),
			Words:      len(strings.Fields(content)),
		}
		stats.SourcesUsed = append(stats.SourcesUsed, category)
		stats.BySource[category] = s
		stats.TotalCharacters += s.Characters
		stats.TotalWords += s.Words
	}
	return stats
}
