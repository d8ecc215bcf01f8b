package models

// SourceStats holds the size of one category's content
type SourceStats struct {
	Characters int `json:"characters"`
	Words      int `json:"words"`
}

// CollectionStats summarizes the content collected for one date
type CollectionStats struct {
	TotalCharacters int                            `json:"total_characters"`
	TotalWords      int                            `json:"total_words"`
	SourcesUsed     []SourceCategory               `json:"sources_used"`
	BySource        map[SourceCategory]SourceStats `json:"by_source"`
}

// SourceNames returns the contributing categories as plain strings
func (s CollectionStats) SourceNames() []string {
	names := make([]string, 0, len(s.SourcesUsed))
	for _, c := range s.SourcesUsed {
		names = append(names, string(c))
	}
	return names
}

// Collection is the per-category output of the folder processors for one date.
// A category with no content is absent.
type Collection map[SourceCategory]string

// Empty reports whether no category produced content
func (c Collection) Empty() bool {
	for _, text := range c {
		if text != "" {
			return false
		}
	}
	return true
}
