package models

import (
	"strings"
)

// SourceCategory identifies one of the fixed input channels
type SourceCategory string

const (
	SourceNotebook SourceCategory = "notebook"
	SourceVoice    SourceCategory = "voice"
	SourceNotes    SourceCategory = "notes"
)

// SourceOrder is the order categories are collected and merged in. It never changes.
var SourceOrder = []SourceCategory{SourceNotebook, SourceVoice, SourceNotes}

var sourceLabels = map[SourceCategory]string{
	SourceNotebook: "NOTEBOOK ENTRIES",
	SourceVoice:    "VOICE NOTES",
	SourceNotes:    "DIGITAL NOTES",
}

var sourceExtensions = map[SourceCategory][]string{
	SourceNotebook: {".txt", ".pdf"},
	SourceVoice:    {".txt", ".md"},
	SourceNotes:    {".txt", ".md"},
}

// Label returns the section banner used in the merged document
func (c SourceCategory) Label() string {
	return sourceLabels[c]
}

// Tag returns the uppercase name used in per-file block labels, e.g. "NOTES"
func (c SourceCategory) Tag() string {
	return strings.ToUpper(string(c))
}

// Extensions returns the filename suffixes accepted for the category
func (c SourceCategory) Extensions() []string {
	exts := sourceExtensions[c]
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// Accepts reports whether filename carries one of the category's extensions.
// The match is a case-insensitive suffix check.
func (c SourceCategory) Accepts(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range sourceExtensions[c] {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
