package models

import (
	"strings"
	"time"
)

// MIME types the extractor recognises
const (
	MIMETypePlainText      = "text/plain"
	MIMETypeMarkdown       = "text/markdown"
	MIMETypePDF            = "application/pdf"
	MIMETypeGoogleDocument = "application/vnd.google-apps.document"
	MIMETypeFolder         = "application/vnd.google-apps.folder"
)

// RemoteFile is a metadata snapshot of a file in the remote store.
// Timestamps are kept in the store's textual RFC 3339 form; an empty string means absent.
type RemoteFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MIMEType     string `json:"mime_type"`
	CreatedTime  string `json:"created_time,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty"`
}

// EffectiveTime returns the timestamp used to bucket the file: modified time when present,
// otherwise created time. ok is false when the chosen timestamp is missing or malformed.
func (f RemoteFile) EffectiveTime() (t time.Time, ok bool) {
	raw := f.ModifiedTime
	if raw == "" {
		raw = f.CreatedTime
	}
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EffectiveDate returns the calendar date of EffectiveTime observed in loc
func (f RemoteFile) EffectiveDate(loc *time.Location) (Date, bool) {
	t, ok := f.EffectiveTime()
	if !ok {
		return Date{}, false
	}
	return DateIn(t, loc), true
}

// HasSuffix reports whether the file name ends with any of suffixes (case-insensitive)
func (f RemoteFile) HasSuffix(suffixes ...string) bool {
	lower := strings.ToLower(f.Name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// ExtractedContent is the text recovered from one file
type ExtractedContent struct {
	Category SourceCategory `json:"category"`
	FileName string         `json:"file_name"`
	Text     string         `json:"text"`
}

// Empty reports whether nothing usable was extracted
func (c ExtractedContent) Empty() bool {
	return c.Text == ""
}
