package collector

import (
	"time"

	"github.com/benvon/daily-journal/internal/models"
)

// MatchesDate reports whether the file's effective timestamp falls on target in loc.
// Files with a missing or malformed timestamp never match.
func MatchesDate(f models.RemoteFile, target models.Date, loc *time.Location) bool {
	d, ok := f.EffectiveDate(loc)
	return ok && d == target
}

// Supported reports whether a file name carries an extension accepted for category
func Supported(category models.SourceCategory, filename string) bool {
	return category.Accepts(filename)
}
