package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

// BlockDelimiter separates per-file blocks within one category
const BlockDelimiter = "\n\n---\n\n"

// FolderProcessor collects one category's content for one date from one folder
type FolderProcessor struct {
	store      FileStore
	extractors *Extractors
	archiver   *Archiver
	location   *time.Location
	logger     *zap.Logger
}

// NewFolderProcessor creates a folder processor. Dates are evaluated in loc.
func NewFolderProcessor(store FileStore, extractors *Extractors, archiver *Archiver, loc *time.Location, log *zap.Logger) *FolderProcessor {
	if loc == nil {
		loc = time.UTC
	}
	return &FolderProcessor{
		store:      store,
		extractors: extractors,
		archiver:   archiver,
		location:   loc,
		logger:     logger.OrNop(log),
	}
}

// Process returns the labelled text blocks of every file in folderID that
// belongs to date and category, joined by BlockDelimiter, or "" when none.
// Each file with non-empty text is archived after extraction. A listing
// failure is returned; a failure on one file is logged and the file skipped.
func (p *FolderProcessor) Process(ctx context.Context, folderID string, category models.SourceCategory, date models.Date) (string, error) {
	if folderID == "" {
		return "", nil
	}

	var files []models.RemoteFile
	err := Propagate("list "+string(category)+" folder", func() error {
		var err error
		files, err = p.store.List(ctx, folderID)
		return err
	})
	if err != nil {
		return "", err
	}

	var blocks []string
	for _, f := range files {
		if !MatchesDate(f, date, p.location) {
			continue
		}
		if !Supported(category, f.Name) {
			continue
		}

		fields := []zap.Field{
			zap.String("category", string(category)),
			zap.String("file_id", f.ID),
			zap.String("file_name", logger.SanitizeFileName(f.Name)),
		}

		content, err := p.extractors.Extract(ctx, category, f)
		if err != nil {
			p.logger.Warn("file_extraction_failed", append(fields, zap.String("error", logger.SanitizeError(err)))...)
			continue
		}
		if content.Empty() {
			p.logger.Warn("file_extraction_empty", fields...)
			continue
		}

		blocks = append(blocks, FormatBlock(content))
		p.logger.Info("file_collected", append(fields, zap.Int("characters", len([]rune(content.Text))))...)
		p.archiver.Archive(ctx, f)
	}

	return strings.Join(blocks, BlockDelimiter), nil
}

// FormatBlock renders one file's content with its "[CATEGORY: name]" label
func FormatBlock(c models.ExtractedContent) string {
	return fmt.Sprintf("[%s: %s]\n%s", c.Category.Tag(), c.FileName, c.Text)
}
