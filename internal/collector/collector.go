package collector

import (
	"context"

	"github.com/benvon/daily-journal/internal/config"
	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

// Collector runs the folder processor over every configured source
type Collector struct {
	processor *FolderProcessor
	folders   config.FolderConfig
	logger    *zap.Logger
}

// New wires the standard pipeline over store using cfg's folders and time zone
func New(store FileStore, cfg *config.Config, log *zap.Logger) *Collector {
	log = logger.OrNop(log)
	processor := NewFolderProcessor(
		store,
		NewExtractors(store, log),
		NewArchiver(store, cfg.Folders.Processed, log),
		cfg.Location(),
		log,
	)
	return NewWithProcessor(processor, cfg.Folders, log)
}

// NewWithProcessor builds a collector around an existing folder processor
func NewWithProcessor(processor *FolderProcessor, folders config.FolderConfig, log *zap.Logger) *Collector {
	return &Collector{processor: processor, folders: folders, logger: logger.OrNop(log)}
}

// Collect gathers every category for date. Categories without a folder or
// without content are absent from the result.
func (c *Collector) Collect(ctx context.Context, date models.Date) (models.Collection, error) {
	out := models.Collection{}
	for _, category := range models.SourceOrder {
		folderID := c.folders.For(category)
		if folderID == "" {
			c.logger.Debug("source_not_configured", zap.String("category", string(category)))
			continue
		}
		content, err := c.processor.Process(ctx, folderID, category, date)
		if err != nil {
			return nil, err
		}
		if content == "" {
			c.logger.Info("source_empty", zap.String("category", string(category)), zap.String("date", date.String()))
			continue
		}
		out[category] = content
	}
	return out, nil
}
