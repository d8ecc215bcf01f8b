package collector

import (
	"context"

	"github.com/benvon/daily-journal/internal/logger"
	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
)

// Archiver moves consumed files into the processed folder so they are not
// collected again. It never fails the caller.
type Archiver struct {
	store       FileStore
	destination string
	logger      *zap.Logger
}

// NewArchiver returns an archiver targeting destination. An empty destination
// disables archiving.
func NewArchiver(store FileStore, destination string, log *zap.Logger) *Archiver {
	return &Archiver{store: store, destination: destination, logger: logger.OrNop(log)}
}

// Enabled reports whether a processed folder is configured
func (a *Archiver) Enabled() bool {
	return a.destination != ""
}

// Archive moves f to the processed folder. Failures are logged and swallowed.
func (a *Archiver) Archive(ctx context.Context, f models.RemoteFile) {
	if !a.Enabled() {
		return
	}
	fields := []zap.Field{
		zap.String("file_id", f.ID),
		zap.String("file_name", logger.SanitizeFileName(f.Name)),
	}
	BestEffort(a.logger, "file_archive", func() error {
		if err := a.store.Move(ctx, f.ID, a.destination); err != nil {
			return err
		}
		a.logger.Debug("file_archived", fields...)
		return nil
	}, fields...)
}
