// Package collector gathers one calendar day of journal content from the
// remote file store: it filters each source folder by date and extension,
// extracts text, archives what it consumed and merges the sources into a
// single document.
package collector

import (
	"context"

	"github.com/benvon/daily-journal/internal/models"
)

// FileStore is the subset of the remote file store the collector uses
type FileStore interface {
	// List returns the non-trashed files directly inside a folder ordered by creation time
	List(ctx context.Context, folderID string) ([]models.RemoteFile, error)
	// Download returns a file's raw bytes
	Download(ctx context.Context, fileID string) ([]byte, error)
	// Export converts a native document to mimeType
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)
	// Move detaches a file from all current parents and attaches it to destFolderID
	Move(ctx context.Context, fileID, destFolderID string) error
}
