// Package drive adapts the Google Drive v3 API to the small file-store surface
// the collector needs: list a folder, read a file, export a native document
// and move a file between folders.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/benvon/daily-journal/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	listFields = "nextPageToken, files(id, name, mimeType, createdTime, modifiedTime)"
	pageSize   = 100

	// MaxDownloadBytes bounds a single file download
	MaxDownloadBytes = 64 << 20
)

// ErrNotFound is returned when the file or folder does not exist or is not shared with the account
var ErrNotFound = errors.New("drive: not found")

// Client implements the collector's file store on top of Google Drive
type Client struct {
	service *drive.Service
	logger  *zap.Logger
}

// NewClient creates a Drive client. httpClient must already carry credentials.
func NewClient(ctx context.Context, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{service: srv, logger: logger}, nil
}

// List returns the non-trashed files directly inside folderID, oldest first
func (c *Client) List(ctx context.Context, folderID string) ([]models.RemoteFile, error) {
	q := folderQuery(folderID)
	var files []models.RemoteFile

	pageToken := ""
	for {
		call := c.service.Files.List().
			Context(ctx).
			Q(q).
			Fields(googleapi.Field(listFields)).
			OrderBy("createdTime").
			PageSize(pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, wrapError(err, "unable to list folder %s", folderID)
		}
		for _, f := range r.Files {
			if f.MimeType == models.MIMETypeFolder {
				continue
			}
			files = append(files, toRemoteFile(f))
		}

		if r.NextPageToken == "" {
			break
		}
		pageToken = r.NextPageToken
	}

	c.logger.Debug("drive_folder_listed",
		zap.String("folder_id", folderID),
		zap.Int("file_count", len(files)),
	)
	return files, nil
}

// Download returns the raw bytes of a binary or text file
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, wrapError(err, "unable to download file %s", fileID)
	}
	defer func() { _ = resp.Body.Close() }()

	return readBody(resp.Body)
}

// Export converts a native document to mimeType and returns the bytes
func (c *Client) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := c.service.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, wrapError(err, "unable to export file %s", fileID)
	}
	defer func() { _ = resp.Body.Close() }()

	return readBody(resp.Body)
}

// Move removes the file from all of its current parents and places it in destFolderID
func (c *Client) Move(ctx context.Context, fileID, destFolderID string) error {
	current, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields("parents").
		Do()
	if err != nil {
		return wrapError(err, "unable to fetch parents of %s", fileID)
	}

	_, err = c.service.Files.Update(fileID, &drive.File{}).
		Context(ctx).
		AddParents(destFolderID).
		RemoveParents(strings.Join(current.Parents, ",")).
		Fields("id, parents").
		Do()
	if err != nil {
		return wrapError(err, "unable to move %s to %s", fileID, destFolderID)
	}
	return nil
}

func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read file content: %w", err)
	}
	if len(data) > MaxDownloadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxDownloadBytes)
	}
	return data, nil
}

func folderQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))
}

// escapeQuery escapes a literal for use inside a single-quoted Drive query string
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func toRemoteFile(f *drive.File) models.RemoteFile {
	return models.RemoteFile{
		ID:           f.Id,
		Name:         f.Name,
		MIMEType:     f.MimeType,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
	}
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusNotFound
	}
	return false
}

func wrapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
