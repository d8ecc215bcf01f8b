package drive

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/benvon/daily-journal/internal/models"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

func TestFolderQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain id", "1AbC", "'1AbC' in parents and trashed = false"},
		{"quote escaped", "a'b", `'a\'b' in parents and trashed = false`},
		{"backslash escaped", `a\b`, `'a\\b' in parents and trashed = false`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := folderQuery(tt.in); got != tt.want {
				t.Errorf("folderQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToRemoteFile(t *testing.T) {
	t.Parallel()

	got := toRemoteFile(&drive.File{
		Id:           "f1",
		Name:         "notes.md",
		MimeType:     models.MIMETypeMarkdown,
		CreatedTime:  "2024-01-15T08:00:00.000Z",
		ModifiedTime: "2024-01-15T09:30:00.000Z",
	})

	want := models.RemoteFile{
		ID:           "f1",
		Name:         "notes.md",
		MIMEType:     models.MIMETypeMarkdown,
		CreatedTime:  "2024-01-15T08:00:00.000Z",
		ModifiedTime: "2024-01-15T09:30:00.000Z",
	}
	if got != want {
		t.Errorf("toRemoteFile() = %+v, want %+v", got, want)
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	notFound := &googleapi.Error{Code: http.StatusNotFound, Message: "File not found"}
	err := wrapError(notFound, "unable to download file %s", "f1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "f1") {
		t.Errorf("Expected file id in message, got %q", err.Error())
	}

	forbidden := &googleapi.Error{Code: http.StatusForbidden}
	err = wrapError(fmt.Errorf("call: %w", forbidden), "unable to list folder %s", "x")
	if errors.Is(err, ErrNotFound) {
		t.Error("Did not expect ErrNotFound for 403")
	}
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) || gErr.Code != http.StatusForbidden {
		t.Errorf("Expected wrapped googleapi error, got %v", err)
	}
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	data, err := readBody(strings.NewReader("hello"))
	if err != nil || string(data) != "hello" {
		t.Errorf("readBody() = %q, %v", data, err)
	}
}
