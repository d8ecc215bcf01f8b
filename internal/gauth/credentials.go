// Package gauth builds authenticated HTTP clients for the Google APIs from a
// service-account key file.
package gauth

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth scopes the journal needs: full Drive access to move
// files between folders, and read/write on spreadsheets.
var Scopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsScope,
}

// HTTPClient reads a service-account JSON key and returns a client that
// attaches and refreshes access tokens on every request.
func HTTPClient(ctx context.Context, credentialsFile string, scopes ...string) (*http.Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("credentials file is required")
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return HTTPClientFromJSON(ctx, data, scopes...)
}

// HTTPClientFromJSON is HTTPClient for key material already in memory
func HTTPClientFromJSON(ctx context.Context, data []byte, scopes ...string) (*http.Client, error) {
	if len(scopes) == 0 {
		scopes = Scopes
	}
	cfg, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}
	return cfg.Client(ctx), nil
}
