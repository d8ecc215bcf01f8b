package collector

import (
	"context"
	"errors"
	"sync"

	"github.com/benvon/daily-journal/internal/models"
)

// fakeStore is an in-memory FileStore. Move relocates the file between folders.
type fakeStore struct {
	mu          sync.Mutex
	folders     map[string][]models.RemoteFile
	content     map[string][]byte
	exports     map[string][]byte
	listErr     error
	downloadErr map[string]error
	moveErr     error
	moves       []string
}

var _ FileStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		folders:     map[string][]models.RemoteFile{},
		content:     map[string][]byte{},
		exports:     map[string][]byte{},
		downloadErr: map[string]error{},
	}
}

func (s *fakeStore) add(folder string, f models.RemoteFile, body string) {
	s.folders[folder] = append(s.folders[folder], f)
	s.content[f.ID] = []byte(body)
}

func (s *fakeStore) List(_ context.Context, folderID string) ([]models.RemoteFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.RemoteFile, len(s.folders[folderID]))
	copy(out, s.folders[folderID])
	return out, nil
}

func (s *fakeStore) Download(_ context.Context, fileID string) ([]byte, error) {
	if err := s.downloadErr[fileID]; err != nil {
		return nil, err
	}
	data, ok := s.content[fileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (s *fakeStore) Export(_ context.Context, fileID, _ string) ([]byte, error) {
	data, ok := s.exports[fileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (s *fakeStore) Move(_ context.Context, fileID, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moveErr != nil {
		return s.moveErr
	}
	for folder, files := range s.folders {
		for i, f := range files {
			if f.ID == fileID {
				s.folders[folder] = append(files[:i:i], files[i+1:]...)
				s.folders[dest] = append(s.folders[dest], f)
				s.moves = append(s.moves, fileID)
				return nil
			}
		}
	}
	return errors.New("not found")
}

// fakePDF serves fixed page texts; a nil entry fails that page
type fakePDF struct {
	pages []*string
}

func (d fakePDF) NumPage() int { return len(d.pages) }

func (d fakePDF) PageText(n int) (string, error) {
	p := d.pages[n-1]
	if p == nil {
		return "", errors.New("unreadable page")
	}
	return *p, nil
}

func strPtr(s string) *string { return &s }
