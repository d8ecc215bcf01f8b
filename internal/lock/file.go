package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File is a Locker shared by the processes of one host. Each held key is a
// file in dir holding the holder's token. A file older than the TTL belongs
// to a crashed holder and is taken over.
type File struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// DefaultFileDir is where NewFile("") keeps lock files
func DefaultFileDir() string {
	return filepath.Join(os.TempDir(), "daily-journal-locks")
}

// NewFile creates dir if needed. An empty dir means DefaultFileDir.
func NewFile(dir string, ttl time.Duration) (*File, error) {
	if dir == "" {
		dir = DefaultFileDir()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	return &File{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (f *File) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", string(os.PathSeparator), "_").Replace(key)
	return filepath.Join(f.dir, name+".lock")
}

func (f *File) Acquire(_ context.Context, key string) (Release, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	path := f.path(key)

	// One takeover attempt after removing a stale file.
	for attempt := 0; attempt < 2; attempt++ {
		err := create(path, token)
		if err == nil {
			return f.release(key, path, token), nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		info, statErr := os.Stat(path)
		if errors.Is(statErr, fs.ErrNotExist) {
			continue
		}
		if statErr != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, statErr)
		}
		if f.now().Sub(info.ModTime()) <= f.ttl {
			return nil, fmt.Errorf("%s: %w", key, ErrLocked)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lock %s: %w", key, err)
		}
	}
	return nil, fmt.Errorf("%s: %w", key, ErrLocked)
}

// release removes the file only while it still holds token
func (f *File) release(key, path, token string) Release {
	return func(context.Context) error {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		if string(data) != token {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}
}

func create(path, token string) error {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := fh.WriteString(token); err != nil {
		_ = fh.Close()
		_ = os.Remove(path)
		return err
	}
	return fh.Close()
}

var _ Locker = (*File)(nil)
