package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
)

// DefaultFilePrefix is prepended to the stop id to build snapshot file names.
const DefaultFilePrefix = "bvg_"

// FileStore keeps one JSON document per stop in dir. The document holds the feed
// array in the remote wire shape; the file's modification time is the snapshot's
// creation time.
type FileStore struct {
	dir    string
	prefix string
}

// NewFileStore creates a store rooted at dir. An empty prefix selects
// DefaultFilePrefix.
func NewFileStore(dir, prefix string) *FileStore {
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return &FileStore{dir: dir, prefix: prefix}
}

// Path returns the snapshot file of stopID.
func (s *FileStore) Path(stopID string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, stopID)
	return filepath.Join(s.dir, s.prefix+safe+".json")
}

// Persist writes the feed to a temporary file in the same directory and renames it
// over the snapshot, so readers see either the old or the new document.
func (s *FileStore) Persist(ctx context.Context, stopID string, f feed.RawFeed, at time.Time) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := feed.EncodeJSON(f)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("persist snapshot: create dir: %w", err)
	}

	target := s.Path(stopID)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("persist snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("persist snapshot: write: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("persist snapshot: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("persist snapshot: close: %w", err)
	}
	if err = os.Chtimes(tmpName, at, at); err != nil {
		return fmt.Errorf("persist snapshot: set mtime: %w", err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("persist snapshot: rename: %w", err)
	}
	return nil
}

// Load reads the snapshot of stopID.
func (s *FileStore) Load(ctx context.Context, stopID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	path := s.Path(stopID)
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: notExist(err)}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: notExist(err)}
	}
	f, err := feed.DecodeJSON(data, time.UTC)
	if err != nil {
		return Snapshot{}, &LoadError{StopID: stopID, Cause: err}
	}
	return Snapshot{Feed: f, CreatedAt: info.ModTime()}, nil
}

// ModTime returns the snapshot file's modification time.
func (s *FileStore) ModTime(ctx context.Context, stopID string) (time.Time, error) {
	info, err := os.Stat(s.Path(stopID))
	if err != nil {
		return time.Time{}, &LoadError{StopID: stopID, Cause: notExist(err)}
	}
	return info.ModTime(), nil
}

func notExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	return err
}
