package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ErrNotFound is returned while the monitored artifact does not exist yet
var ErrNotFound = errors.New("artifact not found")

// Snapshot is the full content of the artifact at one point in time
type Snapshot struct {
	Text    string
	ModTime time.Time
}

// Source is a growing text artifact written by an external generator
type Source interface {
	// ModTime returns the artifact's last-write time without reading it
	ModTime(ctx context.Context) (time.Time, error)
	// Read returns the artifact's current full content
	Read(ctx context.Context) (Snapshot, error)
	// Name identifies the artifact in logs
	Name() string
}

// FileSource reads the artifact from the local filesystem
type FileSource struct {
	path string
}

// NewFileSource creates a source for the file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.path
}

// ModTime returns the file's modification time
func (s *FileSource) ModTime(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, wrapPathError(s.path, err)
	}
	return info.ModTime(), nil
}

// Read returns the file's content together with the modification time observed
// just before reading. A write racing the read is picked up by the next tick.
func (s *FileSource) Read(ctx context.Context) (Snapshot, error) {
	modTime, err := s.ModTime(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, wrapPathError(s.path, err)
	}

	return Snapshot{Text: string(data), ModTime: modTime}, nil
}

func wrapPathError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("read artifact %s: %w", path, err)
}
