package logfile

import (
	"context"
	"fmt"
	"os"
)

// Source yields the full current content of a log. Implementations perform
// exactly one read per call and keep no cache.
type Source interface {
	// ReadAll returns a snapshot of the whole log.
	ReadAll(ctx context.Context) ([]byte, error)

	// Name identifies the log in logs and error messages.
	Name() string
}

// FileSource reads a log from the local filesystem.
type FileSource struct {
	Path string
}

// NewFileSource creates a Source for the log at path.
func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

// ReadAll reads the whole file. Errors wrap the underlying *fs.PathError so
// callers can test for fs.ErrNotExist or fs.ErrPermission.
func (s FileSource) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return data, nil
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// BytesSource serves a fixed in-memory log.
type BytesSource struct {
	Label string
	Data  []byte
}

// ReadAll returns a copy of the data so callers cannot mutate the source.
func (s BytesSource) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, len(s.Data))
	copy(out, s.Data)
	return out, nil
}

// Name returns the label, or "memory" when unset.
func (s BytesSource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}
