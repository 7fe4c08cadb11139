package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSink writes the archive to a local path.
//
// Data goes to a temporary file in the same directory which is renamed over
// Path only after the stream completes.
type FileSink struct {
	Path string
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("file sink: path is required")
	}
	return &FileSink{Path: path}, nil
}

func (s *FileSink) Name() string {
	return "file:" + s.Path
}

func (s *FileSink) Store(ctx context.Context, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return 0, fmt.Errorf("rename: %w", err)
	}

	committed = true
	return n, nil
}
