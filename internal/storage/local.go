package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gdupload/internal/media"
)

type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// Open opens a local video file. Relative paths resolve against the base
// directory when one is set.
func (s *LocalStorage) Open(ctx context.Context, path string) (*Source, error) {
	if s.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}

	payload, err := media.FromFile(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Source{
		Name:    filepath.Base(path),
		Path:    path,
		Payload: payload,
		closer:  f,
	}, nil
}
