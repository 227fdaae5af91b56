package export

import (
	"os"
	"path/filepath"
)

// FileSink writes rendered exports under one directory.
type FileSink struct{ dir string }

// NewFileSink ensures the export directory exists and returns a sink over it.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSink{dir: dir}, nil
}

// Write stores data under name and returns the full path.
func (s *FileSink) Write(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
