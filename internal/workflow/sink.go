package workflow

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives exported spreadsheets.
type Sink interface {
	Write(name string, data []byte) (string, error)
}

// DirSink writes downloads into a directory, replacing files of the same
// name.
type DirSink struct {
	Dir string
}

// Write stores data as Dir/name and returns the full path.
func (s DirSink) Write(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
