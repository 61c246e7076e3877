package flashcard_exporter

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystemOperations defines the file system operations used by the
// Exporter. The interface keeps tests free of real disk writes.
type FileSystemOperations interface {
	// CreateFile writes data to a file, creating parent directories if they
	// don't exist. dirPerm applies to created directories, filePerm to the
	// file itself.
	CreateFile(filename string, data []byte, dirPerm os.FileMode, filePerm os.FileMode) error
}

// DefaultFileSystem implements FileSystemOperations using the os package.
type DefaultFileSystem struct{}

func (fs *DefaultFileSystem) CreateFile(filename string, data []byte, dirPerm os.FileMode, filePerm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directories for %s: %w", filename, err)
	}
	if err := os.WriteFile(filename, data, filePerm); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", filename, err)
	}
	return nil
}
