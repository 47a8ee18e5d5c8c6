package upload

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for the upload directory
type Storage interface {
	// Save saves a file and returns its name within the storage
	Save(filename string, data []byte) (string, error)

	// Path returns the filesystem path of a saved file
	Path(name string) string

	// Delete removes a file
	Delete(name string) error
}

// LocalStorage implements the Storage interface using a local directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save saves a file to the upload directory
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filename, nil
}

// Path returns the filesystem path of a saved file
func (l *LocalStorage) Path(name string) string {
	return filepath.Join(l.basePath, name)
}

// Delete removes a file from the upload directory
func (l *LocalStorage) Delete(name string) error {
	if err := os.Remove(l.Path(name)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
